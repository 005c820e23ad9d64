package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cosplay-angola/server/internal/api/problem"
	"github.com/cosplay-angola/server/internal/domain/events"
)

type CategoriesHandler struct {
	Service *events.CategoryService
	Env     string
}

func NewCategoriesHandler(service *events.CategoryService, env string) *CategoriesHandler {
	return &CategoriesHandler{Service: service, Env: env}
}

func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	listed, err := h.Service.List(r.Context(), r.URL.Query().Get("tipo"))
	if err != nil {
		respondError(w, r, err, h.Env)
		return
	}
	results := make([]events.CategoryProjection, 0, len(listed))
	for _, category := range listed {
		results = append(results, category.Projection())
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *CategoriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.Env)
	if !ok {
		return
	}
	category, err := h.Service.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, category.Projection())
}

func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input events.CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidation, "Invalid request", err, h.Env,
			problem.WithDetail("Corpo da requisição inválido."))
		return
	}
	category, err := h.Service.Create(r.Context(), input)
	if err != nil {
		respondError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, category.Projection())
}

func (h *CategoriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.Env)
	if !ok {
		return
	}
	var input events.CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidation, "Invalid request", err, h.Env,
			problem.WithDetail("Corpo da requisição inválido."))
		return
	}
	category, err := h.Service.Update(r.Context(), id, input)
	if err != nil {
		respondError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, category.Projection())
}

// Delete removes a category unless events still reference it.
func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.Env)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		respondError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
