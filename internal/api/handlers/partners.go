package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cosplay-angola/server/internal/api/problem"
	"github.com/cosplay-angola/server/internal/domain/events"
)

type PartnersHandler struct {
	Service *events.PartnerService
	Env     string
}

func NewPartnersHandler(service *events.PartnerService, env string) *PartnersHandler {
	return &PartnersHandler{Service: service, Env: env}
}

func (h *PartnersHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	listed, err := h.Service.List(r.Context(), query.Get("tipo"), query.Get("ativo"))
	if err != nil {
		respondError(w, r, err, h.Env)
		return
	}
	results := make([]events.PartnerProjection, 0, len(listed))
	for _, partner := range listed {
		results = append(results, partner.Projection())
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *PartnersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.Env)
	if !ok {
		return
	}
	partner, err := h.Service.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, partner.Projection())
}

func (h *PartnersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input events.PartnerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidation, "Invalid request", err, h.Env,
			problem.WithDetail("Corpo da requisição inválido."))
		return
	}
	partner, err := h.Service.Create(r.Context(), input)
	if err != nil {
		respondError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, partner.Projection())
}

func (h *PartnersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.Env)
	if !ok {
		return
	}
	var input events.PartnerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidation, "Invalid request", err, h.Env,
			problem.WithDetail("Corpo da requisição inválido."))
		return
	}
	partner, err := h.Service.Update(r.Context(), id, input)
	if err != nil {
		respondError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, partner.Projection())
}
