package handlers

import (
	"errors"
	"net/http"

	"github.com/cosplay-angola/server/internal/api/middleware"
	"github.com/cosplay-angola/server/internal/api/pagination"
	"github.com/cosplay-angola/server/internal/api/problem"
	"github.com/cosplay-angola/server/internal/auth"
	"github.com/cosplay-angola/server/internal/domain/media"
	"github.com/cosplay-angola/server/internal/metrics"
)

type MediaHandler struct {
	Service *media.Service
	Env     string
}

func NewMediaHandler(service *media.Service, env string) *MediaHandler {
	return &MediaHandler{Service: service, Env: env}
}

func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.Parse(r.URL.Query())
	if err != nil {
		respondError(w, r, err, h.Env)
		return
	}

	result, err := h.Service.List(r.Context(), page)
	if err != nil {
		respondError(w, r, err, h.Env)
		return
	}

	results := make([]media.Projection, 0, len(result.Media))
	for i := range result.Media {
		results = append(results, result.Media[i].Projection())
	}
	envelope, ok := paginate(r, page, result.Count, results)
	if !ok {
		problem.Write(w, r, http.StatusNotFound, typeNotFound, "Not found", nil, h.Env,
			problem.WithDetail("Página inválida."))
		return
	}
	writeJSON(w, http.StatusOK, envelope)
}

func (h *MediaHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.Env)
	if !ok {
		return
	}
	item, err := h.Service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, media.ErrNotFound) {
			respondError(w, r, problem.ErrNotFound, h.Env)
			return
		}
		respondError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, item.Projection())
}

// Upload stores a multipart image with optional metadata fields.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(media.DefaultMaxBytes + (1 << 20)); err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidation, "Invalid request", err, h.Env,
			problem.WithDetail("Formulário multipart inválido."))
		return
	}

	file, header, err := r.FormFile("imagem")
	if err != nil {
		respondError(w, r, problem.NewValidation("imagem", msgFieldRequired), h.Env)
		return
	}
	defer file.Close()

	actor := middleware.ActorFrom(r.Context())
	if actor == nil {
		respondError(w, r, auth.ErrMissingToken, h.Env)
		return
	}
	input := media.UploadInput{
		Titulo:            r.FormValue("titulo"),
		Descricao:         r.FormValue("descricao"),
		CreditosFotografo: r.FormValue("creditos_fotografo"),
	}

	item, err := h.Service.Upload(r.Context(), actor.ID, file, header.Filename, header.Size, input)
	if err != nil {
		metrics.ImageUploads.WithLabelValues("error").Inc()
		respondError(w, r, err, h.Env)
		return
	}

	metrics.ImageUploads.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusCreated, item.Projection())
}

// Delete removes a media item. Only its uploader or a superuser may do so.
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.Env)
	if !ok {
		return
	}

	item, err := h.Service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, media.ErrNotFound) {
			respondError(w, r, problem.ErrNotFound, h.Env)
			return
		}
		respondError(w, r, err, h.Env)
		return
	}

	actor := middleware.ActorFrom(r.Context())
	if !auth.OwnerOrSuperuser(actor, item) {
		problem.Write(w, r, http.StatusForbidden, typeForbidden, "Forbidden", nil, h.Env,
			problem.WithDetail("Você não tem permissão para executar essa ação."))
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		respondError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
