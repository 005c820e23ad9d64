package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cosplay-angola/server/internal/api/problem"
	"github.com/cosplay-angola/server/internal/domain/newsletter"
)

type NewsletterHandler struct {
	Service *newsletter.Service
	Env     string
}

func NewNewsletterHandler(service *newsletter.Service, env string) *NewsletterHandler {
	return &NewsletterHandler{Service: service, Env: env}
}

func (h *NewsletterHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var input newsletter.SubscribeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidation, "Invalid request", err, h.Env,
			problem.WithDetail("Corpo da requisição inválido."))
		return
	}

	sub, err := h.Service.Subscribe(r.Context(), input)
	if err != nil {
		respondError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, sub.Projection())
}
