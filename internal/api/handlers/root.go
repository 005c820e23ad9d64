package handlers

import "net/http"

// RootHandler serves the API index so the root path answers with a
// friendly endpoint listing instead of a 404.
type RootHandler struct {
	BaseURL string
	Version string
}

func NewRootHandler(baseURL, version string) *RootHandler {
	return &RootHandler{BaseURL: baseURL, Version: version}
}

func (h *RootHandler) Index(w http.ResponseWriter, r *http.Request) {
	base := h.BaseURL + "/api/v1"
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Bem-vindo à API do Cosplay Angola! 🎭",
		"version": h.Version,
		"endpoints": map[string]any{
			"authentication": map[string]string{
				"register":      base + "/auth/register",
				"login":         base + "/auth/token",
				"token_refresh": base + "/auth/token/refresh",
				"token_verify":  base + "/auth/token/verify",
				"user_profile":  base + "/auth/user",
				"logout":        base + "/auth/logout",
			},
			"events": map[string]string{
				"list_all":   base + "/events",
				"upcoming":   base + "/events/proximos",
				"past":       base + "/events/passados",
				"highlights": base + "/events/destaques",
				"categories": base + "/categories",
				"partners":   base + "/partners",
			},
			"media": map[string]string{
				"list_all": base + "/media",
				"upload":   base + "/media/upload",
			},
			"newsletter": map[string]string{
				"subscribe": base + "/newsletter/subscribe",
			},
		},
		"usage": map[string]string{
			"authentication": "Inclua o token JWT no header: Authorization: Bearer <token>",
			"pagination":     "Use ?page=N e ?page_size=N para controlar paginação",
			"filtering":      "Eventos suportam filtros por categoria, tipo, status e data",
			"search":         "Use ?search=termo para buscar em título, descrição e local",
		},
	})
}
