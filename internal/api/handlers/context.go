package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/cosplay-angola/server/internal/api/pagination"
	"github.com/cosplay-angola/server/internal/api/problem"
	"github.com/cosplay-angola/server/internal/auth"
	"github.com/cosplay-angola/server/internal/domain/events"
)

// Problem type URIs shared by every handler.
const (
	typeValidation   = "https://cosplayangola.ao/problems/validation-error"
	typeUnauthorized = "https://cosplayangola.ao/problems/unauthorized"
	typeForbidden    = "https://cosplayangola.ao/problems/forbidden"
	typeNotFound     = "https://cosplayangola.ao/problems/not-found"
	typeServerError  = "https://cosplayangola.ao/problems/server-error"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func pathParam(r *http.Request, key string) string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(r.PathValue(key))
}

// uuidParam extracts and parses a UUID path parameter. On failure it writes a
// 404: an unparseable id can never name an existing resource.
func uuidParam(w http.ResponseWriter, r *http.Request, key, env string) (uuid.UUID, bool) {
	raw := pathParam(r, key)
	id, err := uuid.Parse(raw)
	if err != nil {
		problem.Write(w, r, http.StatusNotFound, typeNotFound, "Not found", nil, env,
			problem.WithDetail("Não encontrado."))
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps domain errors onto problem+json responses. Anything
// unrecognized is a 500.
func respondError(w http.ResponseWriter, r *http.Request, err error, env string) {
	var verr *problem.ValidationError
	var ferr events.FilterError

	switch {
	case errors.As(err, &verr):
		problem.Write(w, r, http.StatusBadRequest, typeValidation, "Invalid request", err, env)
	case errors.As(err, &ferr):
		problem.Write(w, r, http.StatusBadRequest, typeValidation, "Invalid request", err, env,
			problem.WithErrors(map[string][]string{ferr.Field: {ferr.Message}}))
	case errors.Is(err, pagination.ErrInvalidPage):
		problem.Write(w, r, http.StatusBadRequest, typeValidation, "Invalid request", err, env,
			problem.WithDetail("Página inválida."))
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingToken):
		problem.Write(w, r, http.StatusUnauthorized, typeUnauthorized, "Unauthorized", nil, env,
			problem.WithDetail("O token informado não é válido para qualquer tipo de token."))
	case isNotFound(err):
		problem.Write(w, r, http.StatusNotFound, typeNotFound, "Not found", nil, env,
			problem.WithDetail("Não encontrado."))
	default:
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", err, env)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, events.ErrNotFound) ||
		errors.Is(err, events.ErrCategoryNotFound) ||
		errors.Is(err, events.ErrPartnerNotFound) ||
		errors.Is(err, problem.ErrNotFound)
}

// pageEnvelope is the standard listing wrapper.
type pageEnvelope struct {
	Count       int     `json:"count"`
	TotalPages  int     `json:"total_pages"`
	CurrentPage int     `json:"current_page"`
	PageSize    int     `json:"page_size"`
	Next        *string `json:"next"`
	Previous    *string `json:"previous"`
	Results     any     `json:"results"`
}

// paginate builds the envelope for the current request. It reports whether
// the requested page exists; callers must 404 when it does not.
func paginate(r *http.Request, page pagination.Page, count int, results any) (pageEnvelope, bool) {
	totalPages := pagination.TotalPages(int64(count), page.Size)
	if page.Number > totalPages {
		return pageEnvelope{}, false
	}
	next, previous := pagination.Links(r, page, totalPages)
	return pageEnvelope{
		Count:       count,
		TotalPages:  totalPages,
		CurrentPage: page.Number,
		PageSize:    page.Size,
		Next:        next,
		Previous:    previous,
		Results:     results,
	}, true
}
