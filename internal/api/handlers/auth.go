package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cosplay-angola/server/internal/api/middleware"
	"github.com/cosplay-angola/server/internal/api/problem"
	"github.com/cosplay-angola/server/internal/auth"
	"github.com/cosplay-angola/server/internal/domain/accounts"
	"github.com/cosplay-angola/server/internal/metrics"
)

const (
	msgFieldRequired      = "Este campo é obrigatório."
	msgBadCredentials     = "Nenhuma conta ativa encontrada com as credenciais fornecidas."
	msgRegistered         = "Usuário registrado com sucesso! Faça login para obter tokens."
	msgLogoutOK           = "Logout realizado com sucesso."
	msgLogoutInvalidToken = "Token inválido ou já utilizado."
)

type AuthHandler struct {
	Accounts *accounts.Service
	Env      string
}

func NewAuthHandler(service *accounts.Service, env string) *AuthHandler {
	return &AuthHandler{Accounts: service, Env: env}
}

// Register creates an account. No tokens are issued; the client logs in
// afterwards.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input accounts.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidation, "Invalid request", err, h.Env,
			problem.WithDetail("Corpo da requisição inválido."))
		return
	}

	account, err := h.Accounts.Register(r.Context(), input)
	if err != nil {
		respondError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user":    account.Projection(),
		"message": msgRegistered,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Token exchanges credentials for an access/refresh pair.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var input loginRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidation, "Invalid request", err, h.Env,
			problem.WithDetail("Corpo da requisição inválido."))
		return
	}

	verr := &problem.ValidationError{Fields: map[string][]string{}}
	if input.Username == "" {
		verr.Add("username", msgFieldRequired)
	}
	if input.Password == "" {
		verr.Add("password", msgFieldRequired)
	}
	if verr.HasErrors() {
		respondError(w, r, verr, h.Env)
		return
	}

	pair, err := h.Accounts.Login(r.Context(), input.Username, input.Password)
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			metrics.LoginAttempts.WithLabelValues("invalid_credentials").Inc()
			problem.Write(w, r, http.StatusUnauthorized, typeUnauthorized, "Unauthorized", nil, h.Env,
				problem.WithDetail(msgBadCredentials))
			return
		}
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		respondError(w, r, err, h.Env)
		return
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	metrics.TokensIssued.WithLabelValues("login").Inc()
	writeJSON(w, http.StatusOK, pair)
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// Refresh rotates a refresh token. The consumed token is blacklisted, so a
// second call with the same token fails.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var input refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Refresh == "" {
		respondError(w, r, problem.NewValidation("refresh", msgFieldRequired), h.Env)
		return
	}

	pair, err := h.Accounts.Refresh(r.Context(), input.Refresh)
	if err != nil {
		respondError(w, r, err, h.Env)
		return
	}

	metrics.TokensIssued.WithLabelValues("refresh").Inc()
	metrics.TokensRevoked.WithLabelValues("rotation").Inc()
	writeJSON(w, http.StatusOK, pair)
}

type verifyRequest struct {
	Token string `json:"token"`
}

// Verify reports token validity: 200 with an empty object, or 401.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var input verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Token == "" {
		respondError(w, r, problem.NewValidation("token", msgFieldRequired), h.Env)
		return
	}

	if err := h.Accounts.VerifyToken(r.Context(), input.Token); err != nil {
		respondError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

// User returns the authenticated account's public projection.
func (h *AuthHandler) User(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFrom(r.Context())
	if actor == nil {
		respondError(w, r, auth.ErrMissingToken, h.Env)
		return
	}
	account, err := h.Accounts.GetByID(r.Context(), actor.ID)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			respondError(w, r, problem.ErrNotFound, h.Env)
			return
		}
		respondError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, account.Projection())
}

// Logout blacklists the refresh token. Malformed and already-used tokens both
// come back as the same 400.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var input refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Refresh == "" {
		problem.Write(w, r, http.StatusBadRequest, typeValidation, "Invalid request", nil, h.Env,
			problem.WithDetail(msgLogoutInvalidToken))
		return
	}

	if err := h.Accounts.Logout(r.Context(), input.Refresh); err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidation, "Invalid request", nil, h.Env,
			problem.WithDetail(msgLogoutInvalidToken))
		return
	}

	metrics.TokensRevoked.WithLabelValues("logout").Inc()
	writeJSON(w, http.StatusResetContent, map[string]any{"message": msgLogoutOK})
}
