package problem

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWrite_DevIncludesDetail(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com/api/v1/resource", nil)
	res := httptest.NewRecorder()

	Write(res, req, http.StatusBadRequest, "https://cosplayangola.com/problems/validation-error", "bad request", errors.New("boom"), "development")

	if got := res.Result().Header.Get("Content-Type"); got != "application/problem+json" {
		t.Fatalf("expected content type problem+json, got %s", got)
	}

	var body ProblemDetails
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Detail != "boom" {
		t.Fatalf("expected detail boom, got %s", body.Detail)
	}
	if body.Instance != "/api/v1/resource" {
		t.Fatalf("expected instance /api/v1/resource, got %s", body.Instance)
	}
}

func TestWrite_ProdSanitizesDetail(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com/api/v1/resource", nil)
	res := httptest.NewRecorder()

	Write(res, req, http.StatusBadRequest, "https://cosplayangola.com/problems/validation-error", "bad request", errors.New("boom"), "production")

	var body ProblemDetails
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Detail != http.StatusText(http.StatusBadRequest) {
		t.Fatalf("expected sanitized detail, got %s", body.Detail)
	}
}

func TestWrite_ValidationErrorCarriesFieldMap(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/v1/auth/register", nil)
	res := httptest.NewRecorder()

	verr := NewValidation("password", "Os campos de senha não coincidem.")
	verr.Add("email", "Já existe um usuário com este email.")

	Write(res, req, http.StatusBadRequest, "https://cosplayangola.com/problems/validation-error", "Invalid request", verr, "production")

	var body ProblemDetails
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Errors) != 2 {
		t.Fatalf("expected two violated fields, got %d", len(body.Errors))
	}
	if body.Errors["password"][0] != "Os campos de senha não coincidem." {
		t.Fatalf("unexpected password message: %v", body.Errors["password"])
	}
}

func TestValidationError_CollectsEveryViolation(t *testing.T) {
	verr := &ValidationError{}
	if verr.HasErrors() {
		t.Fatal("fresh validation error should be empty")
	}
	verr.Add("password", "too short")
	verr.Add("password", "entirely numeric")
	if got := len(verr.Fields["password"]); got != 2 {
		t.Fatalf("expected both messages kept, got %d", got)
	}
}
