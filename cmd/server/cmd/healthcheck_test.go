package cmd

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCheckReadinessHealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","checks":{"database":{"status":"pass"}}}`))
	}))
	defer server.Close()

	status, err := checkReadiness(server.URL, 2*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != "healthy" {
		t.Errorf("expected status healthy, got %q", status)
	}
}

func TestCheckReadinessUnhealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unhealthy"}`))
	}))
	defer server.Close()

	status, err := checkReadiness(server.URL, 2*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != "unhealthy" {
		t.Errorf("expected status unhealthy, got %q", status)
	}
}

func TestCheckReadinessUnreachable(t *testing.T) {
	if _, err := checkReadiness("http://127.0.0.1:1/readyz", 500*time.Millisecond); err == nil {
		t.Fatal("expected error for unreachable server")
	}
}

func TestCheckReadinessInvalidBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	if _, err := checkReadiness(server.URL, 2*time.Second); err == nil {
		t.Fatal("expected error for invalid body")
	}
}
