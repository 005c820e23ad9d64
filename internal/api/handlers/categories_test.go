package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cosplay-angola/server/internal/domain/events"
)

// inUseCategoriesRepo refuses deletes the way the foreign key constraint
// would.
type inUseCategoriesRepo struct {
	*stubCategoriesRepo
}

func (s *inUseCategoriesRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.categories[id]; !ok {
		return events.ErrCategoryNotFound
	}
	return events.ErrCategoryInUse
}

func TestCategoriesCreateAndList(t *testing.T) {
	repo := newStubCategoriesRepo()
	handler := NewCategoriesHandler(events.NewCategoryService(repo), "test")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/categories",
		strings.NewReader(`{"nome":"Concursos","descricao":"Competições oficiais."}`))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "Concursos", created["nome"])
	require.Equal(t, "concursos", created["slug"])
	require.Equal(t, "evento", created["tipo"], "tipo defaults to evento")

	rec = httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
}

func TestCategoriesCreateValidation(t *testing.T) {
	handler := NewCategoriesHandler(events.NewCategoryService(newStubCategoriesRepo()), "test")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/categories",
		strings.NewReader(`{"nome":"","tipo":"banda"}`))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Errors map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Contains(t, body.Errors, "nome")
	require.Contains(t, body.Errors, "tipo")
}

func TestCategoriesDeleteInUseIsValidationError(t *testing.T) {
	base := newStubCategoriesRepo()
	category, err := base.Create(context.Background(), events.Category{
		Nome: "Concursos", Slug: "concursos", Tipo: events.CategoryTipoEvento,
	})
	require.NoError(t, err)

	handler := NewCategoriesHandler(events.NewCategoryService(&inUseCategoriesRepo{base}), "test")

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/categories/"+category.ID.String(), nil)
	req.SetPathValue("id", category.ID.String())
	rec := httptest.NewRecorder()
	handler.Delete(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Errors map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Contains(t, body.Errors, "categoria")
}

func TestCategoriesDeleteUnknownIs404(t *testing.T) {
	handler := NewCategoriesHandler(events.NewCategoryService(newStubCategoriesRepo()), "test")

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/categories/"+id, nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	handler.Delete(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
