package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/cosplay-angola/server/internal/api/pagination"
	"github.com/cosplay-angola/server/internal/domain/events"
)

type stubEventsRepo struct {
	events []events.Event
	slugs  map[string]bool
}

func newStubEventsRepo() *stubEventsRepo {
	return &stubEventsRepo{slugs: map[string]bool{}}
}

func (s *stubEventsRepo) List(_ context.Context, _ events.Filters, page pagination.Page) (events.ListResult, error) {
	start := page.Offset()
	if start > len(s.events) {
		start = len(s.events)
	}
	end := start + page.Size
	if end > len(s.events) {
		end = len(s.events)
	}
	return events.ListResult{Events: s.events[start:end], Count: len(s.events)}, nil
}

func (s *stubEventsRepo) GetByID(_ context.Context, id uuid.UUID) (*events.Event, error) {
	for i := range s.events {
		if s.events[i].ID == id {
			return &s.events[i], nil
		}
	}
	return nil, events.ErrNotFound
}

func (s *stubEventsRepo) GetBySlug(_ context.Context, slug string) (*events.Event, error) {
	for i := range s.events {
		if s.events[i].Slug == slug {
			return &s.events[i], nil
		}
	}
	return nil, events.ErrNotFound
}

func (s *stubEventsRepo) Create(_ context.Context, params events.CreateParams) (*events.Event, error) {
	event := events.Event{
		ID:          uuid.New(),
		Titulo:      params.Titulo,
		Slug:        params.Slug,
		Descricao:   params.Descricao,
		DataInicio:  params.DataInicio,
		DataFim:     params.DataFim,
		Local:       params.Local,
		Categoria:   events.Category{ID: params.CategoriaID, Tipo: events.CategoryTipoEvento},
		TipoEvento:  params.TipoEvento,
		Abrangencia: params.Abrangencia,
		Status:      params.Status,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	s.events = append(s.events, event)
	s.slugs[event.Slug] = true
	return &event, nil
}

func (s *stubEventsRepo) Update(_ context.Context, id uuid.UUID, params events.UpdateParams) (*events.Event, error) {
	for i := range s.events {
		if s.events[i].ID == id {
			s.events[i].Titulo = params.Titulo
			s.events[i].Descricao = params.Descricao
			s.events[i].DataInicio = params.DataInicio
			s.events[i].DataFim = params.DataFim
			s.events[i].Local = params.Local
			s.events[i].TipoEvento = params.TipoEvento
			s.events[i].Abrangencia = params.Abrangencia
			s.events[i].Status = params.Status
			return &s.events[i], nil
		}
	}
	return nil, events.ErrNotFound
}

func (s *stubEventsRepo) UpdateImagemDestaque(_ context.Context, id uuid.UUID, url string) error {
	for i := range s.events {
		if s.events[i].ID == id {
			s.events[i].ImagemDestaque = url
			return nil
		}
	}
	return events.ErrNotFound
}

func (s *stubEventsRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i := range s.events {
		if s.events[i].ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return nil
		}
	}
	return events.ErrNotFound
}

func (s *stubEventsRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	return s.slugs[slug], nil
}

func (s *stubEventsRepo) Related(_ context.Context, categoriaID, exclude uuid.UUID, limit int) ([]events.Event, error) {
	var related []events.Event
	for i := range s.events {
		event := s.events[i]
		if event.Categoria.ID == categoriaID && event.ID != exclude && event.Status == events.StatusPublicado {
			related = append(related, event)
		}
		if len(related) == limit {
			break
		}
	}
	return related, nil
}

type stubCategoriesRepo struct {
	categories map[uuid.UUID]*events.Category
}

func newStubCategoriesRepo() *stubCategoriesRepo {
	return &stubCategoriesRepo{categories: map[uuid.UUID]*events.Category{}}
}

func (s *stubCategoriesRepo) List(_ context.Context, tipo events.CategoryTipo) ([]events.Category, error) {
	var listed []events.Category
	for _, category := range s.categories {
		if tipo == "" || category.Tipo == tipo {
			listed = append(listed, *category)
		}
	}
	return listed, nil
}

func (s *stubCategoriesRepo) GetByID(_ context.Context, id uuid.UUID) (*events.Category, error) {
	if category, ok := s.categories[id]; ok {
		return category, nil
	}
	return nil, events.ErrCategoryNotFound
}

func (s *stubCategoriesRepo) Create(_ context.Context, category events.Category) (*events.Category, error) {
	category.ID = uuid.New()
	s.categories[category.ID] = &category
	return &category, nil
}

func (s *stubCategoriesRepo) Update(_ context.Context, category events.Category) (*events.Category, error) {
	if _, ok := s.categories[category.ID]; !ok {
		return nil, events.ErrCategoryNotFound
	}
	s.categories[category.ID] = &category
	return &category, nil
}

func (s *stubCategoriesRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.categories[id]; !ok {
		return events.ErrCategoryNotFound
	}
	delete(s.categories, id)
	return nil
}

type stubPartnersRepo struct {
	partners map[uuid.UUID]*events.Partner
}

func newStubPartnersRepo() *stubPartnersRepo {
	return &stubPartnersRepo{partners: map[uuid.UUID]*events.Partner{}}
}

func (s *stubPartnersRepo) List(_ context.Context, tipo events.PartnerTipo, ativo *bool) ([]events.Partner, error) {
	var listed []events.Partner
	for _, partner := range s.partners {
		if tipo != "" && partner.Tipo != tipo {
			continue
		}
		if ativo != nil && partner.Ativo != *ativo {
			continue
		}
		listed = append(listed, *partner)
	}
	return listed, nil
}

func (s *stubPartnersRepo) GetByID(_ context.Context, id uuid.UUID) (*events.Partner, error) {
	if partner, ok := s.partners[id]; ok {
		return partner, nil
	}
	return nil, events.ErrPartnerNotFound
}

func (s *stubPartnersRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]events.Partner, error) {
	var listed []events.Partner
	for _, id := range ids {
		if partner, ok := s.partners[id]; ok {
			listed = append(listed, *partner)
		}
	}
	return listed, nil
}

func (s *stubPartnersRepo) Create(_ context.Context, partner events.Partner) (*events.Partner, error) {
	partner.ID = uuid.New()
	s.partners[partner.ID] = &partner
	return &partner, nil
}

func (s *stubPartnersRepo) Update(_ context.Context, partner events.Partner) (*events.Partner, error) {
	if _, ok := s.partners[partner.ID]; !ok {
		return nil, events.ErrPartnerNotFound
	}
	s.partners[partner.ID] = &partner
	return &partner, nil
}

type eventsFixture struct {
	handler    *EventsHandler
	repo       *stubEventsRepo
	categories *stubCategoriesRepo
}

func newEventsFixture(t *testing.T) *eventsFixture {
	t.Helper()
	repo := newStubEventsRepo()
	categories := newStubCategoriesRepo()
	partners := newStubPartnersRepo()
	service := events.NewService(repo, categories, partners, nil, zerolog.Nop())
	return &eventsFixture{
		handler:    NewEventsHandler(service, "test"),
		repo:       repo,
		categories: categories,
	}
}

func (f *eventsFixture) seedCategory(t *testing.T) *events.Category {
	t.Helper()
	category, err := f.categories.Create(context.Background(), events.Category{
		Nome: "Concursos",
		Slug: "concursos",
		Tipo: events.CategoryTipoEvento,
	})
	require.NoError(t, err)
	return category
}

func (f *eventsFixture) seedEvents(t *testing.T, category *events.Category, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := f.repo.Create(context.Background(), events.CreateParams{
			Titulo:      fmt.Sprintf("Evento %02d", i),
			Slug:        fmt.Sprintf("evento-%02d", i),
			DataInicio:  time.Now().AddDate(0, 0, i+1),
			Local:       "Luanda",
			CategoriaID: category.ID,
			TipoEvento:  events.TipoConcurso,
			Abrangencia: events.AbrangenciaNacional,
			Status:      events.StatusPublicado,
		})
		require.NoError(t, err)
	}
}

func getRequest(handler http.HandlerFunc, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	res := httptest.NewRecorder()
	handler(res, req)
	return res
}

func TestEventListPaginationEnvelope(t *testing.T) {
	f := newEventsFixture(t)
	f.seedEvents(t, f.seedCategory(t), 15)

	res := getRequest(f.handler.List, "/api/v1/events")
	require.Equal(t, http.StatusOK, res.Code)

	var body struct {
		Count       int              `json:"count"`
		TotalPages  int              `json:"total_pages"`
		CurrentPage int              `json:"current_page"`
		PageSize    int              `json:"page_size"`
		Next        *string          `json:"next"`
		Previous    *string          `json:"previous"`
		Results     []map[string]any `json:"results"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Equal(t, 15, body.Count)
	require.Equal(t, 2, body.TotalPages)
	require.Equal(t, 1, body.CurrentPage)
	require.Equal(t, 10, body.PageSize)
	require.Len(t, body.Results, 10)
	require.NotNil(t, body.Next)
	require.Nil(t, body.Previous)

	res = getRequest(f.handler.List, "/api/v1/events?page=2")
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Len(t, body.Results, 5)
	require.Nil(t, body.Next)
	require.NotNil(t, body.Previous)
}

func TestEventListOutOfRangePageIs404(t *testing.T) {
	f := newEventsFixture(t)
	f.seedEvents(t, f.seedCategory(t), 5)

	res := getRequest(f.handler.List, "/api/v1/events?page=3")
	require.Equal(t, http.StatusNotFound, res.Code)
	require.Contains(t, res.Header().Get("Content-Type"), "application/problem+json")
}

func TestEventListRejectsUnknownFilterValue(t *testing.T) {
	f := newEventsFixture(t)

	res := getRequest(f.handler.List, "/api/v1/events?tipo_evento=rave")
	require.Equal(t, http.StatusBadRequest, res.Code)

	body := decodeBody(t, res)
	errs, ok := body["errors"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, errs, "tipo_evento")
}

func TestEventListCompactProjection(t *testing.T) {
	f := newEventsFixture(t)
	f.seedEvents(t, f.seedCategory(t), 1)

	res := getRequest(f.handler.List, "/api/v1/events")
	require.Equal(t, http.StatusOK, res.Code)

	var body struct {
		Results []map[string]any `json:"results"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Len(t, body.Results, 1)
	item := body.Results[0]
	require.Contains(t, item, "dias_ate_evento")
	require.NotContains(t, item, "parceiros")
	require.NotContains(t, item, "duracao_dias")
}

func TestEventGetBySlugAndByID(t *testing.T) {
	f := newEventsFixture(t)
	f.seedEvents(t, f.seedCategory(t), 1)
	event := f.repo.events[0]

	for _, ref := range []string{event.Slug, event.ID.String()} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/events/"+ref, nil)
		req.SetPathValue("id", ref)
		res := httptest.NewRecorder()
		f.handler.Get(res, req)

		require.Equal(t, http.StatusOK, res.Code)
		body := decodeBody(t, res)
		require.Equal(t, event.Titulo, body["titulo"])
		require.Contains(t, body, "duracao_dias")
		require.Contains(t, body, "ja_aconteceu")
	}
}

func TestEventGetUnknownSlugIs404(t *testing.T) {
	f := newEventsFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/nao-existe", nil)
	req.SetPathValue("id", "nao-existe")
	res := httptest.NewRecorder()
	f.handler.Get(res, req)

	require.Equal(t, http.StatusNotFound, res.Code)
}

func TestEventCreateJSON(t *testing.T) {
	f := newEventsFixture(t)
	category := f.seedCategory(t)

	start := time.Now().AddDate(0, 1, 0).Format("2006-01-02")
	res := postJSON(t, f.handler.Create, "/api/v1/events", map[string]any{
		"titulo":      "Festival de Cosplay de Luanda",
		"data_inicio": start,
		"local":       "Luanda",
		"categoria":   category.ID.String(),
		"tipo_evento": "concurso",
	})

	require.Equal(t, http.StatusCreated, res.Code)
	body := decodeBody(t, res)
	require.Equal(t, "festival-de-cosplay-de-luanda", body["slug"])
	require.Equal(t, "rascunho", body["status"])
	require.Equal(t, "nacional", body["abrangencia"])
}

func TestEventCreateValidationCollectsFields(t *testing.T) {
	f := newEventsFixture(t)

	res := postJSON(t, f.handler.Create, "/api/v1/events", map[string]any{
		"tipo_evento": "rave",
	})

	require.Equal(t, http.StatusBadRequest, res.Code)
	body := decodeBody(t, res)
	errs, ok := body["errors"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, errs, "titulo")
	require.Contains(t, errs, "data_inicio")
	require.Contains(t, errs, "tipo_evento")
}

func TestEventDelete(t *testing.T) {
	f := newEventsFixture(t)
	f.seedEvents(t, f.seedCategory(t), 1)
	id := f.repo.events[0].ID

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/events/"+id.String(), nil)
	req.SetPathValue("id", id.String())
	res := httptest.NewRecorder()
	f.handler.Delete(res, req)

	require.Equal(t, http.StatusNoContent, res.Code)
	require.Empty(t, f.repo.events)
}

func TestProximosRejectsBadLimit(t *testing.T) {
	f := newEventsFixture(t)

	res := getRequest(f.handler.Proximos, "/api/v1/events/proximos?limit=0")
	require.Equal(t, http.StatusBadRequest, res.Code)

	res = getRequest(f.handler.Proximos, "/api/v1/events/proximos?limit=200")
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestDestaquesReturnsBareArray(t *testing.T) {
	f := newEventsFixture(t)
	f.seedEvents(t, f.seedCategory(t), 5)

	res := getRequest(f.handler.Destaques, "/api/v1/events/destaques")
	require.Equal(t, http.StatusOK, res.Code)

	var listed []map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &listed))
	require.LessOrEqual(t, len(listed), 3)
}
