package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/cosplay-angola/server/internal/api/middleware"
	"github.com/cosplay-angola/server/internal/api/pagination"
	"github.com/cosplay-angola/server/internal/auth"
	"github.com/cosplay-angola/server/internal/domain/media"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

type stubMediaRepo struct {
	items map[uuid.UUID]*media.Media
}

func newStubMediaRepo() *stubMediaRepo {
	return &stubMediaRepo{items: map[uuid.UUID]*media.Media{}}
}

func (s *stubMediaRepo) List(_ context.Context, page pagination.Page) (media.ListResult, error) {
	var listed []media.Media
	for _, item := range s.items {
		listed = append(listed, *item)
	}
	if len(listed) > page.Size {
		listed = listed[:page.Size]
	}
	return media.ListResult{Media: listed, Count: len(s.items)}, nil
}

func (s *stubMediaRepo) GetByID(_ context.Context, id uuid.UUID) (*media.Media, error) {
	if item, ok := s.items[id]; ok {
		return item, nil
	}
	return nil, media.ErrNotFound
}

func (s *stubMediaRepo) Create(_ context.Context, params media.CreateParams) (*media.Media, error) {
	item := &media.Media{
		ID:                uuid.New(),
		Titulo:            params.Titulo,
		Descricao:         params.Descricao,
		CreditosFotografo: params.CreditosFotografo,
		Tipo:              "imagem",
		ArquivoURL:        params.ArquivoURL,
		PublicID:          params.PublicID,
		Formato:           params.Formato,
		Largura:           params.Largura,
		Altura:            params.Altura,
		TamanhoBytes:      params.TamanhoBytes,
		UploadedBy:        params.UploadedBy,
		CreatedAt:         time.Now(),
	}
	s.items[item.ID] = item
	return item, nil
}

func (s *stubMediaRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.items[id]; !ok {
		return media.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

type stubImageStore struct {
	destroyed []string
}

func (s *stubImageStore) Upload(_ context.Context, file io.Reader, filename string) (media.StoredImage, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return media.StoredImage{}, err
	}
	return media.StoredImage{
		URL:      "https://res.cloudinary.com/test/" + filename,
		PublicID: "cosplay/" + filename,
		Format:   "png",
		Bytes:    int64(len(data)),
	}, nil
}

func (s *stubImageStore) Destroy(_ context.Context, publicID string) error {
	s.destroyed = append(s.destroyed, publicID)
	return nil
}

func newMediaFixture(t *testing.T) (*MediaHandler, *stubMediaRepo) {
	t.Helper()
	repo := newStubMediaRepo()
	service := media.NewService(repo, &stubImageStore{}, 0, zerolog.Nop())
	return NewMediaHandler(service, "test"), repo
}

func multipartUpload(t *testing.T, fields map[string]string, filename string, payload []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("imagem", filename)
		require.NoError(t, err)
		_, err = part.Write(payload)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/media/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func asActor(req *http.Request, actor *auth.Actor) *http.Request {
	return req.WithContext(middleware.WithActor(req.Context(), actor))
}

func TestMediaUploadStoresMetadata(t *testing.T) {
	handler, repo := newMediaFixture(t)
	actor := &auth.Actor{ID: uuid.New(), Username: "admin", IsSuperuser: true}

	payload := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 64)...)
	req := asActor(multipartUpload(t, map[string]string{
		"titulo":             "Concurso 2026",
		"creditos_fotografo": "João",
	}, "foto.png", payload), actor)
	res := httptest.NewRecorder()
	handler.Upload(res, req)

	require.Equal(t, http.StatusCreated, res.Code)
	body := decodeBody(t, res)
	require.Equal(t, "Concurso 2026", body["titulo"])
	require.Equal(t, "João", body["creditos_fotografo"])
	require.Equal(t, actor.ID.String(), body["uploaded_by"])
	require.Len(t, repo.items, 1)
}

func TestMediaUploadRequiresFile(t *testing.T) {
	handler, _ := newMediaFixture(t)
	actor := &auth.Actor{ID: uuid.New(), IsSuperuser: true}

	req := asActor(multipartUpload(t, map[string]string{"titulo": "Sem foto"}, "", nil), actor)
	res := httptest.NewRecorder()
	handler.Upload(res, req)

	require.Equal(t, http.StatusBadRequest, res.Code)
	body := decodeBody(t, res)
	errs, ok := body["errors"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, errs, "imagem")
}

func TestMediaUploadRejectsNonImage(t *testing.T) {
	handler, repo := newMediaFixture(t)
	actor := &auth.Actor{ID: uuid.New(), IsSuperuser: true}

	req := asActor(multipartUpload(t, nil, "doc.pdf", []byte("%PDF-1.7 not an image")), actor)
	res := httptest.NewRecorder()
	handler.Upload(res, req)

	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Empty(t, repo.items)
}

func TestMediaDeleteOwnerAllowed(t *testing.T) {
	handler, repo := newMediaFixture(t)
	owner := &auth.Actor{ID: uuid.New(), Username: "dono"}
	item, err := repo.Create(context.Background(), media.CreateParams{UploadedBy: owner.ID, PublicID: "cosplay/x"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/media/"+item.ID.String(), nil)
	req.SetPathValue("id", item.ID.String())
	res := httptest.NewRecorder()
	handler.Delete(res, asActor(req, owner))

	require.Equal(t, http.StatusNoContent, res.Code)
	require.Empty(t, repo.items)
}

func TestMediaDeleteStrangerForbidden(t *testing.T) {
	handler, repo := newMediaFixture(t)
	item, err := repo.Create(context.Background(), media.CreateParams{UploadedBy: uuid.New()})
	require.NoError(t, err)

	stranger := &auth.Actor{ID: uuid.New(), Username: "outro"}
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/media/"+item.ID.String(), nil)
	req.SetPathValue("id", item.ID.String())
	res := httptest.NewRecorder()
	handler.Delete(res, asActor(req, stranger))

	require.Equal(t, http.StatusForbidden, res.Code)
	require.Len(t, repo.items, 1)
}

func TestMediaDeleteSuperuserAllowed(t *testing.T) {
	handler, repo := newMediaFixture(t)
	item, err := repo.Create(context.Background(), media.CreateParams{UploadedBy: uuid.New()})
	require.NoError(t, err)

	admin := &auth.Actor{ID: uuid.New(), Username: "admin", IsSuperuser: true}
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/media/"+item.ID.String(), nil)
	req.SetPathValue("id", item.ID.String())
	res := httptest.NewRecorder()
	handler.Delete(res, asActor(req, admin))

	require.Equal(t, http.StatusNoContent, res.Code)
	require.Empty(t, repo.items)
}

func TestMediaGetUnknownIs404(t *testing.T) {
	handler, _ := newMediaFixture(t)

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/media/"+id, nil)
	req.SetPathValue("id", id)
	res := httptest.NewRecorder()
	handler.Get(res, req)

	require.Equal(t, http.StatusNotFound, res.Code)
}
