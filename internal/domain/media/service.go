package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cosplay-angola/server/internal/api/pagination"
	"github.com/cosplay-angola/server/internal/api/problem"
)

const (
	// DefaultMaxBytes caps uploads at 5 MiB.
	DefaultMaxBytes = 5 << 20

	msgTooLarge    = "A imagem não pode exceder 5MB."
	msgBadMimeType = "Formato de imagem não suportado. Use JPG, PNG, WEBP ou GIF."
)

var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// StoredImage is what the image host reports back after an upload.
type StoredImage struct {
	URL      string
	PublicID string
	Format   string
	Bytes    int64
	Width    int
	Height   int
}

// ImageStore is the remote image host.
type ImageStore interface {
	Upload(ctx context.Context, file io.Reader, filename string) (StoredImage, error)
	Destroy(ctx context.Context, publicID string) error
}

// UploadInput carries the optional metadata fields of a multipart upload.
type UploadInput struct {
	Titulo            string
	Descricao         string
	CreditosFotografo string
}

type Service struct {
	repo     Repository
	store    ImageStore
	maxBytes int64
	logger   zerolog.Logger
}

func NewService(repo Repository, store ImageStore, maxBytes int64, logger zerolog.Logger) *Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Service{
		repo:     repo,
		store:    store,
		maxBytes: maxBytes,
		logger:   logger.With().Str("component", "media").Logger(),
	}
}

func (s *Service) List(ctx context.Context, page pagination.Page) (ListResult, error) {
	return s.repo.List(ctx, page)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Media, error) {
	return s.repo.GetByID(ctx, id)
}

// Upload validates the file, pushes it to the image host and records the
// metadata. size is the declared multipart size; the content is still capped
// while reading.
func (s *Service) Upload(ctx context.Context, uploadedBy uuid.UUID, file io.Reader, filename string, size int64, input UploadInput) (*Media, error) {
	if size > s.maxBytes {
		return nil, problem.NewValidation("imagem", msgTooLarge)
	}

	// Sniff the real content type instead of trusting the filename.
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if !allowedMimeTypes[normalizeMime(http.DetectContentType(head))] {
		return nil, problem.NewValidation("imagem", msgBadMimeType)
	}

	body := io.MultiReader(bytes.NewReader(head), io.LimitReader(file, s.maxBytes))
	stored, err := s.store.Upload(ctx, body, filename)
	if err != nil {
		return nil, problem.NewValidation("imagem", fmt.Sprintf("Falha ao enviar imagem: %s", err.Error()))
	}

	created, err := s.repo.Create(ctx, CreateParams{
		Titulo:            strings.TrimSpace(input.Titulo),
		Descricao:         strings.TrimSpace(input.Descricao),
		CreditosFotografo: strings.TrimSpace(input.CreditosFotografo),
		ArquivoURL:        stored.URL,
		PublicID:          stored.PublicID,
		Formato:           stored.Format,
		Largura:           stored.Width,
		Altura:            stored.Height,
		TamanhoBytes:      stored.Bytes,
		UploadedBy:        uploadedBy,
	})
	if err != nil {
		// The remote copy is orphaned otherwise.
		if delErr := s.store.Destroy(ctx, stored.PublicID); delErr != nil {
			s.logger.Error().Err(delErr).Str("public_id", stored.PublicID).Msg("orphaned remote image after failed insert")
		}
		return nil, fmt.Errorf("create media: %w", err)
	}
	return created, nil
}

// Delete removes the remote image best-effort and then the row. A failed
// remote delete is logged, not surfaced; the row always goes.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Destroy(ctx, item.PublicID); err != nil {
		s.logger.Warn().Err(err).Str("public_id", item.PublicID).Msg("remote image delete failed")
	}
	return s.repo.Delete(ctx, id)
}

func normalizeMime(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	return strings.TrimSpace(strings.ToLower(contentType))
}
