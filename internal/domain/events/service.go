package events

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cosplay-angola/server/internal/api/pagination"
	"github.com/cosplay-angola/server/internal/api/problem"
)

const (
	// DestaquesLimit caps the front-page highlight listing.
	DestaquesLimit = 3
	// RelacionadosLimit caps the related-events listing on event detail.
	RelacionadosLimit = 5

	msgCategoriaNotFound = "Categoria não encontrada."
	msgParceiroInvalid   = "Parceiro não encontrado ou inativo."
)

// ImageUploader stores a cover image and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, file io.Reader, filename string) (string, error)
}

type Service struct {
	repo     Repository
	cats     CategoryRepository
	partners PartnerRepository
	uploader ImageUploader
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(repo Repository, cats CategoryRepository, partners PartnerRepository, uploader ImageUploader, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		cats:     cats,
		partners: partners,
		uploader: uploader,
		logger:   logger.With().Str("component", "events").Logger(),
		now:      time.Now,
	}
}

func (s *Service) List(ctx context.Context, filters Filters, page pagination.Page) (ListResult, error) {
	return s.repo.List(ctx, filters, page)
}

// Get resolves an event by UUID or by slug.
func (s *Service) Get(ctx context.Context, ref string) (*Event, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return s.repo.GetByID(ctx, id)
	}
	return s.repo.GetBySlug(ctx, ref)
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*Event, error) {
	params, err := s.resolveCreate(ctx, input)
	if err != nil {
		return nil, err
	}
	event, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

// CreateWithCover creates the event and then uploads its cover image. If the
// upload fails the event row is removed again so a half-created event never
// becomes visible.
func (s *Service) CreateWithCover(ctx context.Context, input CreateInput, file io.Reader, filename string) (*Event, error) {
	event, err := s.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	url, err := s.uploader.Upload(ctx, file, filename)
	if err != nil {
		if delErr := s.repo.Delete(ctx, event.ID); delErr != nil {
			s.logger.Error().Err(delErr).Str("event_id", event.ID.String()).Msg("orphaned event after failed cover upload")
		}
		return nil, problem.NewValidation("imagem_destaque", fmt.Sprintf("Falha ao enviar imagem: %s", err.Error()))
	}

	if err := s.repo.UpdateImagemDestaque(ctx, event.ID, url); err != nil {
		return nil, fmt.Errorf("attach cover image: %w", err)
	}
	event.ImagemDestaque = url
	return event, nil
}

// Update applies a partial update. Fields absent from the input keep their
// stored values, and the past-start-date rule is not re-checked.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*Event, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := mergeInput(existing, input)
	normalized, verr := validateCreate(merged, s.now())
	if verr != nil {
		// Re-run the date checks without the create-only past rule: a
		// stored past start date must stay editable.
		retryable := &problem.ValidationError{Fields: map[string][]string{}}
		for field, messages := range verr.Fields {
			for _, message := range messages {
				if field == "data_inicio" && message == msgStartInPast {
					continue
				}
				retryable.Add(field, message)
			}
		}
		if retryable.HasErrors() {
			return nil, retryable
		}
	}

	if err := s.checkReferences(ctx, &normalized); err != nil {
		return nil, err
	}

	params := UpdateParams{
		Titulo:         normalized.Titulo,
		Slug:           existing.Slug,
		Descricao:      normalized.Descricao,
		DataInicio:     normalized.DataInicio,
		DataFim:        normalized.DataFim,
		Local:          normalized.Local,
		CategoriaID:    normalized.CategoriaID,
		TipoEvento:     normalized.TipoEvento,
		Abrangencia:    normalized.Abrangencia,
		Status:         normalized.Status,
		ImagemDestaque: normalized.ImagemDestaque,
		ParceiroIDs:    normalized.ParceiroIDs,
	}
	updated, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// Proximos lists published events starting today or later, soonest first.
func (s *Service) Proximos(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = pagination.DefaultPageSize
	}
	today := truncateDay(s.now())
	result, err := s.repo.List(ctx, Filters{
		Status:          StatusPublicado,
		DataInicioAfter: &today,
		Ordering:        Ordering{Field: "data_inicio"},
	}, pagination.Page{Number: 1, Size: limit})
	if err != nil {
		return nil, err
	}
	return result.Events, nil
}

// Passados lists events that already started, most recent first.
func (s *Service) Passados(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = pagination.DefaultPageSize
	}
	yesterday := truncateDay(s.now()).AddDate(0, 0, -1)
	result, err := s.repo.List(ctx, Filters{
		DataInicioBefore: &yesterday,
		Ordering:         Ordering{Field: "data_inicio", Desc: true},
	}, pagination.Page{Number: 1, Size: limit})
	if err != nil {
		return nil, err
	}
	return result.Events, nil
}

// Destaques are the next published events, hard-capped at three. There is no
// curated featured flag yet.
func (s *Service) Destaques(ctx context.Context) ([]Event, error) {
	return s.Proximos(ctx, DestaquesLimit)
}

// Relacionados lists published events in the same category, excluding the
// event itself.
func (s *Service) Relacionados(ctx context.Context, id uuid.UUID) ([]Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.repo.Related(ctx, event.Categoria.ID, event.ID, RelacionadosLimit)
}

func (s *Service) resolveCreate(ctx context.Context, input CreateInput) (CreateParams, error) {
	normalized, verr := validateCreate(input, s.now())
	if verr != nil {
		return CreateParams{}, verr
	}
	if err := s.checkReferences(ctx, &normalized); err != nil {
		return CreateParams{}, err
	}

	slug, err := s.uniqueSlug(ctx, normalized.Titulo)
	if err != nil {
		return CreateParams{}, err
	}

	return CreateParams{
		Titulo:         normalized.Titulo,
		Slug:           slug,
		Descricao:      normalized.Descricao,
		DataInicio:     normalized.DataInicio,
		DataFim:        normalized.DataFim,
		Local:          normalized.Local,
		CategoriaID:    normalized.CategoriaID,
		TipoEvento:     normalized.TipoEvento,
		Abrangencia:    normalized.Abrangencia,
		Status:         normalized.Status,
		ImagemDestaque: normalized.ImagemDestaque,
		ParceiroIDs:    normalized.ParceiroIDs,
	}, nil
}

// checkReferences verifies the category and partner foreign keys.
func (s *Service) checkReferences(ctx context.Context, n *normalized) error {
	verr := &problem.ValidationError{Fields: map[string][]string{}}

	category, err := s.cats.GetByID(ctx, n.CategoriaID)
	switch {
	case errors.Is(err, ErrCategoryNotFound):
		verr.Add("categoria", msgCategoriaNotFound)
	case err != nil:
		return fmt.Errorf("load category: %w", err)
	case category.Tipo != CategoryTipoEvento:
		verr.Add("categoria", msgCategoriaNotFound)
	}

	if len(n.ParceiroIDs) > 0 {
		found, err := s.partners.GetByIDs(ctx, n.ParceiroIDs)
		if err != nil {
			return fmt.Errorf("load partners: %w", err)
		}
		active := map[uuid.UUID]bool{}
		for _, partner := range found {
			if partner.Ativo {
				active[partner.ID] = true
			}
		}
		for _, id := range n.ParceiroIDs {
			if !active[id] {
				verr.Add("parceiros", msgParceiroInvalid)
				break
			}
		}
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

func (s *Service) uniqueSlug(ctx context.Context, titulo string) (string, error) {
	base := Slugify(titulo)
	if base == "" {
		base = "evento"
	}
	slug := base
	for i := 2; ; i++ {
		taken, err := s.repo.SlugExists(ctx, slug)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// mergeInput lays the partial input over the stored event, producing the full
// payload the shared validation expects.
func mergeInput(existing *Event, input UpdateInput) CreateInput {
	merged := CreateInput{
		Titulo:         existing.Titulo,
		Descricao:      existing.Descricao,
		DataInicio:     existing.DataInicio.Format(dateLayout),
		Local:          existing.Local,
		Categoria:      existing.Categoria.ID.String(),
		TipoEvento:     string(existing.TipoEvento),
		Abrangencia:    string(existing.Abrangencia),
		Status:         string(existing.Status),
		ImagemDestaque: existing.ImagemDestaque,
	}
	if existing.DataFim != nil {
		merged.DataFim = existing.DataFim.Format(dateLayout)
	}
	for _, partner := range existing.Parceiros {
		merged.Parceiros = append(merged.Parceiros, partner.ID.String())
	}

	if input.Titulo != nil {
		merged.Titulo = *input.Titulo
	}
	if input.Descricao != nil {
		merged.Descricao = *input.Descricao
	}
	if input.DataInicio != nil {
		merged.DataInicio = *input.DataInicio
	}
	if input.DataFim != nil {
		merged.DataFim = *input.DataFim
	}
	if input.Local != nil {
		merged.Local = *input.Local
	}
	if input.Categoria != nil {
		merged.Categoria = *input.Categoria
	}
	if input.TipoEvento != nil {
		merged.TipoEvento = *input.TipoEvento
	}
	if input.Abrangencia != nil {
		merged.Abrangencia = *input.Abrangencia
	}
	if input.Status != nil {
		merged.Status = *input.Status
	}
	if input.ImagemDestaque != nil {
		merged.ImagemDestaque = *input.ImagemDestaque
	}
	if input.Parceiros != nil {
		merged.Parceiros = *input.Parceiros
	}
	return merged
}
