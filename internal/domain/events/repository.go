package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/cosplay-angola/server/internal/api/pagination"
)

var (
	ErrNotFound         = errors.New("event not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryInUse    = errors.New("category still referenced by events")
	ErrPartnerNotFound  = errors.New("partner not found")
	ErrSlugTaken        = errors.New("slug already in use")
)

// Filters narrows an event listing. Zero values mean "no constraint".
type Filters struct {
	CategoriaID      uuid.UUID
	CategoriaSlug    string
	TipoEvento       TipoEvento
	Status           Status
	Abrangencia      Abrangencia
	DataInicioAfter  *time.Time
	DataInicioBefore *time.Time
	Search           string
	Ordering         Ordering
}

// Ordering is a whitelisted sort column with direction.
type Ordering struct {
	Field string
	Desc  bool
}

var DefaultOrdering = Ordering{Field: "data_inicio", Desc: true}

type ListResult struct {
	Events []Event
	Count  int
}

type CreateParams struct {
	Titulo         string
	Slug           string
	Descricao      string
	DataInicio     time.Time
	DataFim        *time.Time
	Local          string
	CategoriaID    uuid.UUID
	TipoEvento     TipoEvento
	Abrangencia    Abrangencia
	Status         Status
	ImagemDestaque string
	ParceiroIDs    []uuid.UUID
}

// UpdateParams carries a full replacement of the mutable event fields. The
// service resolves partial updates against the stored row before calling the
// repository.
type UpdateParams struct {
	Titulo         string
	Slug           string
	Descricao      string
	DataInicio     time.Time
	DataFim        *time.Time
	Local          string
	CategoriaID    uuid.UUID
	TipoEvento     TipoEvento
	Abrangencia    Abrangencia
	Status         Status
	ImagemDestaque string
	ParceiroIDs    []uuid.UUID
}

type Repository interface {
	List(ctx context.Context, filters Filters, page pagination.Page) (ListResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	Create(ctx context.Context, params CreateParams) (*Event, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Event, error)
	UpdateImagemDestaque(ctx context.Context, id uuid.UUID, url string) error
	Delete(ctx context.Context, id uuid.UUID) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	// Related returns published events sharing a category, newest start
	// first, excluding the event itself.
	Related(ctx context.Context, categoriaID, exclude uuid.UUID, limit int) ([]Event, error)
}

type CategoryRepository interface {
	List(ctx context.Context, tipo CategoryTipo) ([]Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)
	Create(ctx context.Context, category Category) (*Category, error)
	Update(ctx context.Context, category Category) (*Category, error)
	// Delete fails with ErrCategoryInUse while events still reference the
	// category.
	Delete(ctx context.Context, id uuid.UUID) error
}

type PartnerRepository interface {
	List(ctx context.Context, tipo PartnerTipo, ativo *bool) ([]Partner, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Partner, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Partner, error)
	Create(ctx context.Context, partner Partner) (*Partner, error)
	Update(ctx context.Context, partner Partner) (*Partner, error)
}
