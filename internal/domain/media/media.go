package media

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/cosplay-angola/server/internal/api/pagination"
)

var ErrNotFound = errors.New("media not found")

// Media is an uploaded community photo. The binary lives at the image host;
// only metadata is stored locally.
type Media struct {
	ID                uuid.UUID
	Titulo            string
	Descricao         string
	CreditosFotografo string
	Tipo              string
	ArquivoURL        string
	PublicID          string
	Formato           string
	Largura           int
	Altura            int
	TamanhoBytes      int64
	UploadedBy        uuid.UUID
	CreatedAt         time.Time
}

// OwnerID lets the object-level permission policy see who uploaded this.
func (m *Media) OwnerID() uuid.UUID {
	return m.UploadedBy
}

// Projection is the public JSON shape of a media item.
type Projection struct {
	ID                uuid.UUID `json:"id"`
	Titulo            string    `json:"titulo,omitempty"`
	Descricao         string    `json:"descricao,omitempty"`
	CreditosFotografo string    `json:"creditos_fotografo,omitempty"`
	Tipo              string    `json:"tipo"`
	ArquivoURL        string    `json:"arquivo_url"`
	Formato           string    `json:"formato"`
	Largura           int       `json:"largura"`
	Altura            int       `json:"altura"`
	TamanhoBytes      int64     `json:"tamanho_bytes"`
	UploadedBy        uuid.UUID `json:"uploaded_by"`
	CreatedAt         time.Time `json:"created_at"`
}

func (m *Media) Projection() Projection {
	return Projection{
		ID:                m.ID,
		Titulo:            m.Titulo,
		Descricao:         m.Descricao,
		CreditosFotografo: m.CreditosFotografo,
		Tipo:              m.Tipo,
		ArquivoURL:        m.ArquivoURL,
		Formato:           m.Formato,
		Largura:           m.Largura,
		Altura:            m.Altura,
		TamanhoBytes:      m.TamanhoBytes,
		UploadedBy:        m.UploadedBy,
		CreatedAt:         m.CreatedAt,
	}
}

type CreateParams struct {
	Titulo            string
	Descricao         string
	CreditosFotografo string
	ArquivoURL        string
	PublicID          string
	Formato           string
	Largura           int
	Altura            int
	TamanhoBytes      int64
	UploadedBy        uuid.UUID
}

type ListResult struct {
	Media []Media
	Count int
}

type Repository interface {
	List(ctx context.Context, page pagination.Page) (ListResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Media, error)
	Create(ctx context.Context, params CreateParams) (*Media, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
