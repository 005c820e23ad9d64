package events

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// TipoEvento classifies what kind of event this is.
type TipoEvento string

const (
	TipoConcurso  TipoEvento = "concurso"
	TipoExposicao TipoEvento = "exposicao"
	TipoWorkshop  TipoEvento = "workshop"
	TipoCobertura TipoEvento = "cobertura"
)

func (t TipoEvento) Valid() bool {
	switch t {
	case TipoConcurso, TipoExposicao, TipoWorkshop, TipoCobertura:
		return true
	default:
		return false
	}
}

// Abrangencia marks the reach of an event.
type Abrangencia string

const (
	AbrangenciaNacional      Abrangencia = "nacional"
	AbrangenciaInternacional Abrangencia = "internacional"
)

func (a Abrangencia) Valid() bool {
	return a == AbrangenciaNacional || a == AbrangenciaInternacional
}

// Status is the publication lifecycle of an event.
type Status string

const (
	StatusRascunho   Status = "rascunho"
	StatusPublicado  Status = "publicado"
	StatusFinalizado Status = "finalizado"
)

func (s Status) Valid() bool {
	switch s {
	case StatusRascunho, StatusPublicado, StatusFinalizado:
		return true
	default:
		return false
	}
}

type Event struct {
	ID             uuid.UUID
	Titulo         string
	Slug           string
	Descricao      string
	DataInicio     time.Time
	DataFim        *time.Time
	Local          string
	Categoria      Category
	TipoEvento     TipoEvento
	Abrangencia    Abrangencia
	Status         Status
	ImagemDestaque string
	Parceiros      []Partner
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CategoryTipo separates event categories from collection categories.
type CategoryTipo string

const (
	CategoryTipoEvento  CategoryTipo = "evento"
	CategoryTipoColecao CategoryTipo = "colecao"
)

func (t CategoryTipo) Valid() bool {
	return t == CategoryTipoEvento || t == CategoryTipoColecao
}

type Category struct {
	ID        uuid.UUID
	Nome      string
	Slug      string
	Descricao string
	Tipo      CategoryTipo
	CreatedAt time.Time
}

// PartnerTipo is the relationship a partner has with the community.
type PartnerTipo string

const (
	PartnerPatrocinador  PartnerTipo = "patrocinador"
	PartnerApoio         PartnerTipo = "apoio"
	PartnerMidia         PartnerTipo = "midia"
	PartnerInstitucional PartnerTipo = "institucional"
)

func (t PartnerTipo) Valid() bool {
	switch t {
	case PartnerPatrocinador, PartnerApoio, PartnerMidia, PartnerInstitucional:
		return true
	default:
		return false
	}
}

type Partner struct {
	ID        uuid.UUID
	Nome      string
	Tipo      PartnerTipo
	LogoURL   string
	Site      string
	Descricao string
	Ativo     bool
	CreatedAt time.Time
}

// DiasAteEvento counts whole days between now and the start date. Past events
// yield a negative count. Both sides are truncated to dates so a same-day
// event reads zero regardless of the hour.
func (e *Event) DiasAteEvento(now time.Time) int {
	return int(truncateDay(e.DataInicio).Sub(truncateDay(now)).Hours() / 24)
}

// JaAconteceu reports whether the event is over. Events without an end date
// are over once their start date has passed.
func (e *Event) JaAconteceu(now time.Time) bool {
	end := e.DataInicio
	if e.DataFim != nil {
		end = *e.DataFim
	}
	return truncateDay(now).After(truncateDay(end))
}

// DuracaoDias is the inclusive day span of the event. A single-day event
// lasts one day.
func (e *Event) DuracaoDias() int {
	if e.DataFim == nil {
		return 1
	}
	days := int(truncateDay(*e.DataFim).Sub(truncateDay(e.DataInicio)).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CategoryProjection is the public shape of a category.
type CategoryProjection struct {
	ID        uuid.UUID    `json:"id"`
	Nome      string       `json:"nome"`
	Slug      string       `json:"slug"`
	Descricao string       `json:"descricao,omitempty"`
	Tipo      CategoryTipo `json:"tipo"`
}

func (c Category) Projection() CategoryProjection {
	return CategoryProjection{ID: c.ID, Nome: c.Nome, Slug: c.Slug, Descricao: c.Descricao, Tipo: c.Tipo}
}

// PartnerProjection is the full public shape of a partner.
type PartnerProjection struct {
	ID        uuid.UUID   `json:"id"`
	Nome      string      `json:"nome"`
	Tipo      PartnerTipo `json:"tipo"`
	LogoURL   string      `json:"logo_url,omitempty"`
	Site      string      `json:"site,omitempty"`
	Descricao string      `json:"descricao,omitempty"`
	Ativo     bool        `json:"ativo"`
}

func (p Partner) Projection() PartnerProjection {
	return PartnerProjection{
		ID:        p.ID,
		Nome:      p.Nome,
		Tipo:      p.Tipo,
		LogoURL:   p.LogoURL,
		Site:      p.Site,
		Descricao: p.Descricao,
		Ativo:     p.Ativo,
	}
}

// PartnerRef is the compact partner shape nested inside event detail.
type PartnerRef struct {
	ID      uuid.UUID   `json:"id"`
	Nome    string      `json:"nome"`
	Tipo    PartnerTipo `json:"tipo"`
	LogoURL string      `json:"logo_url,omitempty"`
}

// ListProjection is the compact shape used by event listings.
type ListProjection struct {
	ID             uuid.UUID          `json:"id"`
	Titulo         string             `json:"titulo"`
	Slug           string             `json:"slug"`
	DataInicio     string             `json:"data_inicio"`
	DataFim        *string            `json:"data_fim"`
	Local          string             `json:"local,omitempty"`
	Categoria      CategoryProjection `json:"categoria"`
	TipoEvento     TipoEvento         `json:"tipo_evento"`
	Abrangencia    Abrangencia        `json:"abrangencia"`
	Status         Status             `json:"status"`
	ImagemDestaque string             `json:"imagem_destaque,omitempty"`
	DiasAteEvento  int                `json:"dias_ate_evento"`
}

// DetailProjection is the full shape used by event detail and destaques.
type DetailProjection struct {
	ID             uuid.UUID          `json:"id"`
	Titulo         string             `json:"titulo"`
	Slug           string             `json:"slug"`
	Descricao      string             `json:"descricao,omitempty"`
	DataInicio     string             `json:"data_inicio"`
	DataFim        *string            `json:"data_fim"`
	Local          string             `json:"local,omitempty"`
	Categoria      CategoryProjection `json:"categoria"`
	TipoEvento     TipoEvento         `json:"tipo_evento"`
	Abrangencia    Abrangencia        `json:"abrangencia"`
	Status         Status             `json:"status"`
	ImagemDestaque string             `json:"imagem_destaque,omitempty"`
	Parceiros      []PartnerRef       `json:"parceiros"`
	DiasAteEvento  int                `json:"dias_ate_evento"`
	DuracaoDias    int                `json:"duracao_dias"`
	JaAconteceu    bool               `json:"ja_aconteceu"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

func (e *Event) List(now time.Time) ListProjection {
	return ListProjection{
		ID:             e.ID,
		Titulo:         e.Titulo,
		Slug:           e.Slug,
		DataInicio:     e.DataInicio.Format(dateLayout),
		DataFim:        formatDatePtr(e.DataFim),
		Local:          e.Local,
		Categoria:      e.Categoria.Projection(),
		TipoEvento:     e.TipoEvento,
		Abrangencia:    e.Abrangencia,
		Status:         e.Status,
		ImagemDestaque: e.ImagemDestaque,
		DiasAteEvento:  e.DiasAteEvento(now),
	}
}

func (e *Event) Detail(now time.Time) DetailProjection {
	parceiros := make([]PartnerRef, 0, len(e.Parceiros))
	for _, p := range e.Parceiros {
		parceiros = append(parceiros, PartnerRef{ID: p.ID, Nome: p.Nome, Tipo: p.Tipo, LogoURL: p.LogoURL})
	}
	return DetailProjection{
		ID:             e.ID,
		Titulo:         e.Titulo,
		Slug:           e.Slug,
		Descricao:      e.Descricao,
		DataInicio:     e.DataInicio.Format(dateLayout),
		DataFim:        formatDatePtr(e.DataFim),
		Local:          e.Local,
		Categoria:      e.Categoria.Projection(),
		TipoEvento:     e.TipoEvento,
		Abrangencia:    e.Abrangencia,
		Status:         e.Status,
		ImagemDestaque: e.ImagemDestaque,
		Parceiros:      parceiros,
		DiasAteEvento:  e.DiasAteEvento(now),
		DuracaoDias:    e.DuracaoDias(),
		JaAconteceu:    e.JaAconteceu(now),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(dateLayout)
	return &formatted
}

// Slugify lowercases, strips accents common in Portuguese titles and
// collapses everything else into hyphens.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		r = deaccent(r)
		switch {
		case unicode.IsLetter(r) && r < unicode.MaxASCII, unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func deaccent(r rune) rune {
	switch r {
	case 'á', 'à', 'â', 'ã', 'ä':
		return 'a'
	case 'é', 'è', 'ê', 'ë':
		return 'e'
	case 'í', 'ì', 'î', 'ï':
		return 'i'
	case 'ó', 'ò', 'ô', 'õ', 'ö':
		return 'o'
	case 'ú', 'ù', 'û', 'ü':
		return 'u'
	case 'ç':
		return 'c'
	case 'ñ':
		return 'n'
	default:
		return r
	}
}
