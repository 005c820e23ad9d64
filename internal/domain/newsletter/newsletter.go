// Package newsletter handles public mailing list subscriptions.
package newsletter

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cosplay-angola/server/internal/api/problem"
)

var (
	ErrNotFound   = errors.New("subscriber not found")
	ErrEmailTaken = errors.New("email already subscribed")
)

const (
	msgRequired     = "Este campo é obrigatório."
	msgInvalidEmail = "Insira um endereço de email válido."
	msgDuplicate    = "Este email já está inscrito na newsletter."
)

type Subscriber struct {
	ID              uuid.UUID
	Email           string
	Nome            string
	Ativo           bool
	DataInscricao   time.Time
	DataConfirmacao *time.Time
}

// Projection is the public JSON shape of a subscription.
type Projection struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Nome          string    `json:"nome,omitempty"`
	Ativo         bool      `json:"ativo"`
	DataInscricao time.Time `json:"data_inscricao"`
}

func (s *Subscriber) Projection() Projection {
	return Projection{
		ID:            s.ID,
		Email:         s.Email,
		Nome:          s.Nome,
		Ativo:         s.Ativo,
		DataInscricao: s.DataInscricao,
	}
}

type Repository interface {
	Create(ctx context.Context, email, nome string) (*Subscriber, error)
	GetByEmail(ctx context.Context, email string) (*Subscriber, error)
}

// SubscribeInput is the public subscription payload.
type SubscribeInput struct {
	Email string `json:"email"`
	Nome  string `json:"nome"`
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Subscribe adds an email to the list. Duplicates come back as a validation
// error on the email field so the form can show them inline.
func (s *Service) Subscribe(ctx context.Context, input SubscribeInput) (*Subscriber, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, problem.NewValidation("email", msgRequired)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, problem.NewValidation("email", msgInvalidEmail)
	}

	subscriber, err := s.repo.Create(ctx, email, strings.TrimSpace(input.Nome))
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, problem.NewValidation("email", msgDuplicate)
		}
		return nil, err
	}
	return subscriber, nil
}
