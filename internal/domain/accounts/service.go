package accounts

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/cosplay-angola/server/internal/api/problem"
	"github.com/cosplay-angola/server/internal/auth"
)

// BcryptCost is the cost factor for bcrypt password hashing
const BcryptCost = 12

// Service orchestrates the credential store and the token service for the
// registration, login, refresh and logout flows.
type Service struct {
	repo     Repository
	tokens   *auth.TokenService
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewService(repo Repository, tokens *auth.TokenService, logger zerolog.Logger) *Service {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return field.Name
		}
		return name
	})
	return &Service{
		repo:     repo,
		tokens:   tokens,
		validate: validate,
		logger:   logger.With().Str("component", "accounts").Logger(),
	}
}

type RegisterInput struct {
	Username  string `json:"username" validate:"required,max=150"`
	Email     string `json:"email" validate:"required,email,max=150"`
	Password  string `json:"password" validate:"required"`
	Password2 string `json:"password2" validate:"required"`
	FirstName string `json:"first_name" validate:"omitempty,max=150"`
	LastName  string `json:"last_name" validate:"omitempty,max=150"`
}

// Register creates a new account. Every violated rule is collected into a
// single field→messages validation error rather than failing on the first
// one. On success only the bcrypt hash is stored.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*Account, error) {
	verr := &problem.ValidationError{}
	s.collectStructural(input, verr)

	if _, ok := verr.Fields["email"]; !ok {
		if _, err := s.repo.GetByEmail(ctx, input.Email); err == nil {
			verr.Add("email", "Já existe um usuário com este email.")
		} else if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("check email: %w", err)
		}
	}
	if _, ok := verr.Fields["username"]; !ok {
		if _, err := s.repo.GetByUsername(ctx, input.Username); err == nil {
			verr.Add("username", "Já existe um usuário com este nome.")
		} else if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("check username: %w", err)
		}
	}

	if input.Password != "" {
		for _, message := range validatePassword(input.Password, input.Username, input.Email) {
			verr.Add("password", message)
		}
	}
	if input.Password != "" && input.Password2 != "" && input.Password != input.Password2 {
		verr.Add("password", "Os campos de senha não coincidem.")
	}

	if verr.HasErrors() {
		return nil, verr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account, err := s.repo.Create(ctx, CreateParams{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
	})
	if err != nil {
		// Uniqueness races lost to a concurrent registration surface the
		// same way the pre-checks do.
		switch {
		case errors.Is(err, ErrEmailTaken):
			return nil, problem.NewValidation("email", "Já existe um usuário com este email.")
		case errors.Is(err, ErrUsernameTaken):
			return nil, problem.NewValidation("username", "Já existe um usuário com este nome.")
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.logger.Info().Str("username", account.Username).Msg("account registered")
	return account, nil
}

func (s *Service) collectStructural(input RegisterInput, verr *problem.ValidationError) {
	err := s.validate.Struct(input)
	if err == nil {
		return
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		verr.Add("non_field_errors", "Dados inválidos.")
		return
	}
	for _, fieldError := range fieldErrors {
		switch fieldError.Tag() {
		case "required":
			verr.Add(fieldError.Field(), "Este campo é obrigatório.")
		case "email":
			verr.Add(fieldError.Field(), "Insira um endereço de email válido.")
		case "max":
			verr.Add(fieldError.Field(), "Este campo é muito longo.")
		default:
			verr.Add(fieldError.Field(), "Valor inválido.")
		}
	}
}

// Login exchanges credentials for a token pair. Unknown usernames and wrong
// passwords fail identically so callers cannot probe which accounts exist.
func (s *Service) Login(ctx context.Context, username, password string) (auth.TokenPair, error) {
	account, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return auth.TokenPair{}, ErrInvalidCredentials
		}
		return auth.TokenPair{}, fmt.Errorf("load account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return auth.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.tokens.Issue(account.ID)
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("issue tokens: %w", err)
	}

	if err := s.repo.UpdateLastLogin(ctx, account.ID); err != nil {
		s.logger.Warn().Err(err).Str("username", account.Username).Msg("last login update failed")
	}
	return pair, nil
}

// Refresh rotates a refresh token into a fresh pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	return s.tokens.Refresh(ctx, refreshToken)
}

// VerifyToken reports whether the token is a valid, unrevoked token of either
// type.
func (s *Service) VerifyToken(ctx context.Context, token string) error {
	if _, err := s.tokens.Verify(ctx, token, auth.TokenTypeAccess); err == nil {
		return nil
	}
	if _, err := s.tokens.Verify(ctx, token, auth.TokenTypeRefresh); err != nil {
		return auth.ErrInvalidToken
	}
	return nil
}

// Logout revokes the refresh token. Malformed, already-used and wrong-type
// tokens all fail the same way.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.tokens.Revoke(ctx, refreshToken)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

// ResolveActor turns a bearer access token into the acting account. Callers
// decide what an error means; anonymous-readable paths treat it as "no
// actor".
func (s *Service) ResolveActor(ctx context.Context, accessToken string) (*auth.Actor, error) {
	claims, err := s.tokens.Verify(ctx, accessToken, auth.TokenTypeAccess)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	accountID, err := claims.AccountID()
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Actor{
		ID:          account.ID,
		Username:    account.Username,
		IsStaff:     account.IsStaff,
		IsSuperuser: account.IsSuperuser,
	}, nil
}
