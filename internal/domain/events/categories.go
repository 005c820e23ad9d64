package events

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cosplay-angola/server/internal/api/problem"
)

const msgCategoryInUse = "Não é possível excluir uma categoria associada a eventos."

// CategoryInput is the JSON payload for category create and update.
type CategoryInput struct {
	Nome      string `json:"nome"`
	Descricao string `json:"descricao"`
	Tipo      string `json:"tipo"`
}

type CategoryService struct {
	repo CategoryRepository
}

func NewCategoryService(repo CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// List returns categories, optionally narrowed by tipo. An unknown tipo is a
// filter error, not an empty result.
func (s *CategoryService) List(ctx context.Context, tipo string) ([]Category, error) {
	filter := CategoryTipo(strings.ToLower(strings.TrimSpace(tipo)))
	if filter != "" && !filter.Valid() {
		return nil, FilterError{Field: "tipo", Message: "valor não suportado"}
	}
	return s.repo.List(ctx, filter)
}

func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*Category, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*Category, error) {
	category, verr := validateCategory(input)
	if verr != nil {
		return nil, verr
	}
	category.Slug = Slugify(category.Nome)
	created, err := s.repo.Create(ctx, category)
	if err != nil {
		if errors.Is(err, ErrSlugTaken) {
			return nil, problem.NewValidation("nome", "Já existe uma categoria com este nome.")
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, input CategoryInput) (*Category, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	category, verr := validateCategory(input)
	if verr != nil {
		return nil, verr
	}
	category.ID = existing.ID
	category.Slug = existing.Slug
	updated, err := s.repo.Update(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return updated, nil
}

// Delete removes a category. Categories referenced by events are protected
// and surface as a validation error instead of cascading.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, ErrCategoryInUse) {
		return problem.NewValidation("categoria", msgCategoryInUse)
	}
	return err
}

func validateCategory(input CategoryInput) (Category, *problem.ValidationError) {
	verr := &problem.ValidationError{Fields: map[string][]string{}}
	category := Category{
		Nome:      strings.TrimSpace(input.Nome),
		Descricao: strings.TrimSpace(input.Descricao),
		Tipo:      CategoryTipo(strings.ToLower(strings.TrimSpace(input.Tipo))),
	}

	switch {
	case category.Nome == "":
		verr.Add("nome", msgRequired)
	case len([]rune(category.Nome)) > 100:
		verr.Add("nome", msgTooLong)
	}

	if category.Tipo == "" {
		category.Tipo = CategoryTipoEvento
	} else if !category.Tipo.Valid() {
		verr.Add("tipo", msgInvalidValue)
	}

	if verr.HasErrors() {
		return category, verr
	}
	return category, nil
}
