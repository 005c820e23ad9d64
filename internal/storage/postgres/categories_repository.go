package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cosplay-angola/server/internal/domain/events"
)

var _ events.CategoryRepository = (*CategoryRepository)(nil)

const categoryColumns = `id, nome, slug, descricao, tipo, created_at`

func (r *CategoryRepository) List(ctx context.Context, tipo events.CategoryTipo) ([]events.Category, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+categoryColumns+`
  FROM categorias
 WHERE ($1 = '' OR tipo = $1)
 ORDER BY nome`, string(tipo))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var listed []events.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		listed = append(listed, *category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return listed, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*events.Category, error) {
	row := r.queryer().QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categorias WHERE id = $1`, id)
	category, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category events.Category) (*events.Category, error) {
	row := r.queryer().QueryRow(ctx, `
INSERT INTO categorias (nome, slug, descricao, tipo)
VALUES ($1, $2, $3, $4)
RETURNING `+categoryColumns,
		category.Nome, category.Slug, category.Descricao, category.Tipo)

	created, err := scanCategory(row)
	if err != nil {
		if violatesUnique(err, "categorias_slug_key") {
			return nil, events.ErrSlugTaken
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

func (r *CategoryRepository) Update(ctx context.Context, category events.Category) (*events.Category, error) {
	row := r.queryer().QueryRow(ctx, `
UPDATE categorias
   SET nome = $2, descricao = $3, tipo = $4
 WHERE id = $1
RETURNING `+categoryColumns,
		category.ID, category.Nome, category.Descricao, category.Tipo)

	updated, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return updated, nil
}

// Delete relies on the RESTRICT foreign key from eventos: a category still
// referenced by events cannot be removed.
func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM categorias WHERE id = $1`, id)
	if err != nil {
		if violatesForeignKey(err) {
			return events.ErrCategoryInUse
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrCategoryNotFound
	}
	return nil
}

func (r *CategoryRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func scanCategory(row pgx.Row) (*events.Category, error) {
	var category events.Category
	err := row.Scan(
		&category.ID,
		&category.Nome,
		&category.Slug,
		&category.Descricao,
		&category.Tipo,
		&category.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &category, nil
}
