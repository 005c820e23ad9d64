package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cosplay-angola/server/internal/api/pagination"
	"github.com/cosplay-angola/server/internal/domain/media"
)

var _ media.Repository = (*MediaRepository)(nil)

const mediaColumns = `id, titulo, descricao, creditos_fotografo, tipo, arquivo_url, public_id,
       formato, largura, altura, tamanho_bytes, uploaded_by, created_at`

func (r *MediaRepository) List(ctx context.Context, page pagination.Page) (media.ListResult, error) {
	q := r.queryer()

	var count int
	if err := q.QueryRow(ctx, `SELECT count(*) FROM midia`).Scan(&count); err != nil {
		return media.ListResult{}, fmt.Errorf("count media: %w", err)
	}

	rows, err := q.Query(ctx, `
SELECT `+mediaColumns+`
  FROM midia
 ORDER BY created_at DESC, id
 LIMIT $1 OFFSET $2`, page.Size, page.Offset())
	if err != nil {
		return media.ListResult{}, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	var listed []media.Media
	for rows.Next() {
		item, err := scanMedia(rows)
		if err != nil {
			return media.ListResult{}, fmt.Errorf("scan media: %w", err)
		}
		listed = append(listed, *item)
	}
	if err := rows.Err(); err != nil {
		return media.ListResult{}, fmt.Errorf("iterate media: %w", err)
	}
	return media.ListResult{Media: listed, Count: count}, nil
}

func (r *MediaRepository) GetByID(ctx context.Context, id uuid.UUID) (*media.Media, error) {
	row := r.queryer().QueryRow(ctx,
		`SELECT `+mediaColumns+` FROM midia WHERE id = $1`, id)
	item, err := scanMedia(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, media.ErrNotFound
		}
		return nil, fmt.Errorf("get media: %w", err)
	}
	return item, nil
}

func (r *MediaRepository) Create(ctx context.Context, params media.CreateParams) (*media.Media, error) {
	row := r.queryer().QueryRow(ctx, `
INSERT INTO midia (titulo, descricao, creditos_fotografo, arquivo_url, public_id,
                   formato, largura, altura, tamanho_bytes, uploaded_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING `+mediaColumns,
		params.Titulo,
		params.Descricao,
		params.CreditosFotografo,
		params.ArquivoURL,
		params.PublicID,
		params.Formato,
		params.Largura,
		params.Altura,
		params.TamanhoBytes,
		params.UploadedBy,
	)

	item, err := scanMedia(row)
	if err != nil {
		return nil, fmt.Errorf("create media: %w", err)
	}
	return item, nil
}

func (r *MediaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM midia WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return media.ErrNotFound
	}
	return nil
}

func (r *MediaRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func scanMedia(row pgx.Row) (*media.Media, error) {
	var item media.Media
	err := row.Scan(
		&item.ID,
		&item.Titulo,
		&item.Descricao,
		&item.CreditosFotografo,
		&item.Tipo,
		&item.ArquivoURL,
		&item.PublicID,
		&item.Formato,
		&item.Largura,
		&item.Altura,
		&item.TamanhoBytes,
		&item.UploadedBy,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
