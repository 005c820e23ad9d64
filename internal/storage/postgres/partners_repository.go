package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cosplay-angola/server/internal/domain/events"
)

var _ events.PartnerRepository = (*PartnerRepository)(nil)

const partnerColumns = `id, nome, tipo, logo_url, site, descricao, ativo, created_at`

func (r *PartnerRepository) List(ctx context.Context, tipo events.PartnerTipo, ativo *bool) ([]events.Partner, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+partnerColumns+`
  FROM parceiros
 WHERE ($1 = '' OR tipo = $1)
   AND ($2::boolean IS NULL OR ativo = $2)
 ORDER BY nome`, string(tipo), ativo)
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	defer rows.Close()

	return collectPartners(rows)
}

func (r *PartnerRepository) GetByID(ctx context.Context, id uuid.UUID) (*events.Partner, error) {
	row := r.queryer().QueryRow(ctx,
		`SELECT `+partnerColumns+` FROM parceiros WHERE id = $1`, id)
	partner, err := scanPartner(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrPartnerNotFound
		}
		return nil, fmt.Errorf("get partner: %w", err)
	}
	return partner, nil
}

func (r *PartnerRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]events.Partner, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.queryer().Query(ctx,
		`SELECT `+partnerColumns+` FROM parceiros WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get partners: %w", err)
	}
	defer rows.Close()

	return collectPartners(rows)
}

func (r *PartnerRepository) Create(ctx context.Context, partner events.Partner) (*events.Partner, error) {
	row := r.queryer().QueryRow(ctx, `
INSERT INTO parceiros (nome, tipo, logo_url, site, descricao, ativo)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING `+partnerColumns,
		partner.Nome, partner.Tipo, partner.LogoURL, partner.Site, partner.Descricao, partner.Ativo)

	created, err := scanPartner(row)
	if err != nil {
		return nil, fmt.Errorf("create partner: %w", err)
	}
	return created, nil
}

func (r *PartnerRepository) Update(ctx context.Context, partner events.Partner) (*events.Partner, error) {
	row := r.queryer().QueryRow(ctx, `
UPDATE parceiros
   SET nome = $2, tipo = $3, logo_url = $4, site = $5, descricao = $6, ativo = $7
 WHERE id = $1
RETURNING `+partnerColumns,
		partner.ID, partner.Nome, partner.Tipo, partner.LogoURL, partner.Site, partner.Descricao, partner.Ativo)

	updated, err := scanPartner(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrPartnerNotFound
		}
		return nil, fmt.Errorf("update partner: %w", err)
	}
	return updated, nil
}

func (r *PartnerRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func collectPartners(rows pgx.Rows) ([]events.Partner, error) {
	var listed []events.Partner
	for rows.Next() {
		partner, err := scanPartner(rows)
		if err != nil {
			return nil, fmt.Errorf("scan partner: %w", err)
		}
		listed = append(listed, *partner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate partners: %w", err)
	}
	return listed, nil
}

func scanPartner(row pgx.Row) (*events.Partner, error) {
	var partner events.Partner
	err := row.Scan(
		&partner.ID,
		&partner.Nome,
		&partner.Tipo,
		&partner.LogoURL,
		&partner.Site,
		&partner.Descricao,
		&partner.Ativo,
		&partner.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &partner, nil
}
