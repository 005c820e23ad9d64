package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cosplay-angola/server/internal/api/pagination"
	"github.com/cosplay-angola/server/internal/domain/events"
)

var _ events.Repository = (*EventRepository)(nil)

const eventColumns = `e.id, e.titulo, e.slug, e.descricao, e.data_inicio, e.data_fim, e.local,
       e.tipo_evento, e.abrangencia, e.status, e.imagem_destaque, e.created_at, e.updated_at,
       c.id, c.nome, c.slug, c.descricao, c.tipo, c.created_at`

const eventFilterClause = `
   AND ($1::uuid IS NULL OR e.categoria_id = $1)
   AND ($2 = '' OR c.slug = $2)
   AND ($3 = '' OR e.tipo_evento = $3)
   AND ($4 = '' OR e.status = $4)
   AND ($5 = '' OR e.abrangencia = $5)
   AND ($6::date IS NULL OR e.data_inicio >= $6::date)
   AND ($7::date IS NULL OR e.data_inicio <= $7::date)
   AND ($8 = '' OR e.titulo ILIKE '%' || $8 || '%'
               OR e.descricao ILIKE '%' || $8 || '%'
               OR e.local ILIKE '%' || $8 || '%')`

func (r *EventRepository) List(ctx context.Context, filters events.Filters, page pagination.Page) (events.ListResult, error) {
	q := r.queryer()
	args := filterArgs(filters)

	var count int
	err := q.QueryRow(ctx, `
SELECT count(*)
  FROM eventos e
  JOIN categorias c ON c.id = e.categoria_id
 WHERE true`+eventFilterClause, args...).Scan(&count)
	if err != nil {
		return events.ListResult{}, fmt.Errorf("count events: %w", err)
	}

	query := `
SELECT ` + eventColumns + `
  FROM eventos e
  JOIN categorias c ON c.id = e.categoria_id
 WHERE true` + eventFilterClause + `
 ORDER BY ` + orderClause(filters.Ordering) + `
 LIMIT $9 OFFSET $10`

	rows, err := q.Query(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		return events.ListResult{}, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	listed, err := collectEvents(rows)
	if err != nil {
		return events.ListResult{}, err
	}
	if err := r.attachPartners(ctx, listed); err != nil {
		return events.ListResult{}, err
	}
	return events.ListResult{Events: listed, Count: count}, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*events.Event, error) {
	return r.getOne(ctx, `e.id = $1`, id)
}

func (r *EventRepository) GetBySlug(ctx context.Context, slug string) (*events.Event, error) {
	return r.getOne(ctx, `e.slug = $1`, slug)
}

func (r *EventRepository) getOne(ctx context.Context, where string, arg any) (*events.Event, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT `+eventColumns+`
  FROM eventos e
  JOIN categorias c ON c.id = e.categoria_id
 WHERE `+where, arg)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	listed := []events.Event{*event}
	if err := r.attachPartners(ctx, listed); err != nil {
		return nil, err
	}
	return &listed[0], nil
}

func (r *EventRepository) Create(ctx context.Context, params events.CreateParams) (*events.Event, error) {
	var created *events.Event
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var id uuid.UUID
		err := tx.QueryRow(ctx, `
INSERT INTO eventos (titulo, slug, descricao, data_inicio, data_fim, local, categoria_id,
                     tipo_evento, abrangencia, status, imagem_destaque)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id`,
			params.Titulo,
			params.Slug,
			params.Descricao,
			params.DataInicio,
			params.DataFim,
			params.Local,
			params.CategoriaID,
			params.TipoEvento,
			params.Abrangencia,
			params.Status,
			params.ImagemDestaque,
		).Scan(&id)
		if err != nil {
			switch {
			case violatesUnique(err, "eventos_slug_key"):
				return events.ErrSlugTaken
			case violatesForeignKey(err):
				return events.ErrCategoryNotFound
			}
			return fmt.Errorf("insert event: %w", err)
		}

		if err := replacePartners(ctx, tx, id, params.ParceiroIDs); err != nil {
			return err
		}

		repo := &EventRepository{pool: r.pool, tx: tx}
		created, err = repo.GetByID(ctx, id)
		return err
	})
	return created, err
}

func (r *EventRepository) Update(ctx context.Context, id uuid.UUID, params events.UpdateParams) (*events.Event, error) {
	var updated *events.Event
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
UPDATE eventos
   SET titulo = $2, slug = $3, descricao = $4, data_inicio = $5, data_fim = $6,
       local = $7, categoria_id = $8, tipo_evento = $9, abrangencia = $10,
       status = $11, imagem_destaque = $12, updated_at = now()
 WHERE id = $1`,
			id,
			params.Titulo,
			params.Slug,
			params.Descricao,
			params.DataInicio,
			params.DataFim,
			params.Local,
			params.CategoriaID,
			params.TipoEvento,
			params.Abrangencia,
			params.Status,
			params.ImagemDestaque,
		)
		if err != nil {
			if violatesUnique(err, "eventos_slug_key") {
				return events.ErrSlugTaken
			}
			return fmt.Errorf("update event: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return events.ErrNotFound
		}

		if err := replacePartners(ctx, tx, id, params.ParceiroIDs); err != nil {
			return err
		}

		repo := &EventRepository{pool: r.pool, tx: tx}
		updated, err = repo.GetByID(ctx, id)
		return err
	})
	return updated, err
}

func (r *EventRepository) UpdateImagemDestaque(ctx context.Context, id uuid.UUID, url string) error {
	tag, err := r.queryer().Exec(ctx,
		`UPDATE eventos SET imagem_destaque = $2, updated_at = now() WHERE id = $1`, id, url)
	if err != nil {
		return fmt.Errorf("update imagem destaque: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM eventos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.queryer().QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM eventos WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

func (r *EventRepository) Related(ctx context.Context, categoriaID, exclude uuid.UUID, limit int) ([]events.Event, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+eventColumns+`
  FROM eventos e
  JOIN categorias c ON c.id = e.categoria_id
 WHERE e.categoria_id = $1
   AND e.id <> $2
   AND e.status = 'publicado'
 ORDER BY e.data_inicio DESC
 LIMIT $3`, categoriaID, exclude, limit)
	if err != nil {
		return nil, fmt.Errorf("related events: %w", err)
	}
	defer rows.Close()

	listed, err := collectEvents(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachPartners(ctx, listed); err != nil {
		return nil, err
	}
	return listed, nil
}

// attachPartners loads the partner lists for every event in one query.
func (r *EventRepository) attachPartners(ctx context.Context, listed []events.Event) error {
	if len(listed) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(listed))
	index := make(map[uuid.UUID]int, len(listed))
	for i := range listed {
		ids = append(ids, listed[i].ID)
		index[listed[i].ID] = i
	}

	rows, err := r.queryer().Query(ctx, `
SELECT ep.evento_id, p.id, p.nome, p.tipo, p.logo_url, p.site, p.descricao, p.ativo, p.created_at
  FROM evento_parceiros ep
  JOIN parceiros p ON p.id = ep.parceiro_id
 WHERE ep.evento_id = ANY($1)
 ORDER BY p.nome`, ids)
	if err != nil {
		return fmt.Errorf("load partners: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventID uuid.UUID
		var partner events.Partner
		if err := rows.Scan(
			&eventID,
			&partner.ID,
			&partner.Nome,
			&partner.Tipo,
			&partner.LogoURL,
			&partner.Site,
			&partner.Descricao,
			&partner.Ativo,
			&partner.CreatedAt,
		); err != nil {
			return fmt.Errorf("scan partner: %w", err)
		}
		i := index[eventID]
		listed[i].Parceiros = append(listed[i].Parceiros, partner)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate partners: %w", err)
	}
	return nil
}

func replacePartners(ctx context.Context, tx pgx.Tx, eventID uuid.UUID, partnerIDs []uuid.UUID) error {
	if _, err := tx.Exec(ctx,
		`DELETE FROM evento_parceiros WHERE evento_id = $1`, eventID); err != nil {
		return fmt.Errorf("clear partners: %w", err)
	}
	for _, partnerID := range partnerIDs {
		if _, err := tx.Exec(ctx, `
INSERT INTO evento_parceiros (evento_id, parceiro_id) VALUES ($1, $2)
ON CONFLICT DO NOTHING`, eventID, partnerID); err != nil {
			if violatesForeignKey(err) {
				return events.ErrPartnerNotFound
			}
			return fmt.Errorf("link partner: %w", err)
		}
	}
	return nil
}

func (r *EventRepository) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *EventRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func filterArgs(filters events.Filters) []any {
	var categoriaID *uuid.UUID
	if filters.CategoriaID != uuid.Nil {
		categoriaID = &filters.CategoriaID
	}
	return []any{
		categoriaID,
		filters.CategoriaSlug,
		string(filters.TipoEvento),
		string(filters.Status),
		string(filters.Abrangencia),
		filters.DataInicioAfter,
		filters.DataInicioBefore,
		filters.Search,
	}
}

// orderClause maps the whitelisted ordering onto SQL. The field names were
// validated at parse time; the switch keeps raw input out of the query.
func orderClause(ordering events.Ordering) string {
	if ordering.Field == "" {
		ordering = events.DefaultOrdering
	}
	column := "e.data_inicio"
	switch ordering.Field {
	case "created_at":
		column = "e.created_at"
	case "titulo":
		column = "e.titulo"
	}
	direction := "ASC"
	if ordering.Desc {
		direction = "DESC"
	}
	return column + " " + direction + ", e.id ASC"
}

func collectEvents(rows pgx.Rows) ([]events.Event, error) {
	var listed []events.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		listed = append(listed, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return listed, nil
}

func scanEvent(row pgx.Row) (*events.Event, error) {
	var event events.Event
	err := row.Scan(
		&event.ID,
		&event.Titulo,
		&event.Slug,
		&event.Descricao,
		&event.DataInicio,
		&event.DataFim,
		&event.Local,
		&event.TipoEvento,
		&event.Abrangencia,
		&event.Status,
		&event.ImagemDestaque,
		&event.CreatedAt,
		&event.UpdatedAt,
		&event.Categoria.ID,
		&event.Categoria.Nome,
		&event.Categoria.Slug,
		&event.Categoria.Descricao,
		&event.Categoria.Tipo,
		&event.Categoria.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}
