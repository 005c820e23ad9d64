package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cosplay-angola/server/internal/domain/newsletter"
)

var _ newsletter.Repository = (*NewsletterRepository)(nil)

const subscriberColumns = `id, email, nome, ativo, data_inscricao, data_confirmacao`

func (r *NewsletterRepository) Create(ctx context.Context, email, nome string) (*newsletter.Subscriber, error) {
	row := r.queryer().QueryRow(ctx, `
INSERT INTO newsletter_inscritos (email, nome)
VALUES ($1, $2)
RETURNING `+subscriberColumns, email, nome)

	subscriber, err := scanSubscriber(row)
	if err != nil {
		if violatesUnique(err, "newsletter_inscritos_email_key") {
			return nil, newsletter.ErrEmailTaken
		}
		return nil, fmt.Errorf("create subscriber: %w", err)
	}
	return subscriber, nil
}

func (r *NewsletterRepository) GetByEmail(ctx context.Context, email string) (*newsletter.Subscriber, error) {
	row := r.queryer().QueryRow(ctx,
		`SELECT `+subscriberColumns+` FROM newsletter_inscritos WHERE email = $1`, email)
	subscriber, err := scanSubscriber(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, newsletter.ErrNotFound
		}
		return nil, fmt.Errorf("get subscriber: %w", err)
	}
	return subscriber, nil
}

func (r *NewsletterRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func scanSubscriber(row pgx.Row) (*newsletter.Subscriber, error) {
	var subscriber newsletter.Subscriber
	err := row.Scan(
		&subscriber.ID,
		&subscriber.Email,
		&subscriber.Nome,
		&subscriber.Ativo,
		&subscriber.DataInscricao,
		&subscriber.DataConfirmacao,
	)
	if err != nil {
		return nil, err
	}
	return &subscriber, nil
}
