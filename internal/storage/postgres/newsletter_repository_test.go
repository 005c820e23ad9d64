package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cosplay-angola/server/internal/domain/newsletter"
)

func TestNewsletterRepositoryCreate(t *testing.T) {
	ctx := context.Background()
	repo := setupPostgres(t)

	sub, err := repo.Newsletter().Create(ctx, "fa@example.ao", "Fã de Cosplay")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, sub.ID)
	require.Equal(t, "fa@example.ao", sub.Email)
	require.Equal(t, "Fã de Cosplay", sub.Nome)
	require.True(t, sub.Ativo)
	require.False(t, sub.DataInscricao.IsZero())
	require.Nil(t, sub.DataConfirmacao)
}

func TestNewsletterRepositoryDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := setupPostgres(t)

	_, err := repo.Newsletter().Create(ctx, "fa@example.ao", "")
	require.NoError(t, err)

	_, err = repo.Newsletter().Create(ctx, "fa@example.ao", "Outro Nome")
	require.ErrorIs(t, err, newsletter.ErrEmailTaken)
}

func TestNewsletterRepositoryGetByEmail(t *testing.T) {
	ctx := context.Background()
	repo := setupPostgres(t)

	created, err := repo.Newsletter().Create(ctx, "fa@example.ao", "Fã")
	require.NoError(t, err)

	found, err := repo.Newsletter().GetByEmail(ctx, "fa@example.ao")
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)

	_, err = repo.Newsletter().GetByEmail(ctx, "ninguem@example.ao")
	require.ErrorIs(t, err, newsletter.ErrNotFound)
}
