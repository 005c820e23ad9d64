package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cosplay-angola/server/internal/domain/events"
)

func TestPartnerRepositoryListFilters(t *testing.T) {
	ctx := context.Background()
	repo := setupPostgres(t)

	seedPartner(t, ctx, repo, "Loja Otaku", true)
	seedPartner(t, ctx, repo, "Antigo Patrocinador", false)

	_, err := repo.Partners().Create(ctx, events.Partner{
		Nome:  "Rádio Geek",
		Tipo:  events.PartnerMidia,
		Ativo: true,
	})
	require.NoError(t, err)

	all, err := repo.Partners().List(ctx, "", nil)
	require.NoError(t, err)
	require.Len(t, all, 3)

	ativo := true
	active, err := repo.Partners().List(ctx, "", &ativo)
	require.NoError(t, err)
	require.Len(t, active, 2)

	midia, err := repo.Partners().List(ctx, events.PartnerMidia, nil)
	require.NoError(t, err)
	require.Len(t, midia, 1)
	require.Equal(t, "Rádio Geek", midia[0].Nome)
}

func TestPartnerRepositoryGetByIDs(t *testing.T) {
	ctx := context.Background()
	repo := setupPostgres(t)

	first := seedPartner(t, ctx, repo, "Primeiro", true)
	second := seedPartner(t, ctx, repo, "Segundo", true)
	seedPartner(t, ctx, repo, "Terceiro", true)

	found, err := repo.Partners().GetByIDs(ctx, []uuid.UUID{first.ID, second.ID})
	require.NoError(t, err)
	require.Len(t, found, 2)

	none, err := repo.Partners().GetByIDs(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestPartnerRepositoryUpdate(t *testing.T) {
	ctx := context.Background()
	repo := setupPostgres(t)

	partner := seedPartner(t, ctx, repo, "Loja Otaku", true)

	partner.Site = "https://lojaotaku.ao"
	partner.Ativo = false
	updated, err := repo.Partners().Update(ctx, *partner)
	require.NoError(t, err)
	require.Equal(t, "https://lojaotaku.ao", updated.Site)
	require.False(t, updated.Ativo)

	missing := *partner
	missing.ID = uuid.New()
	_, err = repo.Partners().Update(ctx, missing)
	require.ErrorIs(t, err, events.ErrPartnerNotFound)
}
