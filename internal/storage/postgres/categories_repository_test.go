package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cosplay-angola/server/internal/domain/events"
)

func TestCategoryRepositoryListFiltersByTipo(t *testing.T) {
	ctx := context.Background()
	repo := setupPostgres(t)

	seedCategory(t, ctx, repo, "Concursos", "concursos")

	_, err := repo.Categories().Create(ctx, events.Category{
		Nome: "Cosplays de Verão",
		Slug: "cosplays-de-verao",
		Tipo: events.CategoryTipoColecao,
	})
	require.NoError(t, err)

	all, err := repo.Categories().List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Alphabetical by nome.
	require.Equal(t, "Concursos", all[0].Nome)

	eventos, err := repo.Categories().List(ctx, events.CategoryTipoEvento)
	require.NoError(t, err)
	require.Len(t, eventos, 1)
	require.Equal(t, "concursos", eventos[0].Slug)
}

func TestCategoryRepositoryCreateSlugConflict(t *testing.T) {
	ctx := context.Background()
	repo := setupPostgres(t)

	seedCategory(t, ctx, repo, "Concursos", "concursos")

	_, err := repo.Categories().Create(ctx, events.Category{
		Nome: "Outros Concursos",
		Slug: "concursos",
		Tipo: events.CategoryTipoEvento,
	})
	require.ErrorIs(t, err, events.ErrSlugTaken)
}

func TestCategoryRepositoryUpdateKeepsSlug(t *testing.T) {
	ctx := context.Background()
	repo := setupPostgres(t)

	category := seedCategory(t, ctx, repo, "Concursos", "concursos")

	category.Nome = "Concursos de Cosplay"
	category.Descricao = "Competições oficiais."
	updated, err := repo.Categories().Update(ctx, *category)
	require.NoError(t, err)
	require.Equal(t, "Concursos de Cosplay", updated.Nome)
	require.Equal(t, "concursos", updated.Slug, "slug never changes on update")

	missing := *category
	missing.ID = uuid.New()
	_, err = repo.Categories().Update(ctx, missing)
	require.ErrorIs(t, err, events.ErrCategoryNotFound)
}

func TestCategoryRepositoryDeleteBlockedWhileReferenced(t *testing.T) {
	ctx := context.Background()
	repo := setupPostgres(t)

	category := seedCategory(t, ctx, repo, "Concursos", "concursos")
	event := seedEvent(t, ctx, repo, eventParams(category, "Evento", "evento", time.Now().Add(24*time.Hour), events.StatusPublicado))

	err := repo.Categories().Delete(ctx, category.ID)
	require.ErrorIs(t, err, events.ErrCategoryInUse)

	require.NoError(t, repo.Events().Delete(ctx, event.ID))
	require.NoError(t, repo.Categories().Delete(ctx, category.ID))

	err = repo.Categories().Delete(ctx, category.ID)
	require.ErrorIs(t, err, events.ErrCategoryNotFound)
}
