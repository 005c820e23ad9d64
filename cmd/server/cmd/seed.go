package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cosplay-angola/server/internal/config"
	"github.com/cosplay-angola/server/internal/domain/events"
	"github.com/cosplay-angola/server/internal/storage/postgres"
)

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load sample data for local development",
		Long: `Insert sample categories, partners and events into the database.

The seed is idempotent: events whose slug already exists are skipped, so the
command can be re-run safely.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runSeed(cmd, cfg)
		},
	}
}

func runSeed(cmd *cobra.Command, cfg config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return err
	}

	concursos, err := seedCategoryIfMissing(ctx, repo, "Concursos", "concursos", "Competições oficiais de cosplay.")
	if err != nil {
		return err
	}
	workshops, err := seedCategoryIfMissing(ctx, repo, "Workshops", "workshops", "Oficinas de confecção e maquiagem.")
	if err != nil {
		return err
	}

	partner, err := repo.Partners().Create(ctx, events.Partner{
		Nome:  "Loja Otaku Luanda",
		Tipo:  events.PartnerPatrocinador,
		Site:  "https://lojaotaku.ao",
		Ativo: true,
	})
	if err != nil {
		return fmt.Errorf("seed partner: %w", err)
	}

	now := time.Now()
	samples := []events.CreateParams{
		{
			Titulo:      "Festival de Cosplay de Luanda",
			Slug:        "festival-de-cosplay-de-luanda",
			Descricao:   "O maior encontro de cosplayers de Angola, com concurso de palco e área de fotos.",
			DataInicio:  now.AddDate(0, 1, 0),
			Local:       "Centro Cultural de Luanda",
			CategoriaID: concursos.ID,
			TipoEvento:  events.TipoConcurso,
			Abrangencia: events.AbrangenciaNacional,
			Status:      events.StatusPublicado,
			ParceiroIDs: []uuid.UUID{partner.ID},
		},
		{
			Titulo:      "Oficina de Armaduras em EVA",
			Slug:        "oficina-de-armaduras-em-eva",
			Descricao:   "Aprenda técnicas de corte, colagem e pintura de armaduras em EVA.",
			DataInicio:  now.AddDate(0, 0, 14),
			Local:       "Espaço Criativo, Benguela",
			CategoriaID: workshops.ID,
			TipoEvento:  events.TipoWorkshop,
			Abrangencia: events.AbrangenciaNacional,
			Status:      events.StatusPublicado,
		},
		{
			Titulo:      "Cobertura AngoGeek 2026",
			Slug:        "cobertura-angogeek-2026",
			Descricao:   "Cobertura fotográfica oficial da convenção AngoGeek.",
			DataInicio:  now.AddDate(0, 2, 0),
			Local:       "Talatona Convention Center",
			CategoriaID: concursos.ID,
			TipoEvento:  events.TipoCobertura,
			Abrangencia: events.AbrangenciaInternacional,
			Status:      events.StatusRascunho,
		},
	}

	var created int
	for _, params := range samples {
		exists, err := repo.Events().SlugExists(ctx, params.Slug)
		if err != nil {
			return fmt.Errorf("check slug %q: %w", params.Slug, err)
		}
		if exists {
			continue
		}
		if _, err := repo.Events().Create(ctx, params); err != nil {
			return fmt.Errorf("seed event %q: %w", params.Slug, err)
		}
		created++
	}

	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d events\n", created)
	return nil
}

func seedCategoryIfMissing(ctx context.Context, repo *postgres.Repository, nome, slug, descricao string) (*events.Category, error) {
	listed, err := repo.Categories().List(ctx, events.CategoryTipoEvento)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	for i := range listed {
		if listed[i].Slug == slug {
			return &listed[i], nil
		}
	}

	category, err := repo.Categories().Create(ctx, events.Category{
		Nome:      nome,
		Slug:      slug,
		Descricao: descricao,
		Tipo:      events.CategoryTipoEvento,
	})
	if err != nil {
		return nil, fmt.Errorf("seed category %q: %w", slug, err)
	}
	return category, nil
}
