package postgres

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/cosplay-angola/server/internal/domain/accounts"
	"github.com/cosplay-angola/server/internal/domain/events"
)

var (
	sharedOnce      sync.Once
	sharedInitErr   error
	sharedContainer *pgcontainer.PostgresContainer
	sharedPool      *pgxpool.Pool
	sharedDBURL     string
)

const sharedContainerName = "cosplay-storage-db"

func TestMain(m *testing.M) {
	code := m.Run()
	if sharedPool != nil {
		sharedPool.Close()
	}
	os.Exit(code)
}

func setupPostgres(t *testing.T) *Repository {
	t.Helper()

	initShared(t)
	resetDatabase(t, sharedPool)

	repo, err := NewRepository(sharedPool)
	require.NoError(t, err)
	return repo
}

func initShared(t *testing.T) {
	t.Helper()
	sharedOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		// Disable ryuk so the reused container survives between packages.
		_ = os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

		container, err := pgcontainer.Run(
			ctx,
			"postgres:16-alpine",
			pgcontainer.WithDatabase("cosplay"),
			pgcontainer.WithUsername("cosplay"),
			pgcontainer.WithPassword("cosplay_dev"),
			testcontainers.WithReuseByName(sharedContainerName),
		)
		if err != nil {
			sharedInitErr = err
			return
		}
		sharedContainer = container

		dbURL, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			sharedInitErr = err
			return
		}
		sharedDBURL = dbURL

		migrationsPath := filepath.Join(projectRoot(), DefaultMigrationsPath)
		if err := migrateWithRetry(dbURL, migrationsPath, 10*time.Second); err != nil {
			sharedInitErr = err
			return
		}

		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			sharedInitErr = err
			return
		}
		sharedPool = pool
	})

	require.NoError(t, sharedInitErr)
}

func resetDatabase(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	require.NotNil(t, pool, "shared pool is nil")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rows, err := pool.Query(ctx, `
SELECT tablename
  FROM pg_tables
 WHERE schemaname = 'public'
   AND tablename <> 'schema_migrations'
 ORDER BY tablename;
`)
	require.NoError(t, err)
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		if name == "" {
			continue
		}
		safe := strings.ReplaceAll(name, "\"", "\"\"")
		tables = append(tables, "\"public\".\""+safe+"\"")
	}
	require.NoError(t, rows.Err())

	if len(tables) == 0 {
		return
	}

	truncateSQL := "TRUNCATE TABLE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;"
	_, err = pool.Exec(ctx, truncateSQL)
	require.NoError(t, err)
}

func seedCategory(t *testing.T, ctx context.Context, repo *Repository, nome, slug string) *events.Category {
	t.Helper()
	category, err := repo.Categories().Create(ctx, events.Category{
		Nome: nome,
		Slug: slug,
		Tipo: events.CategoryTipoEvento,
	})
	require.NoError(t, err)
	return category
}

func seedPartner(t *testing.T, ctx context.Context, repo *Repository, nome string, ativo bool) *events.Partner {
	t.Helper()
	partner, err := repo.Partners().Create(ctx, events.Partner{
		Nome:  nome,
		Tipo:  events.PartnerPatrocinador,
		Ativo: ativo,
	})
	require.NoError(t, err)
	return partner
}

func seedEvent(t *testing.T, ctx context.Context, repo *Repository, params events.CreateParams) *events.Event {
	t.Helper()
	event, err := repo.Events().Create(ctx, params)
	require.NoError(t, err)
	return event
}

func eventParams(category *events.Category, titulo, slug string, start time.Time, status events.Status) events.CreateParams {
	return events.CreateParams{
		Titulo:      titulo,
		Slug:        slug,
		DataInicio:  start,
		Local:       "Luanda",
		CategoriaID: category.ID,
		TipoEvento:  events.TipoConcurso,
		Abrangencia: events.AbrangenciaNacional,
		Status:      status,
	}
}

func seedAccountRow(t *testing.T, ctx context.Context, repo *Repository, username string) uuid.UUID {
	t.Helper()
	account, err := repo.Accounts().Create(ctx, accounts.CreateParams{
		Username:     username,
		Email:        username + "@example.ao",
		PasswordHash: "$2a$04$notarealhashbutlongenoughforstorage0000000000000000000",
	})
	require.NoError(t, err)
	return account.ID
}

func projectRoot() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "."
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", "..", ".."))
}

func migrateWithRetry(databaseURL string, migrationsPath string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		err := MigrateUp(databaseURL, migrationsPath)
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(500 * time.Millisecond)
	}
}
