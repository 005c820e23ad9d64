package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/cosplay-angola/server/internal/api"
	"github.com/cosplay-angola/server/internal/auth"
	"github.com/cosplay-angola/server/internal/config"
	"github.com/cosplay-angola/server/internal/domain/accounts"
	"github.com/cosplay-angola/server/internal/domain/events"
	"github.com/cosplay-angola/server/internal/domain/media"
	"github.com/cosplay-angola/server/internal/domain/newsletter"
	"github.com/cosplay-angola/server/internal/images/cloudinary"
	"github.com/cosplay-angola/server/internal/metrics"
	"github.com/cosplay-angola/server/internal/storage/postgres"
)

var (
	serverHost string
	serverPort int
)

func newServeCommand() *cobra.Command {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server and begin accepting API requests.

The server loads its configuration from environment variables, connects to
PostgreSQL, bootstraps the admin account when ADMIN_* variables are set and
shuts down gracefully on SIGINT/SIGTERM.

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Start with debug logging
  server serve --log-level debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	serve.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serve.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")
	return serve
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("environment", cfg.Environment).Msg("starting cosplay angola server")

	metrics.Init(Version, GitCommit, BuildDate)

	poolCtx, poolCancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := postgres.NewPool(poolCtx, cfg.Database)
	poolCancel()
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return err
	}

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := bootstrapAdminUser(bootCtx, cfg, repo, logger); err != nil {
		logger.Error().Err(err).Msg("admin bootstrap failed")
	}
	bootCancel()

	dbCollector := metrics.NewDBCollector(pool)
	collectorCtx, collectorCancel := context.WithCancel(context.Background())
	go dbCollector.Start(collectorCtx, 15*time.Second)
	defer collectorCancel()

	images := cloudinary.NewClient(
		cfg.Cloudinary.CloudName,
		cfg.Cloudinary.APIKey,
		cfg.Cloudinary.APISecret,
	)

	tokens := auth.NewTokenService(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessExpiry,
		cfg.Auth.RefreshExpiry,
		cfg.Auth.Issuer,
		repo.Blacklist(),
	)

	svcs := api.Services{
		Accounts: accounts.NewService(repo.Accounts(), tokens, logger),
		Events: events.NewService(
			repo.Events(),
			repo.Categories(),
			repo.Partners(),
			cloudinary.NewEventImages(images, cfg.Cloudinary.Folder),
			logger,
		),
		Categories: events.NewCategoryService(repo.Categories()),
		Partners:   events.NewPartnerService(repo.Partners()),
		Media: media.NewService(
			repo.Media(),
			cloudinary.NewMediaStore(images, cfg.Cloudinary.Folder),
			cfg.Cloudinary.MaxBytes,
			logger,
		),
		Newsletter: newsletter.NewService(repo.Newsletter()),

		Pool:      pool,
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(cfg, logger, svcs),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	return gracefulShutdown(server, logger)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return cfg, nil
}

// hashBootstrapPassword uses the same cost as the registration flow so
// the bootstrapped admin's hash is indistinguishable from any other.
func hashBootstrapPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), accounts.BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func bootstrapAdminUser(ctx context.Context, cfg config.Config, repo *postgres.Repository, logger zerolog.Logger) error {
	bootstrap := cfg.AdminBootstrap
	if bootstrap.Username == "" || bootstrap.Password == "" || bootstrap.Email == "" {
		logger.Warn().Msg("admin bootstrap env vars not fully set; skipping")
		return nil
	}

	if _, err := repo.Accounts().GetByUsername(ctx, bootstrap.Username); err == nil {
		return nil
	} else if !errors.Is(err, accounts.ErrNotFound) {
		return fmt.Errorf("check admin account: %w", err)
	}

	hash, err := hashBootstrapPassword(bootstrap.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	_, err = repo.Accounts().Create(ctx, accounts.CreateParams{
		Username:     bootstrap.Username,
		Email:        bootstrap.Email,
		PasswordHash: hash,
		IsStaff:      true,
		IsSuperuser:  true,
	})
	if err != nil {
		if errors.Is(err, accounts.ErrEmailTaken) || errors.Is(err, accounts.ErrUsernameTaken) {
			return nil
		}
		return fmt.Errorf("create admin account: %w", err)
	}

	// Redact the email in production to avoid PII in logs.
	if cfg.Environment == "production" {
		logger.Info().Str("username", bootstrap.Username).Msg("bootstrapped admin account")
	} else {
		logger.Info().Str("username", bootstrap.Username).Str("email", bootstrap.Email).Msg("bootstrapped admin account")
	}
	return nil
}

func gracefulShutdown(server *http.Server, logger zerolog.Logger) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}
