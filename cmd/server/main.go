// Package main provides the entry point for the paper library REST API server.
package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/helixir/paper-library-service/internal/analysis"
	"github.com/helixir/paper-library-service/internal/assistant"
	"github.com/helixir/paper-library-service/internal/auth"
	"github.com/helixir/paper-library-service/internal/blobstore"
	"github.com/helixir/paper-library-service/internal/cache"
	"github.com/helixir/paper-library-service/internal/config"
	"github.com/helixir/paper-library-service/internal/database"
	"github.com/helixir/paper-library-service/internal/events"
	"github.com/helixir/paper-library-service/internal/llm"
	"github.com/helixir/paper-library-service/internal/metadata"
	"github.com/helixir/paper-library-service/internal/observability"
	"github.com/helixir/paper-library-service/internal/pdf"
	"github.com/helixir/paper-library-service/internal/repository"
	httpserver "github.com/helixir/paper-library-service/internal/server/http"
	"github.com/helixir/paper-library-service/internal/temporal"
	"github.com/helixir/paper-library-service/internal/vault"
)

const metricsNamespace = "paper_library"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Msg("paper-library-service server starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(metricsNamespace)
	}

	db, err := database.New(ctx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	logger.Info().Msg("database connection established")

	if cfg.Database.MigrationAutoRun {
		if err := migrateUp(db, cfg.Database.MigrationPath, logger); err != nil {
			return err
		}
	}

	// Repositories.
	users := repository.NewPgUserRepository(db)
	papers := repository.NewPgPaperRepository(db)
	citations := repository.NewPgCitationRepository(db)
	tags := repository.NewPgTagRepository(db)
	notes := repository.NewPgNoteRepository(db)
	libraries := repository.NewPgLibraryRepository(db)
	pdfFiles := repository.NewPgPdfFileRepository(db)
	downloadLogs := repository.NewPgDownloadLogRepository(db)
	summaries := repository.NewPgSummaryRepository(db)
	publishers := repository.NewPgPublisherAccountRepository(db)

	tokens, err := auth.NewTokenManager(cfg.Auth)
	if err != nil {
		return fmt.Errorf("create token manager: %w", err)
	}
	authService, err := auth.NewService(users, auth.NewPasswordHasher(cfg.Auth.BcryptCost), tokens, logger)
	if err != nil {
		return fmt.Errorf("create auth service: %w", err)
	}

	credentialVault, err := newVault(cfg.Vault)
	if err != nil {
		return err
	}

	publisher, err := newEventPublisher(cfg.Kafka)
	if err != nil {
		return err
	}
	emitter := events.NewEmitter(publisher, metrics, logger)
	defer func() {
		if err := emitter.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close event publisher")
		}
	}()

	var metadataCache metadata.Cache
	if cfg.Redis.Enabled {
		redisCache := cache.NewMetadataCache(cfg.Redis, logger)
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("metadata cache unreachable, lookups will miss")
		}
		metadataCache = redisCache
	}
	resolver, err := metadata.New(cfg.PaperSources, metadataCache, metrics, logger)
	if err != nil {
		return fmt.Errorf("create metadata resolver: %w", err)
	}

	blobs, err := blobstore.New(ctx, cfg.BlobStore, logger)
	if err != nil {
		return fmt.Errorf("create blob store: %w", err)
	}
	pdfLibrary := pdf.NewLibrary(blobs, pdfFiles, emitter, logger)

	deps := httpserver.Deps{
		Auth:         authService,
		Papers:       papers,
		Citations:    citations,
		Tags:         tags,
		TagTx:        tagTransaction(db),
		Notes:        notes,
		Libraries:    libraries,
		PdfFiles:     pdfFiles,
		DownloadLogs: downloadLogs,
		Summaries:    summaries,
		Publishers:   publishers,
		Analysis:     analysis.NewService(papers, citations, metrics, logger),
		Resolver:     resolver,
		PDFs:         pdfLibrary,
		Vault:        credentialVault,
		Emitter:      emitter,
		Health:       db,
		Metrics:      metrics,
	}

	if cfg.LLM.Enabled {
		client, err := newLLMClient(cfg.LLM, metrics, logger)
		if err != nil {
			return err
		}
		deps.Assistant = assistant.NewService(client, papers, notes, summaries, emitter, logger)
		logger.Info().Str("provider", cfg.LLM.Provider).Msg("assistant enabled")
	}

	if cfg.Temporal.Enabled {
		temporalClient, err := temporal.NewClient(cfg.Temporal, logger)
		if err != nil {
			return fmt.Errorf("connect to temporal: %w", err)
		}
		acquisitions := temporal.NewAcquisitionClient(temporalClient, cfg.Temporal.TaskQueue)
		defer acquisitions.Close()
		deps.Acquisitions = acquisitions
		logger.Info().
			Str("host_port", cfg.Temporal.HostPort).
			Str("namespace", cfg.Temporal.Namespace).
			Msg("temporal client connected")
	}

	httpCfg := httpserver.Config{
		Address:            cfg.Server.HTTPAddress(),
		ReadTimeout:        cfg.Server.ReadTimeout,
		WriteTimeout:       cfg.Server.WriteTimeout,
		IdleTimeout:        cfg.Server.IdleTimeout,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		MaxUploadBytes:     cfg.PDF.MaxSizeBytes,
	}
	httpSrv := httpserver.NewServer(httpCfg, deps, logger)

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress(),
			Handler:      metricsMux,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info().Str("address", httpCfg.Address).Msg("HTTP REST API server starting")
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	if metricsServer != nil {
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("metrics server starting")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	readyLog := logger.Info().Str("http_address", httpCfg.Address)
	if metricsServer != nil {
		readyLog = readyLog.Str("metrics_address", metricsServer.Addr)
	}
	readyLog.Msg("paper-library-service is ready")

	select {
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	logger.Info().Msg("shutting down paper-library-service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown error")
		}
	}

	logger.Info().Msg("paper-library-service shutdown complete")
	return nil
}

func migrateUp(db *database.DB, path string, logger zerolog.Logger) error {
	migrator, err := database.NewMigrator(db, path, logger)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			logger.Error().Err(closeErr).Msg("failed to close migrator")
		}
	}()
	if err := migrator.Up(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// tagTransaction runs tag replacement inside one database transaction.
func tagTransaction(db *database.DB) httpserver.TagTxFunc {
	return func(ctx context.Context, fn func(tags repository.TagRepository) error) error {
		return db.WithTransaction(ctx, func(tx pgx.Tx) error {
			return fn(repository.NewPgTagRepository(tx))
		})
	}
}

func newVault(cfg config.VaultConfig) (*vault.Vault, error) {
	key, err := base64.StdEncoding.DecodeString(cfg.Key)
	if err != nil {
		return nil, fmt.Errorf("decode vault key: %w", err)
	}
	v, err := vault.New(key)
	if err != nil {
		return nil, fmt.Errorf("create vault: %w", err)
	}
	return v, nil
}

func newEventPublisher(cfg config.KafkaConfig) (events.Publisher, error) {
	if !cfg.Enabled {
		return events.NopPublisher{}, nil
	}
	p, err := events.NewKafkaPublisher(cfg)
	if err != nil {
		return nil, fmt.Errorf("create kafka publisher: %w", err)
	}
	return p, nil
}

func newLLMClient(cfg config.LLMConfig, metrics *observability.Metrics, logger zerolog.Logger) (llm.Client, error) {
	providerCfg := cfg.OpenAI
	if cfg.Provider == llm.ProviderAnthropic {
		providerCfg = cfg.Anthropic
	}
	client, err := llm.NewClient(cfg.Provider, llm.ProviderConfig{
		APIKey:      providerCfg.APIKey,
		Model:       providerCfg.Model,
		BaseURL:     providerCfg.BaseURL,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create llm client: %w", err)
	}
	return llm.NewBreakerClient(client, llm.BreakerConfig{
		Failures: cfg.BreakerFailures,
		Cooldown: cfg.BreakerCooldown,
	}, metrics, logger), nil
}
