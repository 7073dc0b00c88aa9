// Package main provides the entry point for the paper library Temporal worker.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/helixir/paper-library-service/internal/blobstore"
	"github.com/helixir/paper-library-service/internal/cache"
	"github.com/helixir/paper-library-service/internal/config"
	"github.com/helixir/paper-library-service/internal/database"
	"github.com/helixir/paper-library-service/internal/events"
	"github.com/helixir/paper-library-service/internal/maintenance"
	"github.com/helixir/paper-library-service/internal/metadata"
	"github.com/helixir/paper-library-service/internal/notify"
	"github.com/helixir/paper-library-service/internal/observability"
	"github.com/helixir/paper-library-service/internal/pdf"
	"github.com/helixir/paper-library-service/internal/repository"
	"github.com/helixir/paper-library-service/internal/temporal"
	"github.com/helixir/paper-library-service/internal/temporal/activities"
	"github.com/helixir/paper-library-service/internal/temporal/workflows"
)

const (
	metricsNamespace = "paper_library_worker"
	userAgent        = "paper-library-service/1.0 (+pdf acquisition)"
)

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
	logger = logger.With().Str("component", "worker").Logger()
	logger.Info().Msg("paper-library-service worker starting")

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

	users := repository.NewPgUserRepository(db)
	papers := repository.NewPgPaperRepository(db)
	pdfFiles := repository.NewPgPdfFileRepository(db)
	downloadLogs := repository.NewPgDownloadLogRepository(db)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled {
		kp, err := events.NewKafkaPublisher(cfg.Kafka)
		if err != nil {
			return fmt.Errorf("create kafka publisher: %w", err)
		}
		publisher = kp
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

	pdfActivities := activities.NewPDFActivities(
		papers,
		users,
		resolver,
		pdf.NewDownloader(pdf.Config{
			Timeout:   cfg.PDF.DownloadTimeout,
			MaxSize:   cfg.PDF.MaxSizeBytes,
			UserAgent: userAgent,
		}),
		pdf.NewLibrary(blobs, pdfFiles, emitter, logger),
		downloadLogs,
		notify.New(cfg.Mail, logger),
		metrics,
	)

	temporalClient, err := temporal.NewClient(cfg.Temporal, logger)
	if err != nil {
		return fmt.Errorf("connect to temporal: %w", err)
	}
	defer temporalClient.Close()
	logger.Info().
		Str("host_port", cfg.Temporal.HostPort).
		Str("namespace", cfg.Temporal.Namespace).
		Msg("temporal client connected")

	pdfWorker, err := temporal.NewWorker(temporalClient, cfg.Temporal)
	if err != nil {
		return fmt.Errorf("create worker: %w", err)
	}
	pdfWorker.
		Workflow(temporal.WorkflowPDFAcquisition, workflows.PDFAcquisitionWorkflow).
		Activities(pdfActivities)

	if cfg.Maintenance.Enabled {
		scheduler := maintenance.NewScheduler(db, logger)
		prune := maintenance.NewPruneDownloadLogs(downloadLogs, cfg.Maintenance.DownloadLogRetention, logger)
		if err := scheduler.Add(cfg.Maintenance.DownloadLogSchedule, prune); err != nil {
			return fmt.Errorf("schedule %s: %w", prune.Name(), err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		logger.Info().
			Str("schedule", cfg.Maintenance.DownloadLogSchedule).
			Dur("retention", cfg.Maintenance.DownloadLogRetention).
			Msg("maintenance scheduler started")
	}

	if cfg.Metrics.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsServer := &http.Server{
			Addr:              cfg.Server.MetricsAddress(),
			Handler:           metricsMux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("metrics server starting")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("metrics server error")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("metrics server shutdown error")
			}
		}()
	}

	logger.Info().
		Str("task_queue", pdfWorker.TaskQueue()).
		Msg("starting temporal worker")

	if err := pdfWorker.Run(ctx); err != nil {
		if ctx.Err() != nil {
			logger.Info().Msg("worker stopped via signal")
			return nil
		}
		return fmt.Errorf("worker error: %w", err)
	}
	return nil
}
