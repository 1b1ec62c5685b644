package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studiotributario-backend/config"
	"studiotributario-backend/handlers"
	"studiotributario-backend/logging"
	"studiotributario-backend/middleware"
	"studiotributario-backend/repository"
	"studiotributario-backend/service"
	"studiotributario-backend/session"
	"studiotributario-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

func main() {
	// .env in the working directory first, then the project root (relative to cmd/server/)
	cfg, err := config.Load(".env", "../../.env")
	if err != nil {
		bootLogger := logging.New("info", "console")
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := session.NewStore(cfg.Session.TTL, logger)
	go store.Run(ctx, cfg.Session.SweepInterval)

	// Initialize services
	documentService := service.NewDocumentService(
		service.DocumentWithMaxFileSize(cfg.Upload.MaxFileSize),
		service.DocumentWithLogger(logger),
	)

	searchService := service.NewSearchService(
		service.SearchWithClient(service.NewPerplexityClient(
			cfg.Search.URL,
			cfg.Search.Model,
			cfg.Search.Temperature,
			cfg.Search.Timeout,
		)),
		service.SearchWithStepTimeout(cfg.Search.Timeout),
		service.SearchWithLogger(logger),
	)

	generator := service.NewGeminiGenerator(cfg.Gemini.Model, cfg.Gemini.Timeout)

	analysisService := service.NewAnalysisService(
		service.AnalysisWithGenerator(generator),
		service.AnalysisWithDocumentService(documentService),
		service.AnalysisWithLogger(logger),
	)

	draftService := service.NewDraftService(
		service.DraftWithGenerator(generator),
		service.DraftWithDocumentService(documentService),
		service.DraftWithLogger(logger),
	)

	exportOpts := []service.ExportServiceOption{service.ExportWithLogger(logger)}
	if cfg.Archive.Enabled {
		opts, closeArchive, err := initArchive(ctx, cfg.Archive, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize export archive")
		}
		defer closeArchive()
		exportOpts = append(exportOpts, opts...)
	}
	exportService := service.NewExportService(exportOpts...)

	// Setup Gin router
	gin.SetMode(cfg.Server.GinMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))
	r.MaxMultipartMemory = cfg.Upload.MaxFileSize + (1 << 20)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"sessions": store.Len(),
		})
	})

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go limiter.Run(ctx, time.Minute)

	api := r.Group("/api", limiter.Middleware(), middleware.StudioPassword(cfg.Auth.StudioPasswordHash))
	handlers.RegisterRoutes(api, handlers.Services{
		Store:     store,
		Search:    searchService,
		Documents: documentService,
		Analysis:  analysisService,
		Drafts:    draftService,
		Exports:   exportService,
		Logger:    logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// initArchive builds the storage backend and, when a database is configured,
// the repository recording archived exports
func initArchive(ctx context.Context, cfg config.ArchiveConfig, logger zerolog.Logger) ([]service.ExportServiceOption, func(), error) {
	st, err := storage.New(storage.Config{
		Type:         storage.StorageType(cfg.StorageType),
		LocalPath:    cfg.LocalPath,
		S3Bucket:     cfg.S3Bucket,
		S3Region:     cfg.S3Region,
		S3Prefix:     cfg.S3Prefix,
		AWSAccessKey: cfg.AWSAccessKey,
		AWSSecretKey: cfg.AWSSecretKey,
	})
	if err != nil {
		return nil, nil, err
	}
	opts := []service.ExportServiceOption{service.ExportWithStorage(st)}
	logger.Info().Str("storage_type", cfg.StorageType).Msg("export archive enabled")

	if cfg.DatabaseURL == "" {
		logger.Warn().Msg("DATABASE_URL not set, archived exports will not be recorded")
		return opts, func() {}, nil
	}

	pool, err := initPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	opts = append(opts, service.ExportWithRecorder(repository.NewExportRepository(pool)))
	return opts, pool.Close, nil
}

func initPostgres(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
