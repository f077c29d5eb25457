// Package main is the entry point for the RV search API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/pkordes/rv-search/backend/internal/catalog"
	"github.com/pkordes/rv-search/backend/internal/config"
	"github.com/pkordes/rv-search/backend/internal/handler"
	"github.com/pkordes/rv-search/backend/internal/ingest"
	"github.com/pkordes/rv-search/backend/internal/middleware"
	"github.com/pkordes/rv-search/backend/internal/obs"
	"github.com/pkordes/rv-search/backend/internal/repo"
	"github.com/pkordes/rv-search/backend/internal/service"
	"github.com/pkordes/rv-search/backend/internal/storage/s3"
	"github.com/pkordes/rv-search/backend/migrations"
	"github.com/pkordes/rv-search/backend/spec"
)

func main() {
	// --- Config -----------------------------------------------------------
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Error("read .env", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		// Use the default logger before ours is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	logger := obs.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := migrate(ctx, pool); err != nil {
		slog.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database ready")

	// --- Services ---------------------------------------------------------
	filters, err := catalog.Load(cfg.FiltersPath)
	if err != nil {
		slog.Error("failed to load filter catalog", "error", err)
		os.Exit(1)
	}

	listingRepo := repo.NewListingRepo(pool)
	photoRepo := repo.NewPhotoRepo(pool)

	// A nil uploader makes photo uploads answer 503.
	var uploader service.Uploader
	if cfg.UploadsEnabled() {
		client, err := s3.NewClient(s3.Options{
			Endpoint:       cfg.S3Endpoint,
			PublicEndpoint: cfg.S3PublicEndpoint,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			Bucket:         cfg.S3Bucket,
			UseSSL:         cfg.S3UseSSL,
		}, logger)
		if err != nil {
			slog.Error("failed to create photo storage client", "error", err)
			os.Exit(1)
		}
		uploader = client
	} else {
		slog.Warn("S3_ENDPOINT not set; photo uploads disabled")
	}

	searchSvc := service.NewSearchService(listingRepo)
	listingSvc := service.NewListingService(listingRepo)
	photoSvc := service.NewPhotoService(listingRepo, photoRepo, uploader)
	filterSvc := service.NewFilterService(filters)

	// --- Ingest -----------------------------------------------------------
	if cfg.IngestEnabled() {
		consumer, err := ingest.NewConsumer(cfg.KafkaBrokers, cfg.IngestGroup, nil,
			ingest.NewListingHandler(listingSvc, logger), logger)
		if err != nil {
			slog.Error("failed to start listing ingest", "error", err)
			os.Exit(1)
		}
		defer consumer.Close() //nolint:errcheck // shutting down
		go func() {
			slog.Info("listing ingest starting", "topic", cfg.IngestTopic, "group", cfg.IngestGroup)
			if err := consumer.Run(ctx, []string{cfg.IngestTopic}); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("listing ingest stopped", "error", err)
			}
		}()
	}

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer → CORS → body limit.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	server := handler.NewServer(searchSvc, listingSvc, photoSvc, filterSvc, spec.OpenAPI, logger)
	r.Mount("/", server.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Photo uploads need a longer read window than JSON calls.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	// Give in-flight requests up to 15 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies pending goose migrations through a database/sql view of the pool.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return err
	}
	for _, res := range results {
		slog.Info("migration applied", "version", res.Source.Version, "duration", res.Duration)
	}
	return nil
}
