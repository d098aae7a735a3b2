package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avolkov/eventory/internal/audit"
	"github.com/avolkov/eventory/internal/config"
	"github.com/avolkov/eventory/internal/infrastructure/postgres"
	"github.com/avolkov/eventory/internal/infrastructure/redis"
	"github.com/avolkov/eventory/internal/metrics"
	"github.com/avolkov/eventory/internal/pkg/logger"
	"github.com/avolkov/eventory/internal/service"
	"github.com/avolkov/eventory/internal/stats"
	"github.com/avolkov/eventory/internal/transport/rest"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	if cfg.LogLevel != "" {
		_ = os.Setenv("LOG_LEVEL", cfg.LogLevel)
	}

	logger.Init()
	log := logger.Logger.With().
		Str("service", "eventory").
		Str("env", cfg.AppEnv).
		Logger()

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Postgres ----
	dbPool, err := pgxpool.New(rootCtx, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres pool create failed")
	}
	defer dbPool.Close()

	{
		pingCtx, cancel := context.WithTimeout(rootCtx, 5*time.Second)
		defer cancel()

		if err := dbPool.Ping(pingCtx); err != nil {
			log.Fatal().Err(err).Msg("postgres ping failed")
		}
		log.Info().Msg("postgres connected")
	}

	store := postgres.New(dbPool)
	if err := store.Migrate(rootCtx); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	// ---- Redis ----
	cache := redis.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	{
		pingCtx, cancel := context.WithTimeout(rootCtx, 2*time.Second)
		defer cancel()

		// Best-effort ping; the service runs without redis, just slower.
		if err := cache.Client.Ping(pingCtx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis ping failed (continuing)")
		} else {
			log.Info().Msg("redis connected")
		}
	}

	// ---- Stats collaborator ----
	var views stats.ViewCounter = stats.Nop{}
	if cfg.StatsURL != "" {
		views = stats.NewClient(cfg.StatsURL, cfg.StatsAppName)
		log.Info().Str("url", cfg.StatsURL).Msg("stats client configured")
	}

	// ---- Application services ----
	m := metrics.New()
	auditor := audit.New(logger.Logger)

	requestSvc := service.NewRequestService(store, auditor, m)
	eventSvc := service.NewEventService(store, views, cache, auditor, cfg.StatsAppName)
	adminSvc := service.NewAdminService(store, store, store)
	commentSvc := service.NewCommentService(store)

	h := rest.NewHandler(requestSvc, eventSvc, adminSvc, commentSvc)

	// ---- Router ----
	deps := rest.RouterDeps{
		Handler: h,
		Metrics: m,
	}
	if cfg.RLEnabled {
		deps.Limiter = cache
		deps.RLLimit = cfg.RLLimit
		deps.RLWindow = cfg.RLWindow
	}
	httpHandler := rest.NewRouter(deps)

	// ---- Outbox worker (outbound request.* events) ----
	if cfg.OutboxEnabled {
		store.StartOutboxWorker(rootCtx, cfg.RabbitURL, cfg.RabbitExchange)
		log.Info().Msg("outbox worker started")
	}

	// ---- HTTP server ----
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Port).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("http server crashed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info().Msg("shutdown complete")
}
