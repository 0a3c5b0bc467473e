package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/iho/ledgerviews/internal/adapter/file"
	httpAdapter "github.com/iho/ledgerviews/internal/adapter/http"
	"github.com/iho/ledgerviews/internal/adapter/http/handler"
	postgresRepo "github.com/iho/ledgerviews/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/ledgerviews/internal/adapter/repository/redis"
	"github.com/iho/ledgerviews/internal/infrastructure/config"
	"github.com/iho/ledgerviews/internal/infrastructure/logger"
	"github.com/iho/ledgerviews/internal/infrastructure/metrics"
	"github.com/iho/ledgerviews/internal/infrastructure/postgres"
	"github.com/iho/ledgerviews/internal/infrastructure/redis"
	"github.com/iho/ledgerviews/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Statement taxonomy
	taxonomy, err := file.LoadTaxonomy(cfg.TaxonomyPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.TaxonomyPath).Msg("failed to load taxonomy")
	}

	// Lookup repositories, each behind a shared Redis cache and an in-process
	// memoizing cache.
	accounts := usecase.NewCachedAccountLookup(
		redisRepo.NewSharedAccountLookup(redisClient, postgresRepo.NewAccountRepository(pool), cfg.SharedCacheTTL),
		cfg.LookupCacheSize, cfg.LookupCacheTTL,
	)
	parties := usecase.NewCachedPartyLookup(
		redisRepo.NewSharedPartyLookup(redisClient, postgresRepo.NewPartyRepository(pool), cfg.SharedCacheTTL),
		cfg.LookupCacheSize, cfg.LookupCacheTTL,
	)
	opening := usecase.NewCachedOpeningBalanceLookup(
		postgresRepo.NewOpeningBalanceRepository(pool),
		cfg.LookupCacheSize, cfg.LookupCacheTTL,
	)

	retrier := postgresRepo.NewRetrier()
	sink := postgresRepo.NewRowSink(pool, retrier)
	streams := postgresRepo.NewEntryStreamFactory(pool)
	locker := redisRepo.NewJobLock(redisClient, cfg.JobLockTTL)
	engineMetrics := metrics.New()

	pipeline := usecase.NewPipeline(usecase.PipelineConfig{
		Sink:     sink,
		Warner:   logger.NewWarner(appLogger),
		Accounts: accounts,
		Parties:  parties,
		Opening:  opening,
		Taxonomy: taxonomy,
		Locker:   locker,
		IDs:      postgresRepo.NewULIDGenerator(),
		Metrics:  engineMetrics,
		Logger:   appLogger,
	})
	jobService := usecase.NewJobService(pipeline, streams)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		JobHandler:    handler.NewJobHandler(jobService),
		HealthHandler: handler.NewHealthHandler(pool, redisClient),
		Logger:        appLogger,
		JobRateLimit:  cfg.JobRateLimit,
		JobRateBurst:  cfg.JobRateBurst,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
