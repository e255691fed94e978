package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"salesinsights/database"
	analyticsapp "salesinsights/internal/analytics/application"
	analyticsinfra "salesinsights/internal/analytics/infrastructure"
	"salesinsights/internal/api"
	"salesinsights/internal/config"
	genapp "salesinsights/internal/generator/application"
	sharedinfra "salesinsights/internal/shared/infrastructure"
	warehouseinfra "salesinsights/internal/warehouse/infrastructure"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := sharedinfra.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reader, closeStore, err := openReader(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("store", cfg.Store).Msg("store unavailable")
	}
	defer closeStore()

	cache := sharedinfra.NewShardedCache(16)
	defer cache.Close()

	metrics := analyticsapp.NewMetricsService(reader,
		analyticsapp.WithCache(cache, cfg.CacheTTL),
		analyticsapp.WithLogger(logger),
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(api.NewHandlers(metrics, logger)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.Store).Msg("server starting")
	if err := serve(ctx, srv, logger); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
	logger.Info().Msg("server stopped")
}

// serve écoute jusqu'à l'annulation de ctx puis arrête le serveur proprement
func serve(ctx context.Context, srv *http.Server, logger zerolog.Logger) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("graceful shutdown failed")
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}

// openReader ouvre le stockage analytique. En mode mémoire, l'entrepôt
// est généré au démarrage avec la configuration de seed.
func openReader(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (analyticsapp.MetricsReader, func(), error) {
	if cfg.Store == config.StoreMemory {
		store := warehouseinfra.NewMemoryStore()

		genCfg := genapp.DefaultConfig()
		genCfg.YearsBack = cfg.Seed.Years
		genCfg.Seed = cfg.Seed.Seed
		genCfg.BatchSize = cfg.Seed.BatchSize
		genCfg.MaterialCount = cfg.Seed.Materials

		summary, err := genapp.NewSeeder(store, logger).Run(ctx, genCfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().
			Int64("facts", summary.Facts).
			Dur("duration", summary.Duration).
			Msg("memory warehouse seeded")
		return analyticsinfra.NewMemoryQueryRepository(store), func() {}, nil
	}

	db, err := database.Open(ctx, cfg.DB.Driver, cfg.DB.ConnString())
	if err != nil {
		return nil, nil, err
	}
	if err := database.ApplySchema(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return analyticsinfra.NewMetricsQueryRepository(db), func() { db.Close() }, nil
}
