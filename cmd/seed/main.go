package main

import (
	"context"
	"errors"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/hrdiaspora/diaspora-service/internal/clock"
	"github.com/hrdiaspora/diaspora-service/internal/config"
	"github.com/hrdiaspora/diaspora-service/internal/events"
	"github.com/hrdiaspora/diaspora-service/internal/observability"
	"github.com/hrdiaspora/diaspora-service/internal/persistence"
	"github.com/hrdiaspora/diaspora-service/internal/repository"
	"github.com/hrdiaspora/diaspora-service/internal/seed"
	"github.com/hrdiaspora/diaspora-service/internal/service"
	"github.com/hrdiaspora/diaspora-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Postgres.DSN == "" {
		logger.Fatal("POSTGRES_DSN is required for seeding")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg, err := persistence.OpenPostgres(ctx, cfg.Postgres, cfg.App.Name+"-seed", logger)
	if err != nil {
		logger.Fatal("failed to open postgres", zap.Error(err))
	}
	defer pg.Close()

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.Start(dispatcher, worker.Subscribers{
		Stream: events.NewStreamPublisher(redis.Client, cfg.Redis.EventStream, cfg.Redis.StreamMaxLen, logger),
	})

	now := time.Now().In(cfg.App.Location)
	clk := clock.NewFixed(now)
	services := service.NewServices(service.Dependencies{
		Store:      repository.NewPostgresStore(pg.Pool()),
		Clock:      clk,
		Dispatcher: dispatcher,
		Logger:     logger,
		Auth:       cfg.Auth,
		Policy:     cfg.Policy,
	})

	res, err := seed.Run(ctx, services, clk, now, logger)
	if errors.Is(err, seed.ErrAlreadySeeded) {
		logger.Info("demo data already present; nothing to do")
		return
	}
	if err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}
	logger.Info("seed complete",
		zap.Int("offices", res.Offices),
		zap.Int("diasporas", res.Diasporas),
		zap.Int("purposes", res.Purposes),
		zap.Int("cases", res.Cases),
		zap.Int("referrals", res.Referrals))
}
