package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/hrdiaspora/diaspora-service/internal/api/http"
	"github.com/hrdiaspora/diaspora-service/internal/api/http/handlers"
	"github.com/hrdiaspora/diaspora-service/internal/auth"
	"github.com/hrdiaspora/diaspora-service/internal/clock"
	"github.com/hrdiaspora/diaspora-service/internal/config"
	"github.com/hrdiaspora/diaspora-service/internal/domain"
	"github.com/hrdiaspora/diaspora-service/internal/events"
	"github.com/hrdiaspora/diaspora-service/internal/export"
	"github.com/hrdiaspora/diaspora-service/internal/observability"
	"github.com/hrdiaspora/diaspora-service/internal/persistence"
	"github.com/hrdiaspora/diaspora-service/internal/repository"
	"github.com/hrdiaspora/diaspora-service/internal/repository/memory"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore := openStore(ctx, cfg, logger)
	defer closeStore()

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	archiver, err := export.NewS3Archiver(ctx, cfg.Export)
	if err != nil {
		logger.Fatal("failed to configure export archive", zap.Error(err))
	}

	clk := clock.System(cfg.App.Location)
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	services := service.NewServices(service.Dependencies{
		Store:       store,
		Clock:       clk,
		Dispatcher:  dispatcher,
		Logger:      logger,
		Auth:        cfg.Auth,
		Policy:      cfg.Policy,
		Instruments: metrics,
		Archiver:    archiver,
	})
	bootstrapAdmin(ctx, cfg.Auth, services.Auth, logger)

	worker.Start(dispatcher, worker.Subscribers{
		Notifications: service.NewNotificationService(dispatcher, logger, cfg.Notification),
		Stream:        events.NewStreamPublisher(redis.Client, cfg.Redis.EventStream, cfg.Redis.StreamMaxLen, logger),
		Metrics:       metrics,
	})

	authMiddleware := auth.NewAuthMiddleware(services.Auth.TokenManager(), store.Repositories().Accounts)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, store, redis),
		Auth:           handlers.NewAuthHandler(services.Auth),
		Offices:        handlers.NewOfficesHandler(services.Offices),
		Diasporas:      handlers.NewDiasporasHandler(services.Diasporas),
		Purposes:       handlers.NewPurposesHandler(services.Purposes),
		Cases:          handlers.NewCasesHandler(services.Cases),
		Referrals:      handlers.NewReferralsHandler(services.Referrals, clk),
		Reports:        handlers.NewReportsHandler(services.Reports, services.Exports),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// openStore connects to postgres, or falls back to the in-memory store when
// no DSN is configured.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, func()) {
	if cfg.Postgres.DSN == "" {
		logger.Warn("POSTGRES_DSN not provided; using in-memory store")
		return memory.New(), func() {}
	}

	pg, err := persistence.OpenPostgres(ctx, cfg.Postgres, cfg.App.Name, logger)
	if err != nil {
		logger.Fatal("failed to open postgres", zap.Error(err))
	}
	return repository.NewPostgresStore(pg.Pool()), pg.Close
}

func bootstrapAdmin(ctx context.Context, cfg config.AuthConfig, authService *service.AuthService, logger *zap.Logger) {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return
	}
	email := cfg.AdminEmail
	if email == "" {
		email = cfg.AdminUsername + "@localhost"
	}
	account, err := authService.EnsureAccount(ctx, service.AccountInput{
		Username: cfg.AdminUsername,
		Email:    email,
		Password: cfg.AdminPassword,
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		logger.Fatal("failed to bootstrap admin", zap.Error(err))
	}
	logger.Info("admin account ready", zap.String("account_id", account.ID))
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
