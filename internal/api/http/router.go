package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hrdiaspora/diaspora-service/internal/api/http/handlers"
	"github.com/hrdiaspora/diaspora-service/internal/auth"
	"github.com/hrdiaspora/diaspora-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Offices        *handlers.OfficesHandler
	Diasporas      *handlers.DiasporasHandler
	Purposes       *handlers.PurposesHandler
	Cases          *handlers.CasesHandler
	Referrals      *handlers.ReferralsHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	api.Post("/diasporas/register", cfg.Diasporas.Register)

	protected := api.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole())
	protected.Get("/auth/me", cfg.Auth.Me)
	protected.Post("/auth/password/change", cfg.Auth.ChangePassword)

	admin := auth.RequireAdmin()
	staff := auth.RequireStaff()

	protected.Post("/accounts", admin, cfg.Auth.CreateAccount)

	protected.Get("/offices", cfg.Offices.List)
	protected.Get("/offices/:id", cfg.Offices.Get)
	protected.Post("/offices", admin, cfg.Offices.Create)
	protected.Put("/offices/:id", admin, cfg.Offices.Update)
	protected.Delete("/offices/:id", admin, cfg.Offices.Delete)

	protected.Get("/diasporas/me", cfg.Diasporas.Mine)
	protected.Get("/diasporas", staff, cfg.Diasporas.List)
	protected.Post("/diasporas", staff, cfg.Diasporas.Register)
	protected.Get("/diasporas/:id", cfg.Diasporas.Get)
	protected.Put("/diasporas/:id", cfg.Diasporas.Update)
	protected.Delete("/diasporas/:id", admin, cfg.Diasporas.Delete)
	protected.Get("/diasporas/:id/case", staff, cfg.Cases.ByDiaspora)

	protected.Get("/purposes", cfg.Purposes.List)
	protected.Post("/purposes", cfg.Purposes.Create)
	protected.Get("/purposes/:id", cfg.Purposes.Get)
	protected.Put("/purposes/:id", cfg.Purposes.Update)
	protected.Delete("/purposes/:id", cfg.Purposes.Delete)

	cases := protected.Group("/cases", staff)
	cases.Get("/", cfg.Cases.List)
	cases.Post("/", cfg.Cases.Open)
	cases.Get("/:id", cfg.Cases.Get)
	cases.Post("/:id/stage", cfg.Cases.AdvanceStage)
	cases.Post("/:id/status", cfg.Cases.SetStatus)
	cases.Get("/:id/history", cfg.Cases.History)

	referrals := protected.Group("/referrals", staff)
	referrals.Get("/", cfg.Referrals.List)
	referrals.Post("/", cfg.Referrals.Create)
	referrals.Get("/:id", cfg.Referrals.Get)
	referrals.Post("/:id/receive", cfg.Referrals.Receive)
	referrals.Post("/:id/status", cfg.Referrals.Advance)
	referrals.Post("/:id/sync", cfg.Referrals.Sync)
	referrals.Get("/:id/history", cfg.Referrals.History)

	reports := protected.Group("/reports", staff)
	reports.Get("/summary", cfg.Reports.Summary)
	reports.Get("/diasporas-by-period", cfg.Reports.DiasporasByPeriod)
	reports.Get("/progress-by-purpose", cfg.Reports.ProgressByPurpose)
	reports.Get("/cases-by-status", cfg.Reports.CasesByStatus)
	reports.Get("/referrals-by-office", cfg.Reports.ReferralsByOffice)
	reports.Get("/export", cfg.Reports.Export)
}
