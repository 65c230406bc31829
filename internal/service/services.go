package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/hrdiaspora/diaspora-service/internal/auth"
	"github.com/hrdiaspora/diaspora-service/internal/clock"
	"github.com/hrdiaspora/diaspora-service/internal/config"
	"github.com/hrdiaspora/diaspora-service/internal/domain"
	"github.com/hrdiaspora/diaspora-service/internal/events"
	"github.com/hrdiaspora/diaspora-service/internal/export"
	"github.com/hrdiaspora/diaspora-service/internal/repository"
)

// Services is the full set of application services over one store.
type Services struct {
	Auth      *AuthService
	Offices   *OfficeService
	Diasporas *DiasporaService
	Purposes  *PurposeService
	Cases     *CaseService
	Referrals *ReferralService
	Reports   *ReportService
	Exports   *ExportService
}

// Instrumentation receives the counters services report outside of events.
type Instrumentation interface {
	CollisionRecorder
	ReportObserver
}

// Dependencies bundles what NewServices needs.
type Dependencies struct {
	Store      repository.Store
	Clock      clock.Clock
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Auth       config.AuthConfig
	Policy     config.PolicyConfig
	// Instruments and Archiver may be nil.
	Instruments Instrumentation
	Archiver    *export.Archiver
	// Codes overrides the diaspora id generator.
	Codes domain.CodeGenerator
}

// StagePolicyFor picks the stage policy configured by cfg.
func StagePolicyFor(cfg config.PolicyConfig) domain.StagePolicy {
	if cfg.ForwardOnlyStages {
		return domain.ForwardOnlyStagePolicy{}
	}
	return domain.PermissiveStagePolicy{}
}

// ReferralPolicyFor picks the referral policy configured by cfg.
func ReferralPolicyFor(cfg config.PolicyConfig) domain.ReferralPolicy {
	if cfg.StrictReferralTransitions {
		return domain.StrictReferralPolicy{}
	}
	return domain.PermissiveReferralPolicy{}
}

// NewServices wires every service.
func NewServices(deps Dependencies) *Services {
	var (
		collisions CollisionRecorder
		observer   ReportObserver
	)
	if deps.Instruments != nil {
		collisions = deps.Instruments
		observer = deps.Instruments
	}
	ttl := deps.Auth.AccessTokenTTL()
	if ttl <= 0 {
		ttl = time.Hour
	}
	tokens := auth.NewTokenManager(deps.Auth.JWTSecret, ttl, deps.Clock)

	reports := NewReportService(ReportDependencies{
		Store:    deps.Store,
		Clock:    deps.Clock,
		Observer: observer,
		Logger:   deps.Logger,
	})
	return &Services{
		Auth: NewAuthService(AuthDependencies{
			Store:      deps.Store,
			Clock:      deps.Clock,
			Tokens:     tokens,
			BcryptCost: deps.Auth.BcryptCost,
			Logger:     deps.Logger,
		}),
		Offices: NewOfficeService(OfficeDependencies{Store: deps.Store, Clock: deps.Clock, Logger: deps.Logger}),
		Diasporas: NewDiasporaService(DiasporaDependencies{
			Store:      deps.Store,
			Clock:      deps.Clock,
			Dispatcher: deps.Dispatcher,
			Logger:     deps.Logger,
			Codes:      deps.Codes,
			BcryptCost: deps.Auth.BcryptCost,
			Collisions: collisions,
		}),
		Purposes: NewPurposeService(PurposeDependencies{
			Store:        deps.Store,
			Clock:        deps.Clock,
			Logger:       deps.Logger,
			StrictFields: deps.Policy.StrictPurposeFields,
		}),
		Cases: NewCaseService(CaseDependencies{
			Store:       deps.Store,
			Clock:       deps.Clock,
			Dispatcher:  deps.Dispatcher,
			Logger:      deps.Logger,
			StagePolicy: StagePolicyFor(deps.Policy),
		}),
		Referrals: NewReferralService(ReferralDependencies{
			Store:      deps.Store,
			Clock:      deps.Clock,
			Dispatcher: deps.Dispatcher,
			Logger:     deps.Logger,
			Policy:     ReferralPolicyFor(deps.Policy),
		}),
		Reports: reports,
		Exports: NewExportService(reports, deps.Archiver, deps.Logger),
	}
}
