package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hrdiaspora/diaspora-service/internal/clock"
	"github.com/hrdiaspora/diaspora-service/internal/domain"
	"github.com/hrdiaspora/diaspora-service/internal/events"
	"github.com/hrdiaspora/diaspora-service/internal/repository"
	apperrors "github.com/hrdiaspora/diaspora-service/pkg/util"
)

// Actor identifies who performs a mutation. The zero value is the system.
type Actor struct {
	AccountID *string
	Role      domain.Role
}

// SystemActor is used by seeding and background work.
var SystemActor = Actor{Role: domain.RoleAdmin}

func (a Actor) event() events.Actor {
	return events.Actor{AccountID: a.AccountID, Role: a.Role}
}

func newID() string {
	return uuid.NewString()
}

// translateStoreError turns store sentinels into domain errors for resource.
func translateStoreError(err error, resource string) error {
	if err == nil {
		return nil
	}
	var ce *repository.ConstraintError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, nil)
	case errors.As(err, &ce) && errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewAlreadyExists(resource+" already exists", map[string]any{"constraint": ce.Constraint})
	case errors.As(err, &ce) && errors.Is(err, repository.ErrReferenced):
		return apperrors.NewReferencedProtected(resource, map[string]any{"constraint": ce.Constraint})
	}
	return err
}

// publisher stamps and dispatches domain events after a successful write.
type publisher struct {
	dispatcher events.Dispatcher
	clock      clock.Clock
	logger     *zap.Logger
}

func (p publisher) publish(ctx context.Context, event events.Event) {
	if p.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = newID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.clock.Now()
	}
	if err := p.dispatcher.Publish(ctx, event); err != nil && p.logger != nil {
		p.logger.Warn("publish event", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

func nopLogger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// recordTransition appends an audit entry inside the caller's transaction.
func recordTransition(ctx context.Context, r repository.Repositories, actor Actor, entity domain.TransitionEntity, id, field, from, to string, at time.Time) error {
	return r.Transitions.Create(ctx, &domain.TransitionLog{
		ID:        newID(),
		Entity:    entity,
		EntityID:  id,
		Field:     field,
		OldValue:  from,
		NewValue:  to,
		ActorID:   actor.AccountID,
		CreatedAt: at,
	})
}
