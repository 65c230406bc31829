package repository

import (
	"context"

	"github.com/hrdiaspora/diaspora-service/internal/domain"
)

// TransitionRepository stores stage and status audit entries.
type TransitionRepository interface {
	Create(ctx context.Context, entry *domain.TransitionLog) error
	ListByEntity(ctx context.Context, entity domain.TransitionEntity, entityID string) ([]domain.TransitionLog, error)
}

type transitionRepository struct {
	db DBTX
}

// NewTransitionRepository builds repository.
func NewTransitionRepository(db DBTX) TransitionRepository {
	return &transitionRepository{db: db}
}

func (r *transitionRepository) Create(ctx context.Context, entry *domain.TransitionLog) error {
	const query = `
        INSERT INTO transition_logs (id, entity, entity_id, field, old_value, new_value, actor_id, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.Entity,
		entry.EntityID,
		entry.Field,
		entry.OldValue,
		entry.NewValue,
		entry.ActorID,
		entry.CreatedAt,
	)
	return mapPgError(err)
}

func (r *transitionRepository) ListByEntity(ctx context.Context, entity domain.TransitionEntity, entityID string) ([]domain.TransitionLog, error) {
	if !validID(entityID) {
		return []domain.TransitionLog{}, nil
	}
	const query = `
        SELECT id, entity, entity_id, field, old_value, new_value, actor_id, created_at
        FROM transition_logs WHERE entity=$1 AND entity_id=$2 ORDER BY created_at ASC, seq ASC`
	rows, err := r.db.Query(ctx, query, entity, entityID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	result := []domain.TransitionLog{}
	for rows.Next() {
		var entry domain.TransitionLog
		if err := rows.Scan(
			&entry.ID,
			&entry.Entity,
			&entry.EntityID,
			&entry.Field,
			&entry.OldValue,
			&entry.NewValue,
			&entry.ActorID,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
