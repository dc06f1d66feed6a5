package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/educrm-api/internal/models"
)

const activityColumns = `id, entity_type, entity_id, activity_type, field_name, old_value, new_value, description, flagged,
user_id, user_name, created_at`

const insertActivity = `INSERT INTO activities (id, entity_type, entity_id, activity_type, field_name, old_value, new_value,
description, flagged, user_id, user_name, created_at)
VALUES (:id, :entity_type, :entity_id, :activity_type, :field_name, :old_value, :new_value,
:description, :flagged, :user_id, :user_name, :created_at)`

// ActivityRepository stores the append-only activity timeline.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository creates a new instance of ActivityRepository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create inserts activities in order. A nil exec writes outside any transaction.
func (r *ActivityRepository) Create(ctx context.Context, exec sqlx.ExtContext, activities ...*models.Activity) error {
	target := execOr(r.db, exec)
	now := time.Now().UTC()
	for _, activity := range activities {
		if activity.ID == "" {
			activity.ID = uuid.NewString()
		}
		if activity.CreatedAt.IsZero() {
			activity.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, insertActivity, activity); err != nil {
			return fmt.Errorf("create activity: %w", err)
		}
	}
	return nil
}

// ListByEntity returns the timeline of an entity, newest first.
func (r *ActivityRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]models.Activity, error) {
	query := fmt.Sprintf("SELECT %s FROM activities WHERE entity_type = $1 AND entity_id = $2 ORDER BY created_at DESC, id DESC", activityColumns)
	activities := []models.Activity{}
	if err := r.db.SelectContext(ctx, &activities, query, entityType, entityID); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}

// Transfer copies every activity of the source entity onto the target entity
// with new ids, keeping all other fields including created_at. Source rows are
// left untouched. It returns the number of copied rows.
func (r *ActivityRepository) Transfer(ctx context.Context, exec sqlx.ExtContext, fromType, fromID, toType, toID string) (int, error) {
	target := execOr(r.db, exec)

	query := fmt.Sprintf("SELECT %s FROM activities WHERE entity_type = $1 AND entity_id = $2 ORDER BY created_at ASC, id ASC", activityColumns)
	var source []models.Activity
	if err := sqlx.SelectContext(ctx, target, &source, query, fromType, fromID); err != nil {
		return 0, fmt.Errorf("load activities to transfer: %w", err)
	}

	for i := range source {
		copied := source[i]
		copied.ID = uuid.NewString()
		copied.EntityType = toType
		copied.EntityID = toID
		if _, err := sqlx.NamedExecContext(ctx, target, insertActivity, &copied); err != nil {
			return i, fmt.Errorf("copy activity: %w", err)
		}
	}
	return len(source), nil
}
