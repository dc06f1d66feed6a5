package models

import "time"

// Entity types that carry an activity timeline.
const (
	EntityLead        = "lead"
	EntityStudent     = "student"
	EntityApplication = "application"
	EntityAdmission   = "admission"
	EntityEvent       = "event"
)

// ActivityEntities lists the entity types accepted by the timeline endpoints.
var ActivityEntities = []string{EntityLead, EntityStudent, EntityApplication, EntityAdmission, EntityEvent}

// ActivityType classifies an activity record.
type ActivityType string

const (
	ActivityCreated       ActivityType = "created"
	ActivityUpdated       ActivityType = "updated"
	ActivityStatusChanged ActivityType = "status_changed"
	ActivityConverted     ActivityType = "converted"
	ActivityNote          ActivityType = "note"
	ActivityComment       ActivityType = "comment"
)

// Activity is an immutable audit record attached to an entity.
type Activity struct {
	ID           string       `db:"id" json:"id"`
	EntityType   string       `db:"entity_type" json:"entityType"`
	EntityID     string       `db:"entity_id" json:"entityId"`
	ActivityType ActivityType `db:"activity_type" json:"activityType"`
	FieldName    *string      `db:"field_name" json:"fieldName"`
	OldValue     *string      `db:"old_value" json:"oldValue"`
	NewValue     *string      `db:"new_value" json:"newValue"`
	Description  string       `db:"description" json:"description"`
	Flagged      bool         `db:"flagged" json:"flagged"`
	UserID       *string      `db:"user_id" json:"userId"`
	UserName     string       `db:"user_name" json:"userName"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
}

// FieldChange describes one field that differs between two versions of a row.
type FieldChange struct {
	Field    string
	Label    string
	OldValue string
	NewValue string
}
