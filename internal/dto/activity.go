package dto

// CreateActivityRequest is the POST /activities payload for manual notes and comments.
type CreateActivityRequest struct {
	EntityType   string `json:"entityType" validate:"required,oneof=lead student application admission event"`
	EntityID     string `json:"entityId" validate:"required"`
	ActivityType string `json:"activityType" validate:"omitempty,oneof=note comment"`
	Description  string `json:"description" validate:"required,max=2000"`
}
