package service

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/educrm-api/internal/dto"
	"github.com/noah-isme/educrm-api/internal/models"
	appErrors "github.com/noah-isme/educrm-api/pkg/errors"
	"github.com/noah-isme/educrm-api/pkg/validation"
)

type activityRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, activities ...*models.Activity) error
	ListByEntity(ctx context.Context, entityType, entityID string) ([]models.Activity, error)
	Transfer(ctx context.Context, exec sqlx.ExtContext, fromType, fromID, toType, toID string) (int, error)
}

// EntityLookup loads the row behind an activity timeline so visibility can be
// checked. A nil row with a nil error marks a shared entity.
type EntityLookup func(ctx context.Context, id string) (models.Assigned, error)

// ActivityService writes and reads entity timelines.
type ActivityService struct {
	repo      activityRepository
	lookups   map[string]EntityLookup
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// ActivityServiceParams groups constructor dependencies.
type ActivityServiceParams struct {
	Repo      activityRepository
	Lookups   map[string]EntityLookup
	Validator *validator.Validate
	Metrics   *MetricsService
	Logger    *zap.Logger
}

// NewActivityService constructs an ActivityService.
func NewActivityService(params ActivityServiceParams) *ActivityService {
	if params.Validator == nil {
		params.Validator = validation.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Lookups == nil {
		params.Lookups = map[string]EntityLookup{}
	}
	return &ActivityService{
		repo:      params.Repo,
		lookups:   params.Lookups,
		validator: params.Validator,
		metrics:   params.Metrics,
		logger:    params.Logger,
	}
}

// Record persists activities through exec, or directly when exec is nil.
func (s *ActivityService) Record(ctx context.Context, exec sqlx.ExtContext, activities ...*models.Activity) error {
	if s == nil || len(activities) == 0 {
		return nil
	}
	if err := s.repo.Create(ctx, exec, activities...); err != nil {
		return err
	}
	for _, a := range activities {
		s.metrics.RecordActivity(a.EntityType, string(a.ActivityType))
	}
	return nil
}

// Transfer copies the timeline of one entity onto another.
func (s *ActivityService) Transfer(ctx context.Context, exec sqlx.ExtContext, fromType, fromID, toType, toID string) (int, error) {
	return s.repo.Transfer(ctx, exec, fromType, fromID, toType, toID)
}

// Timeline returns the activities of an entity visible to scope, newest first.
func (s *ActivityService) Timeline(ctx context.Context, entityType, entityID string, scope models.Scope) ([]models.Activity, error) {
	if err := s.checkEntity(ctx, entityType, entityID, scope); err != nil {
		return nil, err
	}
	activities, err := s.repo.ListByEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activities")
	}
	return activities, nil
}

// AddNote records a manual note or comment on an entity.
func (s *ActivityService) AddNote(ctx context.Context, req dto.CreateActivityRequest, scope models.Scope) (*models.Activity, error) {
	if err := validation.Struct(s.validator, req, "invalid activity payload"); err != nil {
		return nil, err
	}
	if err := s.checkEntity(ctx, req.EntityType, req.EntityID, scope); err != nil {
		return nil, err
	}
	activityType := models.ActivityNote
	if req.ActivityType == string(models.ActivityComment) {
		activityType = models.ActivityComment
	}
	activity := newActivity(req.EntityType, req.EntityID, activityType, strings.TrimSpace(req.Description), scope)
	if err := s.Record(ctx, nil, activity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create activity")
	}
	return activity, nil
}

func (s *ActivityService) checkEntity(ctx context.Context, entityType, entityID string, scope models.Scope) error {
	if !isActivityEntity(entityType) {
		return appErrors.Validation("invalid entity type", []appErrors.FieldError{{
			Field:   "entityType",
			Message: fmt.Sprintf("must be one of [%s]", strings.Join(models.ActivityEntities, " ")),
		}})
	}
	lookup, ok := s.lookups[entityType]
	if !ok {
		return nil
	}
	row, err := lookup(ctx, entityID)
	if err != nil {
		return loadFailure(err, entityType)
	}
	if row != nil && !scope.CanSee(row) {
		return appErrors.Clone(appErrors.ErrAccessDenied, entityType+" not found")
	}
	return nil
}

func isActivityEntity(entityType string) bool {
	for _, e := range models.ActivityEntities {
		if e == entityType {
			return true
		}
	}
	return false
}

func newActivity(entityType, entityID string, activityType models.ActivityType, description string, scope models.Scope) *models.Activity {
	return &models.Activity{
		EntityType:   entityType,
		EntityID:     entityID,
		ActivityType: activityType,
		Description:  description,
		UserID:       scope.Actor(),
		UserName:     scope.UserName,
	}
}

// changeActivities builds one activity per field change. The change on
// statusField becomes a status_changed activity carrying flagged.
func changeActivities(entityType, entityID string, changes []models.FieldChange, statusField string, flagged bool, scope models.Scope) []*models.Activity {
	out := make([]*models.Activity, 0, len(changes))
	for _, change := range changes {
		change := change
		activityType := models.ActivityUpdated
		isStatus := statusField != "" && change.Field == statusField
		if isStatus {
			activityType = models.ActivityStatusChanged
		}
		a := newActivity(entityType, entityID, activityType, describeChange(change), scope)
		a.FieldName = &change.Field
		a.OldValue = &change.OldValue
		a.NewValue = &change.NewValue
		a.Flagged = isStatus && flagged
		out = append(out, a)
	}
	return out
}

func describeChange(change models.FieldChange) string {
	switch {
	case change.OldValue == "":
		return fmt.Sprintf("%s set to %q", change.Label, change.NewValue)
	case change.NewValue == "":
		return fmt.Sprintf("%s cleared (was %q)", change.Label, change.OldValue)
	default:
		return fmt.Sprintf("%s changed from %q to %q", change.Label, change.OldValue, change.NewValue)
	}
}

var skippedDiffFields = map[string]bool{
	"id":        true,
	"createdAt": true,
	"updatedAt": true,
	"createdBy": true,
	"updatedBy": true,
}

// diffFields compares two values of the same struct type field by field and
// returns the fields whose rendered values differ, keyed by JSON name.
// Columns not backed by the database (db:"-") are ignored.
func diffFields(oldValue, newValue interface{}) []models.FieldChange {
	ov := reflect.Indirect(reflect.ValueOf(oldValue))
	nv := reflect.Indirect(reflect.ValueOf(newValue))
	if ov.Kind() != reflect.Struct || nv.Kind() != reflect.Struct || ov.Type() != nv.Type() {
		return nil
	}

	var changes []models.FieldChange
	t := ov.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" || field.Tag.Get("db") == "-" {
			continue
		}
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" || skippedDiffFields[name] {
			continue
		}
		before := renderValue(ov.Field(i))
		after := renderValue(nv.Field(i))
		if before == after {
			continue
		}
		changes = append(changes, models.FieldChange{
			Field:    name,
			Label:    humanLabel(name),
			OldValue: before,
			NewValue: after,
		})
	}
	return changes
}

func renderValue(v reflect.Value) string {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	switch val := v.Interface().(type) {
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.UTC().Format(time.RFC3339)
	case pq.StringArray:
		return strings.Join(val, ", ")
	case []string:
		return strings.Join(val, ", ")
	}
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	default:
		return fmt.Sprint(v.Interface())
	}
}

// humanLabel turns a camelCase key into Title Case words: "lostReason" -> "Lost Reason".
func humanLabel(key string) string {
	if key == "" {
		return ""
	}
	var b strings.Builder
	runes := []rune(key)
	for i, r := range runes {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) && !unicode.IsUpper(runes[i-1]) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
