package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/educrm-api/internal/dto"
	"github.com/noah-isme/educrm-api/internal/models"
	appErrors "github.com/noah-isme/educrm-api/pkg/errors"
)

type mockActivityRepo struct {
	created   []*models.Activity
	listed    []models.Activity
	transfers [][4]string
	createErr error
	txCreates int
}

func (m *mockActivityRepo) Create(ctx context.Context, exec sqlx.ExtContext, activities ...*models.Activity) error {
	if m.createErr != nil {
		return m.createErr
	}
	if exec != nil {
		m.txCreates++
	}
	m.created = append(m.created, activities...)
	return nil
}

func (m *mockActivityRepo) ListByEntity(ctx context.Context, entityType, entityID string) ([]models.Activity, error) {
	return m.listed, nil
}

func (m *mockActivityRepo) Transfer(ctx context.Context, exec sqlx.ExtContext, fromType, fromID, toType, toID string) (int, error) {
	m.transfers = append(m.transfers, [4]string{fromType, fromID, toType, toID})
	return 2, nil
}

func (m *mockActivityRepo) byType(activityType models.ActivityType) []*models.Activity {
	var out []*models.Activity
	for _, a := range m.created {
		if a.ActivityType == activityType {
			out = append(out, a)
		}
	}
	return out
}

func counselorScope(id string) models.Scope {
	return models.Scope{UserID: id, UserName: "Counselor " + id, Role: models.RoleCounselor}
}

func adminScope() models.Scope {
	return models.Scope{UserID: "admin-1", UserName: "Admin", Role: models.RoleSuperAdmin}
}

func requireCode(t *testing.T, err error, code string) *appErrors.Error {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected app error, got %v", err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

func TestDiffFieldsOnePerChangedField(t *testing.T) {
	counselor := "c-1"
	before := models.Lead{ID: "l-1", Name: "Jane", Status: models.LeadStatusNew, Countries: []string{"UK"}, UpdatedAt: time.Now()}
	after := before
	after.Status = models.LeadStatusLost
	after.CounselorID = &counselor
	after.Countries = []string{"UK", "Canada"}
	after.UpdatedAt = before.UpdatedAt.Add(time.Hour)

	changes := diffFields(&before, &after)
	require.Len(t, changes, 3)

	byField := map[string]models.FieldChange{}
	for _, c := range changes {
		byField[c.Field] = c
	}
	assert.Equal(t, "new", byField["status"].OldValue)
	assert.Equal(t, "lost", byField["status"].NewValue)
	assert.Equal(t, "", byField["counselorId"].OldValue)
	assert.Equal(t, "c-1", byField["counselorId"].NewValue)
	assert.Equal(t, "UK, Canada", byField["countries"].NewValue)
	assert.Equal(t, "Counselor Id", byField["counselorId"].Label)
}

func TestDiffFieldsIgnoresUnchangedAndDerived(t *testing.T) {
	before := models.Student{ID: "s-1", Status: models.StudentStatusActive}
	after := before
	after.StatusLabel = "Active"
	assert.Empty(t, diffFields(&before, &after))
}

func TestHumanLabel(t *testing.T) {
	assert.Equal(t, "Lost Reason", humanLabel("lostReason"))
	assert.Equal(t, "Status", humanLabel("status"))
	assert.Equal(t, "App Status", humanLabel("appStatus"))
}

func TestChangeActivitiesMarksStatusField(t *testing.T) {
	changes := []models.FieldChange{
		{Field: "status", Label: "Status", OldValue: "new", NewValue: "lost"},
		{Field: "notes", Label: "Notes", OldValue: "", NewValue: "call back"},
	}
	activities := changeActivities(models.EntityLead, "l-1", changes, "status", true, adminScope())
	require.Len(t, activities, 2)

	assert.Equal(t, models.ActivityStatusChanged, activities[0].ActivityType)
	assert.True(t, activities[0].Flagged)
	assert.Equal(t, "status", *activities[0].FieldName)
	assert.Equal(t, `Status changed from "new" to "lost"`, activities[0].Description)

	assert.Equal(t, models.ActivityUpdated, activities[1].ActivityType)
	assert.False(t, activities[1].Flagged)
	assert.Equal(t, `Notes set to "call back"`, activities[1].Description)
}

func TestTimelineHidesOtherCounselorsRows(t *testing.T) {
	owner := "c-1"
	svc := NewActivityService(ActivityServiceParams{
		Repo: &mockActivityRepo{},
		Lookups: map[string]EntityLookup{
			models.EntityLead: func(ctx context.Context, id string) (models.Assigned, error) {
				return &models.Lead{ID: id, CounselorID: &owner}, nil
			},
		},
	})

	_, err := svc.Timeline(context.Background(), models.EntityLead, "l-1", counselorScope("c-2"))
	appErr := requireCode(t, err, appErrors.ErrAccessDenied.Code)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Public().Code)

	_, err = svc.Timeline(context.Background(), models.EntityLead, "l-1", counselorScope("c-1"))
	assert.NoError(t, err)
}

func TestTimelineMissingEntity(t *testing.T) {
	svc := NewActivityService(ActivityServiceParams{
		Repo: &mockActivityRepo{},
		Lookups: map[string]EntityLookup{
			models.EntityStudent: func(ctx context.Context, id string) (models.Assigned, error) {
				return nil, sql.ErrNoRows
			},
		},
	})
	_, err := svc.Timeline(context.Background(), models.EntityStudent, "missing", adminScope())
	requireCode(t, err, appErrors.ErrNotFound.Code)
}

func TestAddNoteRejectsUnknownEntity(t *testing.T) {
	svc := NewActivityService(ActivityServiceParams{Repo: &mockActivityRepo{}})
	_, err := svc.AddNote(context.Background(), dto.CreateActivityRequest{
		EntityType:  "invoice",
		EntityID:    "x",
		Description: "hello",
	}, adminScope())
	appErr := requireCode(t, err, appErrors.ErrValidation.Code)
	require.NotEmpty(t, appErr.Details)
	assert.Equal(t, "entityType", appErr.Details[0].Field)
}

func TestAddNoteOnSharedEvent(t *testing.T) {
	repo := &mockActivityRepo{}
	svc := NewActivityService(ActivityServiceParams{
		Repo: repo,
		Lookups: map[string]EntityLookup{
			models.EntityEvent: func(ctx context.Context, id string) (models.Assigned, error) {
				return nil, nil
			},
		},
	})
	activity, err := svc.AddNote(context.Background(), dto.CreateActivityRequest{
		EntityType:   models.EntityEvent,
		EntityID:     "e-1",
		ActivityType: "comment",
		Description:  "  bring brochures ",
	}, counselorScope("c-9"))
	require.NoError(t, err)
	assert.Equal(t, models.ActivityComment, activity.ActivityType)
	assert.Equal(t, "bring brochures", activity.Description)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "c-9", *repo.created[0].UserID)
}
