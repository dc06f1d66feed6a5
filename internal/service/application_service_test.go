package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/educrm-api/internal/dto"
	"github.com/noah-isme/educrm-api/internal/models"
	"github.com/noah-isme/educrm-api/internal/workflow"
	appErrors "github.com/noah-isme/educrm-api/pkg/errors"
)

type mockApplicationRepo struct {
	apps    map[string]*models.Application
	updates int
}

func (m *mockApplicationRepo) List(ctx context.Context, filter models.ApplicationFilter, scope models.Scope) ([]models.Application, int, error) {
	return []models.Application{}, 0, nil
}

func (m *mockApplicationRepo) FindByID(ctx context.Context, id string) (*models.Application, error) {
	app, ok := m.apps[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *app
	return &copy, nil
}

func (m *mockApplicationRepo) Create(ctx context.Context, app *models.Application) error {
	app.ID = fmt.Sprintf("app-%d", len(m.apps)+1)
	copy := *app
	m.apps[app.ID] = &copy
	return nil
}

func (m *mockApplicationRepo) Update(ctx context.Context, app *models.Application) error {
	m.updates++
	copy := *app
	m.apps[app.ID] = &copy
	return nil
}

func (m *mockApplicationRepo) Delete(ctx context.Context, id string) (bool, error) {
	_, ok := m.apps[id]
	delete(m.apps, id)
	return ok, nil
}

func newApplicationFixture(mode string, students []*models.Student, apps ...*models.Application) (*ApplicationService, *mockApplicationRepo, *mockActivityRepo) {
	repo := &mockApplicationRepo{apps: map[string]*models.Application{}}
	for _, a := range apps {
		repo.apps[a.ID] = a
	}
	activities := &mockActivityRepo{}
	svc := NewApplicationService(ApplicationServiceParams{
		Repo:       repo,
		Students:   newMockStudentRepo(students...),
		Activities: NewActivityService(ActivityServiceParams{Repo: activities}),
		Checker:    workflow.NewChecker(mode, nil),
	})
	return svc, repo, activities
}

func TestApplicationCreateInheritsFromStudent(t *testing.T) {
	counselor, officer := "c-1", "o-1"
	student := &models.Student{ID: "s-1", TargetCountry: "UK", CounselorID: &counselor, AdmissionOfficerID: &officer}
	svc, _, activities := newApplicationFixture(workflow.ModeFlag, []*models.Student{student})

	app, err := svc.Create(context.Background(), dto.CreateApplicationRequest{
		StudentID:  "s-1",
		University: "University of Leeds",
		Program:    "MSc Finance",
	}, adminScope())
	require.NoError(t, err)

	assert.Equal(t, models.ApplicationStatusOpen, app.AppStatus)
	assert.Equal(t, "UK", app.Country)
	assert.Equal(t, "c-1", *app.CounselorID)
	assert.Equal(t, "o-1", *app.AdmissionOfficerID)

	require.Len(t, activities.created, 2)
	assert.Equal(t, models.EntityApplication, activities.created[0].EntityType)
	assert.Equal(t, models.EntityStudent, activities.created[1].EntityType)
	assert.Equal(t, "Application submitted to University of Leeds", activities.created[1].Description)
}

func TestApplicationCreateMissingStudent(t *testing.T) {
	svc, _, _ := newApplicationFixture(workflow.ModeFlag, nil)
	_, err := svc.Create(context.Background(), dto.CreateApplicationRequest{StudentID: "nope", University: "X", Program: "Y"}, adminScope())
	requireCode(t, err, appErrors.ErrNotFound.Code)
}

func TestApplicationUpdateStatusTransition(t *testing.T) {
	app := &models.Application{ID: "app-1", StudentID: "s-1", AppStatus: models.ApplicationStatusOpen}
	svc, repo, activities := newApplicationFixture(workflow.ModeFlag, nil, app)

	status := "Closed"
	updated, err := svc.Update(context.Background(), "app-1", dto.UpdateApplicationRequest{AppStatus: &status}, adminScope())
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatus("Closed"), updated.AppStatus)
	assert.Equal(t, 1, repo.updates)
	require.Len(t, activities.created, 1)
	assert.Equal(t, "appStatus", *activities.created[0].FieldName)
	assert.Equal(t, models.ActivityStatusChanged, activities.created[0].ActivityType)
}

func TestApplicationUpdateRejectsUnknownStatus(t *testing.T) {
	app := &models.Application{ID: "app-1", AppStatus: models.ApplicationStatusOpen}
	svc, repo, _ := newApplicationFixture(workflow.ModeStrict, nil, app)

	status := "Archived"
	_, err := svc.Update(context.Background(), "app-1", dto.UpdateApplicationRequest{AppStatus: &status}, adminScope())
	appErr := requireCode(t, err, appErrors.ErrValidation.Code)
	assert.Equal(t, "appStatus", appErr.Details[0].Field)
	assert.Zero(t, repo.updates)
}

func TestApplicationHiddenFromOtherOfficer(t *testing.T) {
	officer := "o-1"
	app := &models.Application{ID: "app-1", AdmissionOfficerID: &officer}
	svc, _, _ := newApplicationFixture(workflow.ModeFlag, nil, app)

	_, err := svc.Get(context.Background(), "app-1", models.Scope{UserID: "o-2", Role: models.RoleAdmissionOfficer})
	requireCode(t, err, appErrors.ErrAccessDenied.Code)
}
