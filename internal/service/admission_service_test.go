package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/educrm-api/internal/dto"
	"github.com/noah-isme/educrm-api/internal/models"
	"github.com/noah-isme/educrm-api/internal/workflow"
	appErrors "github.com/noah-isme/educrm-api/pkg/errors"
)

type mockAdmissionRepo struct {
	admissions map[string]*models.Admission
}

func (m *mockAdmissionRepo) List(ctx context.Context, filter models.AdmissionFilter, scope models.Scope) ([]models.Admission, int, error) {
	return []models.Admission{}, 0, nil
}

func (m *mockAdmissionRepo) FindByID(ctx context.Context, id string) (*models.Admission, error) {
	a, ok := m.admissions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *a
	return &copy, nil
}

func (m *mockAdmissionRepo) Create(ctx context.Context, admission *models.Admission) error {
	admission.ID = "adm-new"
	copy := *admission
	m.admissions[admission.ID] = &copy
	return nil
}

func (m *mockAdmissionRepo) Update(ctx context.Context, admission *models.Admission) error {
	copy := *admission
	m.admissions[admission.ID] = &copy
	return nil
}

func (m *mockAdmissionRepo) Delete(ctx context.Context, id string) (bool, error) {
	_, ok := m.admissions[id]
	delete(m.admissions, id)
	return ok, nil
}

func newAdmissionFixture(mode string, admissions ...*models.Admission) (*AdmissionService, *mockActivityRepo) {
	counselor := "c-1"
	apps := &mockApplicationRepo{apps: map[string]*models.Application{
		"app-1": {ID: "app-1", StudentID: "s-1", University: "University of Toronto", Program: "BSc CS", CounselorID: &counselor},
		"app-2": {ID: "app-2", StudentID: "s-2"},
	}}
	repo := &mockAdmissionRepo{admissions: map[string]*models.Admission{}}
	for _, a := range admissions {
		repo.admissions[a.ID] = a
	}
	activities := &mockActivityRepo{}
	svc := NewAdmissionService(AdmissionServiceParams{
		Repo:         repo,
		Applications: apps,
		Students:     newMockStudentRepo(&models.Student{ID: "s-1", CounselorID: &counselor}),
		Activities:   NewActivityService(ActivityServiceParams{Repo: activities}),
		Checker:      workflow.NewChecker(mode, nil),
	})
	return svc, activities
}

func TestAdmissionCreateDefaultsFromApplication(t *testing.T) {
	svc, activities := newAdmissionFixture(workflow.ModeFlag)
	deposit := "2024-03-01"

	admission, err := svc.Create(context.Background(), dto.CreateAdmissionRequest{
		ApplicationID: "app-1",
		StudentID:     "s-1",
		DepositDate:   &deposit,
	}, adminScope())
	require.NoError(t, err)

	assert.Equal(t, "University of Toronto", admission.University)
	assert.Equal(t, "BSc CS", admission.Program)
	assert.Equal(t, models.VisaStatusNotApplied, admission.VisaStatus)
	require.NotNil(t, admission.DepositDate)
	assert.Equal(t, 2024, admission.DepositDate.Year())
	assert.Equal(t, "c-1", *admission.CounselorID)
	assert.Len(t, activities.created, 1)
}

func TestAdmissionCreateRejectsForeignApplication(t *testing.T) {
	svc, _ := newAdmissionFixture(workflow.ModeFlag)
	_, err := svc.Create(context.Background(), dto.CreateAdmissionRequest{ApplicationID: "app-2", StudentID: "s-1"}, adminScope())
	appErr := requireCode(t, err, appErrors.ErrValidation.Code)
	assert.Equal(t, "applicationId", appErr.Details[0].Field)
}

func TestAdmissionCreateRejectsBadDate(t *testing.T) {
	svc, _ := newAdmissionFixture(workflow.ModeFlag)
	bad := "01/03/2024"
	_, err := svc.Create(context.Background(), dto.CreateAdmissionRequest{ApplicationID: "app-1", StudentID: "s-1", VisaDate: &bad}, adminScope())
	appErr := requireCode(t, err, appErrors.ErrValidation.Code)
	assert.Equal(t, "visaDate", appErr.Details[0].Field)
}

func TestAdmissionVisaTransitionStrict(t *testing.T) {
	svc, activities := newAdmissionFixture(workflow.ModeStrict,
		&models.Admission{ID: "adm-1", VisaStatus: models.VisaStatusNotApplied})

	approved := "approved"
	_, err := svc.Update(context.Background(), "adm-1", dto.UpdateAdmissionRequest{VisaStatus: &approved}, adminScope())
	requireCode(t, err, appErrors.ErrInvalidTransition.Code)
	assert.Empty(t, activities.created)

	applied := "applied"
	admission, err := svc.Update(context.Background(), "adm-1", dto.UpdateAdmissionRequest{VisaStatus: &applied}, adminScope())
	require.NoError(t, err)
	assert.Equal(t, models.VisaStatus("applied"), admission.VisaStatus)
	require.Len(t, activities.created, 1)
	assert.Equal(t, "visaStatus", *activities.created[0].FieldName)
}
