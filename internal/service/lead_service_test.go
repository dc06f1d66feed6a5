package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/educrm-api/internal/dto"
	"github.com/noah-isme/educrm-api/internal/models"
	"github.com/noah-isme/educrm-api/internal/workflow"
	appErrors "github.com/noah-isme/educrm-api/pkg/errors"
)

type mockLeadRepo struct {
	leads   map[string]*models.Lead
	findErr error
	updates int
	nextID  int
}

func newMockLeadRepo(leads ...*models.Lead) *mockLeadRepo {
	repo := &mockLeadRepo{leads: map[string]*models.Lead{}}
	for _, l := range leads {
		repo.leads[l.ID] = l
	}
	return repo
}

func (m *mockLeadRepo) List(ctx context.Context, filter models.LeadFilter, scope models.Scope) ([]models.Lead, int, error) {
	out := []models.Lead{}
	for _, l := range m.leads {
		if scope.CanSee(l) {
			out = append(out, *l)
		}
	}
	return out, len(out), nil
}

func (m *mockLeadRepo) Search(ctx context.Context, q string, scope models.Scope, limit int) ([]models.Lead, error) {
	return []models.Lead{}, nil
}

func (m *mockLeadRepo) FindByID(ctx context.Context, id string) (*models.Lead, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	lead, ok := m.leads[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *lead
	return &copy, nil
}

func (m *mockLeadRepo) Create(ctx context.Context, exec sqlx.ExtContext, lead *models.Lead) error {
	m.nextID++
	if lead.ID == "" {
		lead.ID = fmt.Sprintf("lead-%d", m.nextID)
	}
	copy := *lead
	m.leads[lead.ID] = &copy
	return nil
}

func (m *mockLeadRepo) Update(ctx context.Context, lead *models.Lead) error {
	if _, ok := m.leads[lead.ID]; !ok {
		return sql.ErrNoRows
	}
	m.updates++
	copy := *lead
	m.leads[lead.ID] = &copy
	return nil
}

func (m *mockLeadRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := m.leads[id]; !ok {
		return false, nil
	}
	delete(m.leads, id)
	return true, nil
}

func newLeadFixture(mode string, leads ...*models.Lead) (*LeadService, *mockLeadRepo, *mockActivityRepo) {
	repo := newMockLeadRepo(leads...)
	activities := &mockActivityRepo{}
	svc := NewLeadService(LeadServiceParams{
		Repo:       repo,
		Activities: NewActivityService(ActivityServiceParams{Repo: activities}),
		Checker:    workflow.NewChecker(mode, nil),
	})
	return svc, repo, activities
}

func TestLeadCreateDefaultsAndActivity(t *testing.T) {
	svc, repo, activities := newLeadFixture(workflow.ModeFlag)

	lead, err := svc.Create(context.Background(), dto.CreateLeadRequest{
		Name:      " Jane Doe ",
		Email:     "jane@example.com",
		Countries: []string{"UK"},
	}, counselorScope("c-1"))
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", lead.Name)
	assert.Equal(t, models.LeadStatusNew, lead.Status)
	require.NotNil(t, lead.CounselorID)
	assert.Equal(t, "c-1", *lead.CounselorID)
	assert.Contains(t, repo.leads, lead.ID)

	require.Len(t, activities.created, 1)
	assert.Equal(t, models.ActivityCreated, activities.created[0].ActivityType)
	assert.Equal(t, lead.ID, activities.created[0].EntityID)
}

func TestLeadCreateRejectsMalformedEmail(t *testing.T) {
	svc, _, _ := newLeadFixture(workflow.ModeFlag)
	_, err := svc.Create(context.Background(), dto.CreateLeadRequest{Name: "Jane", Email: "not-an-email"}, adminScope())
	appErr := requireCode(t, err, appErrors.ErrValidation.Code)
	require.Len(t, appErr.Details, 1)
	assert.Equal(t, "email", appErr.Details[0].Field)
}

func TestLeadCreateRejectsUnknownStatus(t *testing.T) {
	svc, _, _ := newLeadFixture(workflow.ModeFlag)
	_, err := svc.Create(context.Background(), dto.CreateLeadRequest{Name: "Jane", Email: "jane@example.com", Status: "archived"}, adminScope())
	appErr := requireCode(t, err, appErrors.ErrValidation.Code)
	assert.Equal(t, "status", appErr.Details[0].Field)
}

func TestLeadSetStatusRecordsActivity(t *testing.T) {
	svc, repo, activities := newLeadFixture(workflow.ModeFlag, &models.Lead{ID: "l-1", Name: "Jane", Status: models.LeadStatusNew})

	lead, err := svc.SetStatus(context.Background(), "l-1", dto.LeadStatusRequest{Status: "lost"}, adminScope())
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusLost, lead.Status)
	assert.Equal(t, 1, repo.updates)

	require.Len(t, activities.created, 1)
	a := activities.created[0]
	assert.Equal(t, models.ActivityStatusChanged, a.ActivityType)
	assert.Equal(t, "status", *a.FieldName)
	assert.Equal(t, "new", *a.OldValue)
	assert.Equal(t, "lost", *a.NewValue)
	assert.False(t, a.Flagged)
}

func TestLeadSetStatusSameValueIsNoop(t *testing.T) {
	svc, repo, activities := newLeadFixture(workflow.ModeStrict, &models.Lead{ID: "l-1", Status: models.LeadStatusNew})

	_, err := svc.SetStatus(context.Background(), "l-1", dto.LeadStatusRequest{Status: "new"}, adminScope())
	require.NoError(t, err)
	assert.Zero(t, repo.updates)
	assert.Empty(t, activities.created)
}

func TestLeadOutOfOrderTransitionFlagMode(t *testing.T) {
	svc, _, activities := newLeadFixture(workflow.ModeFlag, &models.Lead{ID: "l-1", Status: models.LeadStatusNew})

	lead, err := svc.SetStatus(context.Background(), "l-1", dto.LeadStatusRequest{Status: "converted"}, adminScope())
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusConverted, lead.Status)
	require.Len(t, activities.created, 1)
	assert.True(t, activities.created[0].Flagged)
}

func TestLeadOutOfOrderTransitionStrictMode(t *testing.T) {
	svc, repo, activities := newLeadFixture(workflow.ModeStrict, &models.Lead{ID: "l-1", Status: models.LeadStatusNew})

	_, err := svc.SetStatus(context.Background(), "l-1", dto.LeadStatusRequest{Status: "converted"}, adminScope())
	requireCode(t, err, appErrors.ErrInvalidTransition.Code)
	assert.Zero(t, repo.updates)
	assert.Empty(t, activities.created)
}

func TestLeadUpdateOneActivityPerChangedField(t *testing.T) {
	svc, _, activities := newLeadFixture(workflow.ModeFlag, &models.Lead{ID: "l-1", Name: "Jane", City: "Leeds", Status: models.LeadStatusNew})

	name := "Jane"
	city := "London"
	program := "MSc Data Science"
	_, err := svc.Update(context.Background(), "l-1", dto.UpdateLeadRequest{Name: &name, City: &city, Program: &program}, adminScope())
	require.NoError(t, err)

	require.Len(t, activities.created, 2)
	fields := []string{*activities.created[0].FieldName, *activities.created[1].FieldName}
	assert.ElementsMatch(t, []string{"city", "program"}, fields)
	for _, a := range activities.created {
		assert.Equal(t, models.ActivityUpdated, a.ActivityType)
	}
}

func TestLeadMarkLost(t *testing.T) {
	svc, _, activities := newLeadFixture(workflow.ModeFlag, &models.Lead{ID: "l-1", Status: models.LeadStatusContacted})

	lead, err := svc.MarkLost(context.Background(), "l-1", dto.MarkLostRequest{Reason: " chose competitor "}, adminScope())
	require.NoError(t, err)
	assert.True(t, lead.IsLost)
	require.NotNil(t, lead.LostReason)
	assert.Equal(t, "chose competitor", *lead.LostReason)
	assert.Len(t, activities.created, 3)
	assert.Len(t, activities.byType(models.ActivityStatusChanged), 1)
}

func TestLeadGetHidesOtherCounselorsLead(t *testing.T) {
	owner := "c-1"
	svc, _, _ := newLeadFixture(workflow.ModeFlag, &models.Lead{ID: "l-1", CounselorID: &owner})

	_, err := svc.Get(context.Background(), "l-1", counselorScope("c-2"))
	requireCode(t, err, appErrors.ErrAccessDenied.Code)

	lead, err := svc.Get(context.Background(), "l-1", counselorScope("c-1"))
	require.NoError(t, err)
	assert.Equal(t, "l-1", lead.ID)
}

func TestLeadDeleteMissing(t *testing.T) {
	svc, _, _ := newLeadFixture(workflow.ModeFlag)
	err := svc.Delete(context.Background(), "nope", adminScope())
	requireCode(t, err, appErrors.ErrNotFound.Code)
}

func TestLeadSearchBlankQuery(t *testing.T) {
	svc, _, _ := newLeadFixture(workflow.ModeFlag)
	leads, err := svc.Search(context.Background(), "   ", adminScope())
	require.NoError(t, err)
	assert.Empty(t, leads)
}

func TestLeadGetMalformedIDIsNotFound(t *testing.T) {
	svc, repo, _ := newLeadFixture(workflow.ModeFlag)
	repo.findErr = &pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "L1"`}

	_, err := svc.Get(context.Background(), "L1", adminScope())
	requireCode(t, err, appErrors.ErrNotFound.Code)
}

func TestLeadGetStorageFailureIsInternal(t *testing.T) {
	svc, repo, _ := newLeadFixture(workflow.ModeFlag)
	repo.findErr = fmt.Errorf("connection reset")

	_, err := svc.Get(context.Background(), "5d1c9a52-2f6e-4b8a-9c3d-7e4f1a2b3c4d", adminScope())
	requireCode(t, err, appErrors.ErrInternal.Code)
}

func TestLeadSetStatusDropdownStateFlagged(t *testing.T) {
	svc, repo, activities := newLeadFixture(workflow.ModeFlag, &models.Lead{ID: "l-1", Status: models.LeadStatusContacted})
	svc.checker.UseStates(NewDropdownService(&mockDropdownRepo{rows: []models.Dropdown{
		{ID: "dd-h", Module: models.ModuleLeads, FieldName: "status", Key: "on-hold", Value: "On Hold", Sequence: 7},
	}}, nil, 0, nil, nil))

	lead, err := svc.SetStatus(context.Background(), "l-1", dto.LeadStatusRequest{Status: "on-hold"}, adminScope())
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatus("on-hold"), lead.Status)
	assert.Equal(t, 1, repo.updates)
	require.Len(t, activities.created, 1)
	assert.True(t, activities.created[0].Flagged)
}
