package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/educrm-api/internal/dto"
	"github.com/noah-isme/educrm-api/internal/models"
	"github.com/noah-isme/educrm-api/internal/workflow"
	appErrors "github.com/noah-isme/educrm-api/pkg/errors"
)

type mockDropdownRepo struct {
	rows      []models.Dropdown
	listCalls int
	createErr error
}

func (m *mockDropdownRepo) List(ctx context.Context, module string) ([]models.Dropdown, error) {
	m.listCalls++
	out := []models.Dropdown{}
	for _, r := range m.rows {
		if module == "" || r.Module == module {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockDropdownRepo) FindByID(ctx context.Context, id string) (*models.Dropdown, error) {
	for _, r := range m.rows {
		if r.ID == id {
			copy := r
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockDropdownRepo) Create(ctx context.Context, row *models.Dropdown) error {
	if m.createErr != nil {
		return m.createErr
	}
	row.ID = fmt.Sprintf("dd-%d", len(m.rows)+1)
	m.rows = append(m.rows, *row)
	return nil
}

func (m *mockDropdownRepo) Update(ctx context.Context, row *models.Dropdown) error {
	for i := range m.rows {
		if m.rows[i].ID == row.ID {
			m.rows[i] = *row
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockDropdownRepo) Delete(ctx context.Context, id string) (bool, error) {
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func seededDropdowns() *mockDropdownRepo {
	return &mockDropdownRepo{rows: []models.Dropdown{
		{ID: "dd-a", Module: "leads", FieldName: "status", Key: "lost", Value: "Lost", Sequence: 6},
		{ID: "dd-b", Module: "leads", FieldName: "status", Key: "new", Value: "Fresh", Sequence: 1},
		{ID: "dd-c", Module: "leads", FieldName: "source", Key: "web", Value: "Website", Sequence: 1},
		{ID: "dd-d", Module: "admissions", FieldName: "visaStatus", Key: "applied", Value: "Applied", Sequence: 2},
	}}
}

func TestDropdownModuleGroupsAndCaches(t *testing.T) {
	repo := seededDropdowns()
	cache := NewCacheService(newMemoryCache(), nil, time.Minute, nil, true)
	svc := NewDropdownService(repo, cache, time.Hour, nil, nil)

	group, err := svc.Module(context.Background(), "leads")
	require.NoError(t, err)
	require.Len(t, group["status"], 2)
	assert.Equal(t, "new", group["status"][0].Key)
	assert.Equal(t, "lost", group["status"][1].Key)
	assert.Empty(t, group["region"])
	assert.Contains(t, group, "region")

	_, err = svc.Module(context.Background(), "leads")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)
}

func TestDropdownUnknownModule(t *testing.T) {
	svc := NewDropdownService(seededDropdowns(), nil, 0, nil, nil)
	_, err := svc.Module(context.Background(), "invoices")
	requireCode(t, err, appErrors.ErrNotFound.Code)
}

func TestDropdownCreateValidatesField(t *testing.T) {
	svc := NewDropdownService(seededDropdowns(), nil, 0, nil, nil)
	_, err := svc.Create(context.Background(), dto.DropdownRequest{Module: "leads", FieldName: "visaStatus", Key: "x", Value: "X"})
	appErr := requireCode(t, err, appErrors.ErrValidation.Code)
	assert.Equal(t, "fieldName", appErr.Details[0].Field)
}

func TestDropdownCreateDuplicateIsConflict(t *testing.T) {
	repo := seededDropdowns()
	repo.createErr = fmt.Errorf("create dropdown: %w", &pq.Error{Code: "23505"})
	svc := NewDropdownService(repo, nil, 0, nil, nil)
	_, err := svc.Create(context.Background(), dto.DropdownRequest{Module: "leads", FieldName: "source", Key: "web", Value: "Web"})
	requireCode(t, err, appErrors.ErrConflict.Code)
}

func TestDropdownWriteInvalidatesCache(t *testing.T) {
	repo := seededDropdowns()
	store := newMemoryCache()
	cache := NewCacheService(store, nil, time.Minute, nil, true)
	svc := NewDropdownService(repo, cache, time.Hour, nil, nil)

	_, err := svc.All(context.Background())
	require.NoError(t, err)
	require.Contains(t, store.entries, "dropdowns:all")

	_, err = svc.Update(context.Background(), "dd-c", dto.DropdownRequest{Module: "leads", FieldName: "source", Key: "web", Value: "Web form", Sequence: 3})
	require.NoError(t, err)
	assert.NotContains(t, store.entries, "dropdowns:all")

	_, err = svc.Update(context.Background(), "dd-c", dto.DropdownRequest{Module: "leads", FieldName: "status", Key: "web", Value: "Web"})
	requireCode(t, err, appErrors.ErrValidation.Code)
}

func TestDropdownDeleteMissing(t *testing.T) {
	svc := NewDropdownService(seededDropdowns(), nil, 0, nil, nil)
	requireCode(t, svc.Delete(context.Background(), "nope"), appErrors.ErrNotFound.Code)
}

func TestWorkflowDescribeUsesDropdownLabels(t *testing.T) {
	dropdowns := NewDropdownService(seededDropdowns(), nil, 0, nil, nil)
	svc := NewWorkflowService(dropdowns, workflow.NewChecker(workflow.ModeStrict, nil))

	view, err := svc.Describe(context.Background(), models.EntityLead)
	require.NoError(t, err)
	assert.Equal(t, workflow.ModeStrict, view.Mode)
	assert.Equal(t, "status", view.Field)
	require.NotEmpty(t, view.Steps)
	assert.Equal(t, "new", view.Steps[0].Key)
	assert.Equal(t, "Fresh", view.Steps[0].Label)

	_, err = svc.Describe(context.Background(), "invoice")
	requireCode(t, err, appErrors.ErrNotFound.Code)
}

func TestWorkflowDescribeIncludesDropdownStates(t *testing.T) {
	repo := seededDropdowns()
	repo.rows = append(repo.rows, models.Dropdown{ID: "dd-h", Module: "leads", FieldName: "status", Key: "on-hold", Value: "On Hold", Sequence: 7})
	svc := NewWorkflowService(NewDropdownService(repo, nil, 0, nil, nil), workflow.NewChecker(workflow.ModeFlag, nil))

	view, err := svc.Describe(context.Background(), models.EntityLead)
	require.NoError(t, err)
	last := view.Steps[len(view.Steps)-1]
	assert.Equal(t, "on-hold", last.Key)
	assert.Equal(t, "On Hold", last.Label)
}
