package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/educrm-api/internal/dto"
	"github.com/noah-isme/educrm-api/internal/models"
)

type memUniversityRepo struct {
	rows map[string]*models.University
}

func (m *memUniversityRepo) List(ctx context.Context, filter models.UniversityFilter) ([]models.University, int, error) {
	out := make([]models.University, 0, len(m.rows))
	for _, u := range m.rows {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (m *memUniversityRepo) FindByID(ctx context.Context, id string) (*models.University, error) {
	if u, ok := m.rows[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memUniversityRepo) Create(ctx context.Context, uni *models.University) error {
	uni.ID = "uni-1"
	m.rows[uni.ID] = uni
	return nil
}

func TestUniversityCreateNormalisesChildren(t *testing.T) {
	repo := &memUniversityRepo{rows: map[string]*models.University{}}
	svc := NewUniversityService(repo, nil, nil)
	deadline := "2026-06-30"

	uni, err := svc.Create(context.Background(), dto.UniversityRequest{
		Name:     " University of Sydney ",
		Country:  "Australia",
		Currency: "aud",
		Courses:  []dto.UniversityCourseRequest{{Name: "MIT", Currency: "aud"}},
		Intakes:  []dto.UniversityIntakeRequest{{Month: "July", Deadline: &deadline}},
	})
	require.NoError(t, err)
	assert.Equal(t, "University of Sydney", uni.Name)
	assert.Equal(t, "AUD", uni.Currency)
	assert.Equal(t, "AUD", uni.Courses[0].Currency)
	require.NotNil(t, uni.Intakes[0].Deadline)
	assert.Equal(t, 30, uni.Intakes[0].Deadline.Day())
}

func TestUniversityCreateRejectsBadDeadline(t *testing.T) {
	svc := NewUniversityService(&memUniversityRepo{rows: map[string]*models.University{}}, nil, nil)
	bad := "30/06/2026"
	_, err := svc.Create(context.Background(), dto.UniversityRequest{
		Name:    "UNSW",
		Country: "Australia",
		Intakes: []dto.UniversityIntakeRequest{{Month: "July", Deadline: &bad}},
	})
	appErr := requireCode(t, err, "VALIDATION_ERROR")
	require.NotEmpty(t, appErr.Details)
	assert.Equal(t, "intakes[0].deadline", appErr.Details[0].Field)
}

func TestUniversityCreateRequiresName(t *testing.T) {
	svc := NewUniversityService(&memUniversityRepo{rows: map[string]*models.University{}}, nil, nil)
	_, err := svc.Create(context.Background(), dto.UniversityRequest{Country: "Australia"})
	requireCode(t, err, "VALIDATION_ERROR")
}

func TestUniversityGetMissing(t *testing.T) {
	svc := NewUniversityService(&memUniversityRepo{rows: map[string]*models.University{}}, nil, nil)
	_, err := svc.Get(context.Background(), "nope")
	requireCode(t, err, "NOT_FOUND")
}
