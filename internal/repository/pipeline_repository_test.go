package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/educrm-api/internal/models"
)

func TestPipelineLeadsAppliesFiltersAndScope(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPipelineRepository(db)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	filter := models.PipelineFilter{From: from, To: to, Branch: "Pokhara"}
	scope := models.Scope{UserID: "c1", Role: models.RoleCounselor}

	mock.ExpectQuery(regexp.QuoteMeta("FROM leads l WHERE l.created_at >= $1 AND l.created_at < $2 AND l.branch = $3 AND l.counselor_id = $4")).
		WithArgs(from, to, "Pokhara", "c1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "source", "branch", "counselor_id"}).
			AddRow("new", "web", "Pokhara", "c1").
			AddRow("lost", "fair", "Pokhara", "c1"))

	facts, err := repo.Leads(context.Background(), filter, scope)
	require.NoError(t, err)
	assert.Len(t, facts, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPipelineAdmissionsSkipBranchFilter(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPipelineRepository(db)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	mock.ExpectQuery(regexp.QuoteMeta("FROM admissions ad WHERE ad.created_at >= $1 AND ad.created_at < $2 AND ad.admission_officer_id = $3")).
		WithArgs(from, to, "o1").
		WillReturnRows(sqlmock.NewRows([]string{"visa_status"}).AddRow("approved"))

	facts, err := repo.Admissions(context.Background(), models.PipelineFilter{From: from, To: to, Branch: "ignored"}, models.Scope{UserID: "o1", Role: models.RoleAdmissionOfficer})
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, "approved", facts[0].VisaStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}
