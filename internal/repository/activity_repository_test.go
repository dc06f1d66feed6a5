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

var activityRowColumns = []string{"id", "entity_type", "entity_id", "activity_type", "field_name", "old_value", "new_value",
	"description", "flagged", "user_id", "user_name", "created_at"}

func TestActivityTransferCopiesRowsToTarget(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := sqlmock.NewRows(activityRowColumns).
		AddRow("a1", "lead", "L1", "created", nil, nil, nil, "Lead created", false, nil, "System", created).
		AddRow("a2", "lead", "L1", "updated", "status", "new", "qualified", "Status changed", false, nil, "Jane", created.Add(time.Hour))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM activities WHERE entity_type = $1 AND entity_id = $2 ORDER BY created_at ASC")).
		WithArgs("lead", "L1").
		WillReturnRows(rows)
	mock.ExpectExec("INSERT INTO activities").
		WithArgs(sqlmock.AnyArg(), "student", "S1", "created", nil, nil, nil, "Lead created", false, nil, "System", created).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO activities").
		WithArgs(sqlmock.AnyArg(), "student", "S1", "updated", "status", "new", "qualified", "Status changed", false, nil, "Jane", created.Add(time.Hour)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	n, err := repo.Transfer(context.Background(), tx, models.EntityLead, "L1", models.EntityStudent, "S1")
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityListByEntityNewestFirst(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE entity_type = $1 AND entity_id = $2 ORDER BY created_at DESC, id DESC")).
		WithArgs("lead", "L1").
		WillReturnRows(sqlmock.NewRows(activityRowColumns))

	activities, err := repo.ListByEntity(context.Background(), "lead", "L1")
	require.NoError(t, err)
	assert.NotNil(t, activities)
	assert.Empty(t, activities)
	assert.NoError(t, mock.ExpectationsWereMet())
}
