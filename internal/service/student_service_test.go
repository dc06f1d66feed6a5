package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/educrm-api/internal/dto"
	"github.com/noah-isme/educrm-api/internal/models"
	appErrors "github.com/noah-isme/educrm-api/pkg/errors"
)

type txProviderMock struct {
	db *sqlx.DB
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlx.NewDb(db, "sqlmock")}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

type mockStudentRepo struct {
	students  map[string]*models.Student
	createErr error
	txCreates int
	nextID    int
}

func newMockStudentRepo(students ...*models.Student) *mockStudentRepo {
	repo := &mockStudentRepo{students: map[string]*models.Student{}}
	for _, s := range students {
		repo.students[s.ID] = s
	}
	return repo
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter, scope models.Scope) ([]models.Student, int, error) {
	out := []models.Student{}
	for _, s := range m.students {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *mockStudentRepo) Search(ctx context.Context, q string, scope models.Scope, limit int) ([]models.Student, error) {
	return []models.Student{}, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	s, ok := m.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *s
	return &copy, nil
}

func (m *mockStudentRepo) FindByLeadID(ctx context.Context, leadID string) (*models.Student, error) {
	for _, s := range m.students {
		if s.LeadID != nil && *s.LeadID == leadID {
			copy := *s
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) Create(ctx context.Context, exec sqlx.ExtContext, student *models.Student) error {
	if m.createErr != nil {
		return m.createErr
	}
	if exec != nil {
		m.txCreates++
	}
	m.nextID++
	student.ID = fmt.Sprintf("student-%d", m.nextID)
	copy := *student
	m.students[student.ID] = &copy
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	copy := *student
	m.students[student.ID] = &copy
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := m.students[id]; !ok {
		return false, nil
	}
	delete(m.students, id)
	return true, nil
}

type studentFixture struct {
	svc        *StudentService
	repo       *mockStudentRepo
	activities *mockActivityRepo
	mock       sqlmock.Sqlmock
}

func newStudentFixture(t *testing.T, leads []*models.Lead, students ...*models.Student) studentFixture {
	tx, mock := newTxProviderMock(t)
	repo := newMockStudentRepo(students...)
	activities := &mockActivityRepo{}
	svc := NewStudentService(StudentServiceParams{
		Repo:       repo,
		Leads:      newMockLeadRepo(leads...),
		Activities: NewActivityService(ActivityServiceParams{Repo: activities}),
		Tx:         tx,
	})
	return studentFixture{svc: svc, repo: repo, activities: activities, mock: mock}
}

func TestConvertFromLeadCopiesLeadAndTimeline(t *testing.T) {
	counselor := "c-1"
	lead := &models.Lead{
		ID:          "l-1",
		Name:        "Jane Doe",
		Email:       "jane@example.com",
		Countries:   []string{"Canada", "UK"},
		Program:     "MBA",
		CounselorID: &counselor,
		Branch:      "Lagos",
	}
	f := newStudentFixture(t, []*models.Lead{lead})
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	student, err := f.svc.ConvertFromLead(context.Background(), dto.ConvertLeadRequest{LeadID: "l-1", Nationality: "Nigerian"}, counselorScope("c-1"))
	require.NoError(t, err)
	require.NoError(t, f.mock.ExpectationsWereMet())

	assert.Equal(t, "Jane Doe", student.Name)
	assert.Equal(t, "jane@example.com", student.Email)
	assert.Equal(t, "Canada", student.TargetCountry)
	assert.Equal(t, "MBA", student.TargetProgram)
	assert.Equal(t, "Lagos", student.Branch)
	assert.Equal(t, models.StudentStatusActive, student.Status)
	assert.Equal(t, "Open", student.StatusLabel)
	require.NotNil(t, student.LeadID)
	assert.Equal(t, "l-1", *student.LeadID)
	assert.Equal(t, 1, f.repo.txCreates)

	require.Len(t, f.activities.transfers, 1)
	assert.Equal(t, [4]string{models.EntityLead, "l-1", models.EntityStudent, student.ID}, f.activities.transfers[0])

	converted := f.activities.byType(models.ActivityConverted)
	require.Len(t, converted, 1)
	assert.Equal(t, student.ID, converted[0].EntityID)
	assert.Equal(t, "l-1", *converted[0].NewValue)
	assert.Len(t, f.activities.byType(models.ActivityCreated), 1)
	assert.Equal(t, 1, f.activities.txCreates)
}

func TestConvertFromLeadRejectsSecondConversion(t *testing.T) {
	leadID := "l-1"
	f := newStudentFixture(t, []*models.Lead{{ID: leadID, Name: "Jane", Email: "jane@example.com"}},
		&models.Student{ID: "s-1", LeadID: &leadID})

	_, err := f.svc.ConvertFromLead(context.Background(), dto.ConvertLeadRequest{LeadID: leadID}, adminScope())
	requireCode(t, err, appErrors.ErrConflict.Code)
	assert.Empty(t, f.activities.created)
}

func TestConvertFromLeadRollsBackOnFailure(t *testing.T) {
	f := newStudentFixture(t, []*models.Lead{{ID: "l-1", Name: "Jane", Email: "jane@example.com"}})
	f.repo.createErr = fmt.Errorf("insert failed")
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.ConvertFromLead(context.Background(), dto.ConvertLeadRequest{LeadID: "l-1"}, adminScope())
	requireCode(t, err, appErrors.ErrInternal.Code)
	require.NoError(t, f.mock.ExpectationsWereMet())
	assert.Empty(t, f.activities.transfers)
	assert.Empty(t, f.activities.created)
}

func TestConvertFromLeadMalformedLeadID(t *testing.T) {
	f := newStudentFixture(t, nil)
	f.svc.leads.(*mockLeadRepo).findErr = &pq.Error{Code: "22P02"}

	_, err := f.svc.ConvertFromLead(context.Background(), dto.ConvertLeadRequest{LeadID: "L1"}, adminScope())
	requireCode(t, err, appErrors.ErrNotFound.Code)
	assert.Empty(t, f.activities.created)
}

func TestConvertFromLeadConcurrentConversionConflicts(t *testing.T) {
	f := newStudentFixture(t, []*models.Lead{{ID: "l-1", Name: "Jane", Email: "jane@example.com"}})
	f.repo.createErr = &pq.Error{Code: "23505", Constraint: "idx_students_lead"}
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.ConvertFromLead(context.Background(), dto.ConvertLeadRequest{LeadID: "l-1"}, adminScope())
	appErr := requireCode(t, err, appErrors.ErrConflict.Code)
	assert.Equal(t, "lead already converted", appErr.Message)
	require.NoError(t, f.mock.ExpectationsWereMet())
	assert.Empty(t, f.activities.transfers)
}

func TestConvertFromLeadHiddenLead(t *testing.T) {
	owner := "c-1"
	f := newStudentFixture(t, []*models.Lead{{ID: "l-1", CounselorID: &owner}})

	_, err := f.svc.ConvertFromLead(context.Background(), dto.ConvertLeadRequest{LeadID: "l-1"}, counselorScope("c-2"))
	requireCode(t, err, appErrors.ErrAccessDenied.Code)
}

func TestStudentCreateAssignsOfficer(t *testing.T) {
	f := newStudentFixture(t, nil)
	scope := models.Scope{UserID: "o-1", Role: models.RoleAdmissionOfficer}

	student, err := f.svc.Create(context.Background(), dto.CreateStudentRequest{Name: "Sam", Email: "sam@example.com"}, scope)
	require.NoError(t, err)
	require.NotNil(t, student.AdmissionOfficerID)
	assert.Equal(t, "o-1", *student.AdmissionOfficerID)
	assert.Len(t, f.activities.byType(models.ActivityCreated), 1)
}

func TestStudentUpdateStatusActivity(t *testing.T) {
	f := newStudentFixture(t, nil, &models.Student{ID: "s-1", Name: "Sam", Status: models.StudentStatusActive})

	status := "enrolled"
	student, err := f.svc.Update(context.Background(), "s-1", dto.UpdateStudentRequest{Status: &status}, adminScope())
	require.NoError(t, err)
	assert.Equal(t, "Enrolled", student.StatusLabel)
	require.Len(t, f.activities.created, 1)
	assert.Equal(t, models.ActivityStatusChanged, f.activities.created[0].ActivityType)
}
