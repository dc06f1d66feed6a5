package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/educrm-api/internal/models"
)

const studentColumns = `s.id, s.lead_id, s.name, s.email, s.phone, s.date_of_birth, s.nationality, s.target_country,
s.target_program, s.english_proficiency, s.highest_qualification, s.consultancy_fee_paid, s.scholarship, s.status,
s.counselor_id, s.admission_officer_id, s.branch, s.region, s.profile_picture, s.notes, s.created_by, s.updated_by,
s.created_at, s.updated_at`

// StudentRepository provides database access for students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new instance of StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students visible to scope with the total count.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter, scope models.Scope) ([]models.Student, int, error) {
	var conditions []string
	var args []interface{}

	if cond, arg, ok := scopeCondition(scope, "s", true, len(args)+1); ok {
		conditions = append(conditions, cond)
		args = append(args, arg)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("s.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Branch != "" {
		conditions = append(conditions, fmt.Sprintf("s.branch = $%d", len(args)+1))
		args = append(args, filter.Branch)
	}
	if filter.CounselorID != "" {
		conditions = append(conditions, fmt.Sprintf("s.counselor_id = $%d", len(args)+1))
		args = append(args, filter.CounselorID)
	}
	if filter.AdmissionOfficerID != "" {
		conditions = append(conditions, fmt.Sprintf("s.admission_officer_id = $%d", len(args)+1))
		args = append(args, filter.AdmissionOfficerID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(s.name ILIKE $%d ESCAPE '\\' OR s.email ILIKE $%d ESCAPE '\\')", len(args)+1, len(args)+1))
		args = append(args, likePattern(filter.Search))
	}

	where := whereClause(conditions)
	order := orderClause("s", filter.SortBy, filter.SortOrder, map[string]bool{
		"name": true, "status": true, "created_at": true, "updated_at": true,
	}, "created_at")
	page, size := models.NormalizePage(filter.Page, filter.PageSize)

	listQuery := fmt.Sprintf("SELECT %s FROM students s%s %s LIMIT %d OFFSET %d", studentColumns, where, order, size, (page-1)*size)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM students s%s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// Search matches name, email, target program and target country.
func (r *StudentRepository) Search(ctx context.Context, q string, scope models.Scope, limit int) ([]models.Student, error) {
	args := []interface{}{likePattern(q)}
	conditions := []string{`(s.name ILIKE $1 ESCAPE '\' OR s.email ILIKE $1 ESCAPE '\' OR s.target_program ILIKE $1 ESCAPE '\' OR s.target_country ILIKE $1 ESCAPE '\')`}
	if cond, arg, ok := scopeCondition(scope, "s", true, len(args)+1); ok {
		conditions = append(conditions, cond)
		args = append(args, arg)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := fmt.Sprintf("SELECT %s FROM students s%s ORDER BY s.created_at DESC LIMIT %d", studentColumns, whereClause(conditions), limit)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("search students: %w", err)
	}
	return students, nil
}

// FindByID returns a student regardless of scope.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students s WHERE s.id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// FindByLeadID returns the student converted from leadID.
func (r *StudentRepository) FindByLeadID(ctx context.Context, leadID string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students s WHERE s.lead_id = $1 LIMIT 1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, leadID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student by lead: %w", err)
	}
	return &student, nil
}

// Create inserts a student, filling id and timestamps.
func (r *StudentRepository) Create(ctx context.Context, exec sqlx.ExtContext, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.Status == "" {
		student.Status = models.StudentStatusActive
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now

	const query = `INSERT INTO students (id, lead_id, name, email, phone, date_of_birth, nationality, target_country, target_program,
english_proficiency, highest_qualification, consultancy_fee_paid, scholarship, status, counselor_id, admission_officer_id,
branch, region, profile_picture, notes, created_by, updated_by, created_at, updated_at)
VALUES (:id, :lead_id, :name, :email, :phone, :date_of_birth, :nationality, :target_country, :target_program,
:english_proficiency, :highest_qualification, :consultancy_fee_paid, :scholarship, :status, :counselor_id, :admission_officer_id,
:branch, :region, :profile_picture, :notes, :created_by, :updated_by, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, execOr(r.db, exec), query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update persists every mutable column of student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET name = :name, email = :email, phone = :phone, date_of_birth = :date_of_birth,
nationality = :nationality, target_country = :target_country, target_program = :target_program,
english_proficiency = :english_proficiency, highest_qualification = :highest_qualification,
consultancy_fee_paid = :consultancy_fee_paid, scholarship = :scholarship, status = :status, counselor_id = :counselor_id,
admission_officer_id = :admission_officer_id, branch = :branch, region = :region, profile_picture = :profile_picture,
notes = :notes, updated_by = :updated_by, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, student)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a student and reports whether a row existed.
func (r *StudentRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete student: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete student rows affected: %w", err)
	}
	return rows > 0, nil
}
