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

const admissionColumns = `ad.id, ad.application_id, ad.student_id, ad.university, ad.program, ad.tuition_fee,
ad.initial_deposit, ad.deposit_date, ad.full_tuition_paid, ad.visa_status, ad.visa_date, ad.scholarship_amount,
ad.decision_date, ad.notes, ad.counselor_id, ad.admission_officer_id, ad.created_by, ad.updated_by, ad.created_at,
ad.updated_at`

// AdmissionRepository provides database access for admissions.
type AdmissionRepository struct {
	db *sqlx.DB
}

// NewAdmissionRepository creates a new instance of AdmissionRepository.
func NewAdmissionRepository(db *sqlx.DB) *AdmissionRepository {
	return &AdmissionRepository{db: db}
}

// List returns admissions visible to scope with the total count.
func (r *AdmissionRepository) List(ctx context.Context, filter models.AdmissionFilter, scope models.Scope) ([]models.Admission, int, error) {
	var conditions []string
	var args []interface{}

	if cond, arg, ok := scopeCondition(scope, "ad", true, len(args)+1); ok {
		conditions = append(conditions, cond)
		args = append(args, arg)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("ad.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.ApplicationID != "" {
		conditions = append(conditions, fmt.Sprintf("ad.application_id = $%d", len(args)+1))
		args = append(args, filter.ApplicationID)
	}
	if filter.VisaStatus != "" {
		conditions = append(conditions, fmt.Sprintf("ad.visa_status = $%d", len(args)+1))
		args = append(args, filter.VisaStatus)
	}

	where := whereClause(conditions)
	order := orderClause("ad", filter.SortBy, filter.SortOrder, map[string]bool{
		"visa_status": true, "decision_date": true, "created_at": true, "updated_at": true,
	}, "created_at")
	page, size := models.NormalizePage(filter.Page, filter.PageSize)

	listQuery := fmt.Sprintf("SELECT %s FROM admissions ad%s %s LIMIT %d OFFSET %d", admissionColumns, where, order, size, (page-1)*size)
	var admissions []models.Admission
	if err := r.db.SelectContext(ctx, &admissions, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list admissions: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM admissions ad%s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count admissions: %w", err)
	}
	return admissions, total, nil
}

// FindByID returns an admission regardless of scope.
func (r *AdmissionRepository) FindByID(ctx context.Context, id string) (*models.Admission, error) {
	query := fmt.Sprintf("SELECT %s FROM admissions ad WHERE ad.id = $1", admissionColumns)
	var admission models.Admission
	if err := r.db.GetContext(ctx, &admission, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find admission: %w", err)
	}
	return &admission, nil
}

// Create inserts an admission, filling id and timestamps.
func (r *AdmissionRepository) Create(ctx context.Context, admission *models.Admission) error {
	if admission.ID == "" {
		admission.ID = uuid.NewString()
	}
	if admission.VisaStatus == "" {
		admission.VisaStatus = models.VisaStatusNotApplied
	}
	now := time.Now().UTC()
	if admission.CreatedAt.IsZero() {
		admission.CreatedAt = now
	}
	admission.UpdatedAt = now

	const query = `INSERT INTO admissions (id, application_id, student_id, university, program, tuition_fee, initial_deposit,
deposit_date, full_tuition_paid, visa_status, visa_date, scholarship_amount, decision_date, notes, counselor_id,
admission_officer_id, created_by, updated_by, created_at, updated_at)
VALUES (:id, :application_id, :student_id, :university, :program, :tuition_fee, :initial_deposit,
:deposit_date, :full_tuition_paid, :visa_status, :visa_date, :scholarship_amount, :decision_date, :notes, :counselor_id,
:admission_officer_id, :created_by, :updated_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, admission); err != nil {
		return fmt.Errorf("create admission: %w", err)
	}
	return nil
}

// Update persists every mutable column of admission.
func (r *AdmissionRepository) Update(ctx context.Context, admission *models.Admission) error {
	admission.UpdatedAt = time.Now().UTC()
	const query = `UPDATE admissions SET university = :university, program = :program, tuition_fee = :tuition_fee,
initial_deposit = :initial_deposit, deposit_date = :deposit_date, full_tuition_paid = :full_tuition_paid,
visa_status = :visa_status, visa_date = :visa_date, scholarship_amount = :scholarship_amount,
decision_date = :decision_date, notes = :notes, counselor_id = :counselor_id,
admission_officer_id = :admission_officer_id, updated_by = :updated_by, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, admission)
	if err != nil {
		return fmt.Errorf("update admission: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an admission and reports whether a row existed.
func (r *AdmissionRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM admissions WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete admission: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete admission rows affected: %w", err)
	}
	return rows > 0, nil
}
