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

const applicationColumns = `a.id, a.student_id, a.university, a.program, a.course_type, a.country, a.intake, a.app_status,
a.case_status, a.channel_partner, a.drive_link, a.notes, a.counselor_id, a.admission_officer_id, a.created_by,
a.updated_by, a.created_at, a.updated_at`

// ApplicationRepository provides database access for applications.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository creates a new instance of ApplicationRepository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// List returns applications visible to scope with the total count.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter, scope models.Scope) ([]models.Application, int, error) {
	var conditions []string
	var args []interface{}

	if cond, arg, ok := scopeCondition(scope, "a", true, len(args)+1); ok {
		conditions = append(conditions, cond)
		args = append(args, arg)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("a.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.AppStatus != "" {
		conditions = append(conditions, fmt.Sprintf("a.app_status = $%d", len(args)+1))
		args = append(args, filter.AppStatus)
	}
	if filter.Country != "" {
		conditions = append(conditions, fmt.Sprintf("a.country = $%d", len(args)+1))
		args = append(args, filter.Country)
	}

	where := whereClause(conditions)
	order := orderClause("a", filter.SortBy, filter.SortOrder, map[string]bool{
		"university": true, "app_status": true, "created_at": true, "updated_at": true,
	}, "created_at")
	page, size := models.NormalizePage(filter.Page, filter.PageSize)

	listQuery := fmt.Sprintf("SELECT %s FROM applications a%s %s LIMIT %d OFFSET %d", applicationColumns, where, order, size, (page-1)*size)
	var apps []models.Application
	if err := r.db.SelectContext(ctx, &apps, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM applications a%s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}
	return apps, total, nil
}

// FindByID returns an application regardless of scope.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.Application, error) {
	query := fmt.Sprintf("SELECT %s FROM applications a WHERE a.id = $1", applicationColumns)
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find application: %w", err)
	}
	return &app, nil
}

// Create inserts an application, filling id and timestamps.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.AppStatus == "" {
		app.AppStatus = models.ApplicationStatusOpen
	}
	now := time.Now().UTC()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = now

	const query = `INSERT INTO applications (id, student_id, university, program, course_type, country, intake, app_status,
case_status, channel_partner, drive_link, notes, counselor_id, admission_officer_id, created_by, updated_by, created_at, updated_at)
VALUES (:id, :student_id, :university, :program, :course_type, :country, :intake, :app_status,
:case_status, :channel_partner, :drive_link, :notes, :counselor_id, :admission_officer_id, :created_by, :updated_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// Update persists every mutable column of app.
func (r *ApplicationRepository) Update(ctx context.Context, app *models.Application) error {
	app.UpdatedAt = time.Now().UTC()
	const query = `UPDATE applications SET university = :university, program = :program, course_type = :course_type,
country = :country, intake = :intake, app_status = :app_status, case_status = :case_status,
channel_partner = :channel_partner, drive_link = :drive_link, notes = :notes, counselor_id = :counselor_id,
admission_officer_id = :admission_officer_id, updated_by = :updated_by, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, app)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an application and reports whether a row existed.
func (r *ApplicationRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete application: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete application rows affected: %w", err)
	}
	return rows > 0, nil
}
