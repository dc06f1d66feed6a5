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

const leadColumns = `l.id, l.name, l.email, l.phone, l.city, l.countries, l.program, l.source, l.type, l.status,
l.counselor_id, l.branch, l.region, l.is_lost, l.lost_reason, l.notes, l.follow_up_at, l.event_registration_id,
l.created_by, l.updated_by, l.created_at, l.updated_at`

// notConverted hides leads that already have a student row.
const notConverted = `NOT EXISTS (SELECT 1 FROM students s WHERE s.lead_id = l.id)`

// LeadRepository provides database access for leads.
type LeadRepository struct {
	db *sqlx.DB
}

// NewLeadRepository creates a new instance of LeadRepository.
func NewLeadRepository(db *sqlx.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// List returns unconverted leads visible to scope with the total count.
func (r *LeadRepository) List(ctx context.Context, filter models.LeadFilter, scope models.Scope) ([]models.Lead, int, error) {
	conditions := []string{notConverted}
	var args []interface{}

	if cond, arg, ok := scopeCondition(scope, "l", false, len(args)+1); ok {
		conditions = append(conditions, cond)
		args = append(args, arg)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("l.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Source != "" {
		conditions = append(conditions, fmt.Sprintf("l.source = $%d", len(args)+1))
		args = append(args, filter.Source)
	}
	if filter.Branch != "" {
		conditions = append(conditions, fmt.Sprintf("l.branch = $%d", len(args)+1))
		args = append(args, filter.Branch)
	}
	if filter.CounselorID != "" {
		conditions = append(conditions, fmt.Sprintf("l.counselor_id = $%d", len(args)+1))
		args = append(args, filter.CounselorID)
	}
	if filter.IsLost != nil {
		conditions = append(conditions, fmt.Sprintf("l.is_lost = $%d", len(args)+1))
		args = append(args, *filter.IsLost)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(l.name ILIKE $%d ESCAPE '\\' OR l.email ILIKE $%d ESCAPE '\\')", len(args)+1, len(args)+1))
		args = append(args, likePattern(filter.Search))
	}

	where := whereClause(conditions)
	order := orderClause("l", filter.SortBy, filter.SortOrder, map[string]bool{
		"name": true, "status": true, "created_at": true, "updated_at": true, "follow_up_at": true,
	}, "created_at")
	page, size := models.NormalizePage(filter.Page, filter.PageSize)

	listQuery := fmt.Sprintf("SELECT %s FROM leads l%s %s LIMIT %d OFFSET %d", leadColumns, where, order, size, (page-1)*size)
	var leads []models.Lead
	if err := r.db.SelectContext(ctx, &leads, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM leads l%s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}
	return leads, total, nil
}

// Search matches name, email, program and countries case-insensitively.
func (r *LeadRepository) Search(ctx context.Context, q string, scope models.Scope, limit int) ([]models.Lead, error) {
	conditions := []string{notConverted}
	args := []interface{}{likePattern(q)}
	conditions = append(conditions, `(l.name ILIKE $1 ESCAPE '\' OR l.email ILIKE $1 ESCAPE '\' OR l.program ILIKE $1 ESCAPE '\' OR array_to_string(l.countries, ',') ILIKE $1 ESCAPE '\')`)
	if cond, arg, ok := scopeCondition(scope, "l", false, len(args)+1); ok {
		conditions = append(conditions, cond)
		args = append(args, arg)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := fmt.Sprintf("SELECT %s FROM leads l%s ORDER BY l.created_at DESC LIMIT %d", leadColumns, whereClause(conditions), limit)
	var leads []models.Lead
	if err := r.db.SelectContext(ctx, &leads, query, args...); err != nil {
		return nil, fmt.Errorf("search leads: %w", err)
	}
	return leads, nil
}

// FindByID returns a lead regardless of scope or conversion.
func (r *LeadRepository) FindByID(ctx context.Context, id string) (*models.Lead, error) {
	query := fmt.Sprintf("SELECT %s FROM leads l WHERE l.id = $1", leadColumns)
	var lead models.Lead
	if err := r.db.GetContext(ctx, &lead, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find lead: %w", err)
	}
	return &lead, nil
}

// Create inserts a lead, filling id and timestamps.
func (r *LeadRepository) Create(ctx context.Context, exec sqlx.ExtContext, lead *models.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if lead.Status == "" {
		lead.Status = models.LeadStatusNew
	}
	if lead.Countries == nil {
		lead.Countries = []string{}
	}
	now := time.Now().UTC()
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}
	lead.UpdatedAt = now

	const query = `INSERT INTO leads (id, name, email, phone, city, countries, program, source, type, status, counselor_id, branch, region,
is_lost, lost_reason, notes, follow_up_at, event_registration_id, created_by, updated_by, created_at, updated_at)
VALUES (:id, :name, :email, :phone, :city, :countries, :program, :source, :type, :status, :counselor_id, :branch, :region,
:is_lost, :lost_reason, :notes, :follow_up_at, :event_registration_id, :created_by, :updated_by, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, execOr(r.db, exec), query, lead); err != nil {
		return fmt.Errorf("create lead: %w", err)
	}
	return nil
}

// Update persists every mutable column of lead.
func (r *LeadRepository) Update(ctx context.Context, lead *models.Lead) error {
	lead.UpdatedAt = time.Now().UTC()
	const query = `UPDATE leads SET name = :name, email = :email, phone = :phone, city = :city, countries = :countries,
program = :program, source = :source, type = :type, status = :status, counselor_id = :counselor_id, branch = :branch,
region = :region, is_lost = :is_lost, lost_reason = :lost_reason, notes = :notes, follow_up_at = :follow_up_at,
updated_by = :updated_by, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, lead)
	if err != nil {
		return fmt.Errorf("update lead: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a lead and reports whether a row existed.
func (r *LeadRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete lead: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete lead rows affected: %w", err)
	}
	return rows > 0, nil
}
