package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/educrm-api/internal/models"
)

// PipelineRepository loads the narrow projections used for dashboard and
// report tallies. Rows are filtered by created_at within [From, To).
type PipelineRepository struct {
	db *sqlx.DB
}

// NewPipelineRepository creates a new instance of PipelineRepository.
func NewPipelineRepository(db *sqlx.DB) *PipelineRepository {
	return &PipelineRepository{db: db}
}

type factQuery struct {
	conditions []string
	args       []interface{}
}

func newFactQuery(alias string, filter models.PipelineFilter, scope models.Scope, tracksOfficer, hasBranch bool) *factQuery {
	q := &factQuery{}
	q.add(alias+".created_at >= $%d", filter.From)
	q.add(alias+".created_at < $%d", filter.To)
	if hasBranch && filter.Branch != "" {
		q.add(alias+".branch = $%d", filter.Branch)
	}
	if filter.CounselorID != "" {
		q.add(alias+".counselor_id = $%d", filter.CounselorID)
	}
	if cond, arg, ok := scopeCondition(scope, alias, tracksOfficer, len(q.args)+1); ok {
		q.conditions = append(q.conditions, cond)
		q.args = append(q.args, arg)
	}
	return q
}

func (q *factQuery) add(format string, arg interface{}) {
	q.conditions = append(q.conditions, fmt.Sprintf(format, len(q.args)+1))
	q.args = append(q.args, arg)
}

// Leads returns lead facts in range, converted leads included.
func (r *PipelineRepository) Leads(ctx context.Context, filter models.PipelineFilter, scope models.Scope) ([]models.LeadFact, error) {
	q := newFactQuery("l", filter, scope, false, true)
	query := "SELECT l.status, l.source, l.branch, l.counselor_id FROM leads l" + whereClause(q.conditions)
	facts := []models.LeadFact{}
	if err := r.db.SelectContext(ctx, &facts, query, q.args...); err != nil {
		return nil, fmt.Errorf("load lead facts: %w", err)
	}
	return facts, nil
}

// Students returns student facts in range.
func (r *PipelineRepository) Students(ctx context.Context, filter models.PipelineFilter, scope models.Scope) ([]models.StudentFact, error) {
	q := newFactQuery("s", filter, scope, true, true)
	query := "SELECT s.status, s.branch, s.target_country FROM students s" + whereClause(q.conditions)
	facts := []models.StudentFact{}
	if err := r.db.SelectContext(ctx, &facts, query, q.args...); err != nil {
		return nil, fmt.Errorf("load student facts: %w", err)
	}
	return facts, nil
}

// Applications returns application facts in range.
func (r *PipelineRepository) Applications(ctx context.Context, filter models.PipelineFilter, scope models.Scope) ([]models.ApplicationFact, error) {
	q := newFactQuery("a", filter, scope, true, false)
	query := "SELECT a.university, a.country, a.app_status FROM applications a" + whereClause(q.conditions)
	facts := []models.ApplicationFact{}
	if err := r.db.SelectContext(ctx, &facts, query, q.args...); err != nil {
		return nil, fmt.Errorf("load application facts: %w", err)
	}
	return facts, nil
}

// Admissions returns admission facts in range.
func (r *PipelineRepository) Admissions(ctx context.Context, filter models.PipelineFilter, scope models.Scope) ([]models.AdmissionFact, error) {
	q := newFactQuery("ad", filter, scope, true, false)
	query := "SELECT ad.visa_status FROM admissions ad" + whereClause(q.conditions)
	facts := []models.AdmissionFact{}
	if err := r.db.SelectContext(ctx, &facts, query, q.args...); err != nil {
		return nil, fmt.Errorf("load admission facts: %w", err)
	}
	return facts, nil
}

// CountEvents counts events dated within the range.
func (r *PipelineRepository) CountEvents(ctx context.Context, filter models.PipelineFilter) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM events WHERE date >= $1 AND date < $2`, filter.From, filter.To); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return total, nil
}
