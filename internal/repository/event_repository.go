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

const eventColumns = `e.id, e.name, e.type, e.date, e.time, e.venue, e.city, e.counselor_id, e.notes, e.created_by,
e.updated_by, e.created_at, e.updated_at`

const registrationColumns = `id, event_id, name, email, phone, city, program, status, converted_lead_id, created_at, updated_at`

// EventRepository provides database access for events and their registrations.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new instance of EventRepository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// List returns events ordered by date.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	var conditions []string
	var args []interface{}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("e.type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	if filter.City != "" {
		conditions = append(conditions, fmt.Sprintf("e.city = $%d", len(args)+1))
		args = append(args, filter.City)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("e.date >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("e.date < $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	where := whereClause(conditions)
	page, size := models.NormalizePage(filter.Page, filter.PageSize)
	listQuery := fmt.Sprintf("SELECT %s FROM events e%s ORDER BY e.date ASC LIMIT %d OFFSET %d", eventColumns, where, size, (page-1)*size)

	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM events e%s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}
	return events, total, nil
}

// FindByID returns an event.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	if err := r.db.GetContext(ctx, &event, fmt.Sprintf("SELECT %s FROM events e WHERE e.id = $1", eventColumns), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	return &event, nil
}

// Create inserts an event.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	const query = `INSERT INTO events (id, name, type, date, time, venue, city, counselor_id, notes, created_by, updated_by, created_at, updated_at)
VALUES (:id, :name, :type, :date, :time, :venue, :city, :counselor_id, :notes, :created_by, :updated_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Update persists every mutable column of event.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now().UTC()
	const query = `UPDATE events SET name = :name, type = :type, date = :date, time = :time, venue = :venue, city = :city,
counselor_id = :counselor_id, notes = :notes, updated_by = :updated_by, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, event)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an event and its registrations.
func (r *EventRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete event: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete event rows affected: %w", err)
	}
	return rows > 0, nil
}

// ListRegistrations returns the registrations of an event in sign-up order.
func (r *EventRepository) ListRegistrations(ctx context.Context, eventID string) ([]models.EventRegistration, error) {
	query := fmt.Sprintf("SELECT %s FROM event_registrations WHERE event_id = $1 ORDER BY created_at ASC", registrationColumns)
	regs := []models.EventRegistration{}
	if err := r.db.SelectContext(ctx, &regs, query, eventID); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}

// FindRegistration returns a registration of eventID.
func (r *EventRepository) FindRegistration(ctx context.Context, eventID, id string) (*models.EventRegistration, error) {
	query := fmt.Sprintf("SELECT %s FROM event_registrations WHERE event_id = $1 AND id = $2", registrationColumns)
	var reg models.EventRegistration
	if err := r.db.GetContext(ctx, &reg, query, eventID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return &reg, nil
}

// CreateRegistration inserts a registration.
func (r *EventRepository) CreateRegistration(ctx context.Context, reg *models.EventRegistration) error {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	if reg.Status == "" {
		reg.Status = models.RegistrationRegistered
	}
	now := time.Now().UTC()
	reg.CreatedAt = now
	reg.UpdatedAt = now

	const query = `INSERT INTO event_registrations (id, event_id, name, email, phone, city, program, status, converted_lead_id, created_at, updated_at)
VALUES (:id, :event_id, :name, :email, :phone, :city, :program, :status, :converted_lead_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reg); err != nil {
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

// MarkConverted links a registration to the lead created from it.
func (r *EventRepository) MarkConverted(ctx context.Context, exec sqlx.ExtContext, id, leadID string) error {
	const query = `UPDATE event_registrations SET status = $2, converted_lead_id = $3, updated_at = $4 WHERE id = $1`
	if _, err := execOr(r.db, exec).ExecContext(ctx, query, id, models.RegistrationConverted, leadID, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark registration converted: %w", err)
	}
	return nil
}
