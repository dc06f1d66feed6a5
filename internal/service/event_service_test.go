package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/educrm-api/internal/dto"
	"github.com/noah-isme/educrm-api/internal/models"
	appErrors "github.com/noah-isme/educrm-api/pkg/errors"
)

type mockEventRepo struct {
	events    map[string]*models.Event
	regs      map[string]*models.EventRegistration
	converted map[string]string
}

func newMockEventRepo() *mockEventRepo {
	organiser := "c-1"
	return &mockEventRepo{
		events: map[string]*models.Event{
			"e-1": {ID: "e-1", Name: "Lagos Study Fair", City: "Lagos", Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), CounselorID: &organiser},
		},
		regs: map[string]*models.EventRegistration{
			"r-1": {ID: "r-1", EventID: "e-1", Name: "Ade", Email: "ade@example.com", Program: "MBA", Status: models.RegistrationRegistered},
		},
		converted: map[string]string{},
	}
}

func (m *mockEventRepo) List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	return []models.Event{}, 0, nil
}

func (m *mockEventRepo) FindByID(ctx context.Context, id string) (*models.Event, error) {
	e, ok := m.events[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *e
	return &copy, nil
}

func (m *mockEventRepo) Create(ctx context.Context, event *models.Event) error {
	event.ID = "e-new"
	copy := *event
	m.events[event.ID] = &copy
	return nil
}

func (m *mockEventRepo) Update(ctx context.Context, event *models.Event) error {
	copy := *event
	m.events[event.ID] = &copy
	return nil
}

func (m *mockEventRepo) Delete(ctx context.Context, id string) (bool, error) {
	_, ok := m.events[id]
	delete(m.events, id)
	return ok, nil
}

func (m *mockEventRepo) ListRegistrations(ctx context.Context, eventID string) ([]models.EventRegistration, error) {
	out := []models.EventRegistration{}
	for _, r := range m.regs {
		if r.EventID == eventID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockEventRepo) FindRegistration(ctx context.Context, eventID, id string) (*models.EventRegistration, error) {
	r, ok := m.regs[id]
	if !ok || r.EventID != eventID {
		return nil, sql.ErrNoRows
	}
	copy := *r
	return &copy, nil
}

func (m *mockEventRepo) CreateRegistration(ctx context.Context, reg *models.EventRegistration) error {
	reg.ID = "r-new"
	copy := *reg
	m.regs[reg.ID] = &copy
	return nil
}

func (m *mockEventRepo) MarkConverted(ctx context.Context, exec sqlx.ExtContext, id, leadID string) error {
	m.converted[id] = leadID
	m.regs[id].Status = models.RegistrationConverted
	m.regs[id].ConvertedLeadID = &leadID
	return nil
}

func TestConvertRegistrationCreatesLead(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	events := newMockEventRepo()
	leads := newMockLeadRepo()
	activities := &mockActivityRepo{}
	svc := NewEventService(EventServiceParams{
		Repo:       events,
		Leads:      leads,
		Activities: NewActivityService(ActivityServiceParams{Repo: activities}),
		Tx:         tx,
	})
	mock.ExpectBegin()
	mock.ExpectCommit()

	lead, err := svc.ConvertRegistration(context.Background(), "e-1", "r-1", dto.ConvertRegistrationRequest{}, adminScope())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, "Ade", lead.Name)
	assert.Equal(t, "Lagos", lead.City)
	assert.Equal(t, "event", lead.Source)
	assert.Equal(t, models.LeadStatusNew, lead.Status)
	assert.Equal(t, "c-1", *lead.CounselorID)
	assert.Equal(t, "r-1", *lead.EventRegistrationID)
	assert.Equal(t, lead.ID, events.converted["r-1"])
	assert.Contains(t, leads.leads, lead.ID)
	assert.Len(t, activities.created, 2)

	_, err = svc.ConvertRegistration(context.Background(), "e-1", "r-1", dto.ConvertRegistrationRequest{}, adminScope())
	requireCode(t, err, appErrors.ErrConflict.Code)
}

func TestConvertRegistrationWrongEvent(t *testing.T) {
	events := newMockEventRepo()
	events.events["e-2"] = &models.Event{ID: "e-2"}
	svc := NewEventService(EventServiceParams{Repo: events, Leads: newMockLeadRepo()})

	_, err := svc.ConvertRegistration(context.Background(), "e-2", "r-1", dto.ConvertRegistrationRequest{}, adminScope())
	requireCode(t, err, appErrors.ErrNotFound.Code)
}

func TestEventCreateParsesDate(t *testing.T) {
	activities := &mockActivityRepo{}
	svc := NewEventService(EventServiceParams{Repo: newMockEventRepo(), Activities: NewActivityService(ActivityServiceParams{Repo: activities})})

	event, err := svc.Create(context.Background(), dto.EventRequest{Name: "Webinar", Date: "2024-05-10"}, counselorScope("c-3"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), event.Date)
	assert.Equal(t, "c-3", *event.CounselorID)
	assert.Len(t, activities.created, 1)

	_, err = svc.Create(context.Background(), dto.EventRequest{Name: "Webinar", Date: "May 10"}, adminScope())
	appErr := requireCode(t, err, appErrors.ErrValidation.Code)
	assert.Equal(t, "date", appErr.Details[0].Field)
}

func TestEventRegisterNormalisesEmail(t *testing.T) {
	svc := NewEventService(EventServiceParams{Repo: newMockEventRepo()})
	reg, err := svc.Register(context.Background(), "e-1", dto.RegistrationRequest{Name: "Bola", Email: "Bola@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "bola@example.com", reg.Email)
	assert.Equal(t, models.RegistrationRegistered, reg.Status)

	_, err = svc.Register(context.Background(), "missing", dto.RegistrationRequest{Name: "Bola", Email: "bola@example.com"})
	requireCode(t, err, appErrors.ErrNotFound.Code)
}

func TestEventLookupIsShared(t *testing.T) {
	svc := NewEventService(EventServiceParams{Repo: newMockEventRepo()})
	row, err := svc.Lookup(context.Background(), "e-1")
	require.NoError(t, err)
	assert.Nil(t, row)

	_, err = svc.Lookup(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
