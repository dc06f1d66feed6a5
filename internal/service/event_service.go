package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/educrm-api/internal/dto"
	"github.com/noah-isme/educrm-api/internal/models"
	appErrors "github.com/noah-isme/educrm-api/pkg/errors"
	"github.com/noah-isme/educrm-api/pkg/validation"
)

const eventLeadSource = "event"

type eventRepository interface {
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error)
	FindByID(ctx context.Context, id string) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) (bool, error)
	ListRegistrations(ctx context.Context, eventID string) ([]models.EventRegistration, error)
	FindRegistration(ctx context.Context, eventID, id string) (*models.EventRegistration, error)
	CreateRegistration(ctx context.Context, reg *models.EventRegistration) error
	MarkConverted(ctx context.Context, exec sqlx.ExtContext, id, leadID string) error
}

type leadCreator interface {
	Create(ctx context.Context, exec sqlx.ExtContext, lead *models.Lead) error
}

// EventService manages recruitment events and their registrations.
type EventService struct {
	repo       eventRepository
	leads      leadCreator
	activities *ActivityService
	tx         txProvider
	cache      *CacheService
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
}

// EventServiceParams groups constructor dependencies.
type EventServiceParams struct {
	Repo       eventRepository
	Leads      leadCreator
	Activities *ActivityService
	Tx         txProvider
	Cache      *CacheService
	Metrics    *MetricsService
	Validator  *validator.Validate
	Logger     *zap.Logger
}

// NewEventService constructs an EventService.
func NewEventService(params EventServiceParams) *EventService {
	if params.Validator == nil {
		params.Validator = validation.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	return &EventService{
		repo:       params.Repo,
		leads:      params.Leads,
		activities: params.Activities,
		tx:         params.Tx,
		cache:      params.Cache,
		metrics:    params.Metrics,
		validator:  params.Validator,
		logger:     params.Logger,
	}
}

// List returns events ordered by date.
func (s *EventService) List(ctx context.Context, filter models.EventFilter) ([]models.Event, *models.Pagination, error) {
	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	return events, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns one event.
func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadFailure(err, "event")
	}
	return event, nil
}

// Lookup resolves an event for timeline checks. Events are shared, so no row
// is returned for scoping.
func (s *EventService) Lookup(ctx context.Context, id string) (models.Assigned, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, nil
}

// Create stores an event.
func (s *EventService) Create(ctx context.Context, req dto.EventRequest, scope models.Scope) (*models.Event, error) {
	if err := validation.Struct(s.validator, req, "invalid event payload"); err != nil {
		return nil, err
	}
	date, err := validation.ParseDate("date", req.Date)
	if err != nil {
		return nil, validation.Bind(err, "invalid date")
	}

	event := &models.Event{
		Name:        strings.TrimSpace(req.Name),
		Type:        req.Type,
		Date:        date,
		Time:        req.Time,
		Venue:       req.Venue,
		City:        req.City,
		CounselorID: defaultCounselor(req.CounselorID, scope),
		Notes:       req.Notes,
		CreatedBy:   scope.Actor(),
		UpdatedBy:   scope.Actor(),
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	if err := s.activities.Record(ctx, nil, newActivity(models.EntityEvent, event.ID, models.ActivityCreated, "Event created", scope)); err != nil {
		s.logger.Warn("failed to record event activity", zap.String("event_id", event.ID), zap.Error(err))
	}
	s.cache.Invalidate(ctx, dashboardCachePattern)
	return event, nil
}

// Update applies a partial update and records one activity per changed field.
func (s *EventService) Update(ctx context.Context, id string, req dto.UpdateEventRequest, scope models.Scope) (*models.Event, error) {
	if err := validation.Struct(s.validator, req, "invalid event payload"); err != nil {
		return nil, err
	}
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *event

	setString(&event.Name, req.Name)
	setString(&event.Type, req.Type)
	setString(&event.Time, req.Time)
	setString(&event.Venue, req.Venue)
	setString(&event.City, req.City)
	setString(&event.Notes, req.Notes)
	setOptional(&event.CounselorID, req.CounselorID)
	if req.Date != nil {
		date, err := validation.ParseDate("date", *req.Date)
		if err != nil {
			return nil, validation.Bind(err, "invalid date")
		}
		event.Date = date
	}

	changes := diffFields(&before, event)
	if len(changes) == 0 {
		return event, nil
	}
	event.UpdatedBy = scope.Actor()
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, saveFailure(err, "event")
	}
	if err := s.activities.Record(ctx, nil, changeActivities(models.EntityEvent, event.ID, changes, "", false, scope)...); err != nil {
		s.logger.Warn("failed to record event change activities", zap.String("event_id", event.ID), zap.Error(err))
	}
	s.cache.Invalidate(ctx, dashboardCachePattern)
	return event, nil
}

// Delete removes an event and, through the schema, its registrations.
func (s *EventService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	s.cache.Invalidate(ctx, dashboardCachePattern)
	return nil
}

// Registrations lists the sign-ups of an event.
func (s *EventService) Registrations(ctx context.Context, eventID string) ([]models.EventRegistration, error) {
	if _, err := s.Get(ctx, eventID); err != nil {
		return nil, err
	}
	regs, err := s.repo.ListRegistrations(ctx, eventID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}
	return regs, nil
}

// Register signs a person up for an event.
func (s *EventService) Register(ctx context.Context, eventID string, req dto.RegistrationRequest) (*models.EventRegistration, error) {
	if err := validation.Struct(s.validator, req, "invalid registration payload"); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, eventID); err != nil {
		return nil, err
	}
	reg := &models.EventRegistration{
		EventID: eventID,
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:   req.Phone,
		City:    req.City,
		Program: req.Program,
		Status:  models.RegistrationRegistered,
	}
	if err := s.repo.CreateRegistration(ctx, reg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create registration")
	}
	return reg, nil
}

// ConvertRegistration creates a lead from a registration. The lead insert, the
// registration link and the activities commit together.
func (s *EventService) ConvertRegistration(ctx context.Context, eventID, registrationID string, req dto.ConvertRegistrationRequest, scope models.Scope) (lead *models.Lead, err error) {
	if err := validation.Struct(s.validator, req, "invalid conversion payload"); err != nil {
		return nil, err
	}
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	reg, err := s.repo.FindRegistration(ctx, eventID, registrationID)
	if err != nil {
		return nil, loadFailure(err, "registration")
	}
	if reg.Status == models.RegistrationConverted || reg.ConvertedLeadID != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "registration already converted")
	}

	counselor := defaultCounselor(req.CounselorID, scope)
	if counselor == nil {
		counselor = event.CounselorID
	}
	lead = &models.Lead{
		Name:                reg.Name,
		Email:               reg.Email,
		Phone:               reg.Phone,
		City:                nonEmpty(reg.City, event.City),
		Program:             reg.Program,
		Source:              nonEmpty(req.Source, eventLeadSource),
		Status:              models.LeadStatusNew,
		CounselorID:         counselor,
		Branch:              req.Branch,
		EventRegistrationID: &reg.ID,
		CreatedBy:           scope.Actor(),
		UpdatedBy:           scope.Actor(),
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.leads.Create(ctx, tx, lead); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lead")
		return nil, err
	}
	if err = s.repo.MarkConverted(ctx, tx, reg.ID, lead.ID); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to link registration")
		return nil, err
	}
	if err = s.activities.Record(ctx, tx,
		newActivity(models.EntityLead, lead.ID, models.ActivityCreated, fmt.Sprintf("Lead created from event %s", event.Name), scope),
		newActivity(models.EntityEvent, event.ID, models.ActivityConverted, fmt.Sprintf("Registration %s converted to lead", reg.Name), scope),
	); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record conversion")
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit conversion")
		return nil, err
	}

	s.logger.Info("registration converted to lead",
		zap.String("event_id", event.ID),
		zap.String("registration_id", reg.ID),
		zap.String("lead_id", lead.ID),
	)
	s.metrics.RecordConversion("registration", models.EntityLead)
	s.cache.Invalidate(ctx, dashboardCachePattern)
	return lead, nil
}
