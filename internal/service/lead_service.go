package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/educrm-api/internal/dto"
	"github.com/noah-isme/educrm-api/internal/models"
	"github.com/noah-isme/educrm-api/internal/workflow"
	appErrors "github.com/noah-isme/educrm-api/pkg/errors"
	"github.com/noah-isme/educrm-api/pkg/validation"
)

const searchLimit = 50

type leadRepository interface {
	List(ctx context.Context, filter models.LeadFilter, scope models.Scope) ([]models.Lead, int, error)
	Search(ctx context.Context, q string, scope models.Scope, limit int) ([]models.Lead, error)
	FindByID(ctx context.Context, id string) (*models.Lead, error)
	Create(ctx context.Context, exec sqlx.ExtContext, lead *models.Lead) error
	Update(ctx context.Context, lead *models.Lead) error
	Delete(ctx context.Context, id string) (bool, error)
}

// LeadService implements lead use cases.
type LeadService struct {
	repo       leadRepository
	activities *ActivityService
	checker    *workflow.Checker
	cache      *CacheService
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
}

// LeadServiceParams groups constructor dependencies.
type LeadServiceParams struct {
	Repo       leadRepository
	Activities *ActivityService
	Checker    *workflow.Checker
	Cache      *CacheService
	Metrics    *MetricsService
	Validator  *validator.Validate
	Logger     *zap.Logger
}

// NewLeadService constructs a LeadService.
func NewLeadService(params LeadServiceParams) *LeadService {
	if params.Validator == nil {
		params.Validator = validation.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Checker == nil {
		params.Checker = workflow.NewChecker(workflow.ModeFlag, params.Logger)
	}
	return &LeadService{
		repo:       params.Repo,
		activities: params.Activities,
		checker:    params.Checker,
		cache:      params.Cache,
		metrics:    params.Metrics,
		validator:  params.Validator,
		logger:     params.Logger,
	}
}

// List returns unconverted leads visible to scope.
func (s *LeadService) List(ctx context.Context, filter models.LeadFilter, scope models.Scope) ([]models.Lead, *models.Pagination, error) {
	leads, total, err := s.repo.List(ctx, filter, scope)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leads")
	}
	return leads, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Search matches leads by name, email, program or country.
func (s *LeadService) Search(ctx context.Context, q string, scope models.Scope) ([]models.Lead, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []models.Lead{}, nil
	}
	leads, err := s.repo.Search(ctx, q, scope, searchLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search leads")
	}
	return leads, nil
}

// Get returns a lead visible to scope.
func (s *LeadService) Get(ctx context.Context, id string, scope models.Scope) (*models.Lead, error) {
	lead, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadFailure(err, "lead")
	}
	if err := visible(scope, lead, "lead"); err != nil {
		return nil, err
	}
	return lead, nil
}

// Create stores a new lead and its creation activity.
func (s *LeadService) Create(ctx context.Context, req dto.CreateLeadRequest, scope models.Scope) (*models.Lead, error) {
	if err := validation.Struct(s.validator, req, "invalid lead payload"); err != nil {
		return nil, err
	}
	followUp, err := optionalDate("followUpAt", req.FollowUpAt)
	if err != nil {
		return nil, err
	}
	status := nonEmpty(req.Status, string(models.LeadStatusNew))
	if _, err := s.checker.Check(ctx, models.EntityLead, "", status); err != nil {
		return nil, err
	}

	lead := &models.Lead{
		Name:                strings.TrimSpace(req.Name),
		Email:               strings.TrimSpace(req.Email),
		Phone:               req.Phone,
		City:                req.City,
		Countries:           req.Countries,
		Program:             req.Program,
		Source:              req.Source,
		Type:                req.Type,
		Status:              models.LeadStatus(status),
		CounselorID:         defaultCounselor(req.CounselorID, scope),
		Branch:              req.Branch,
		Region:              req.Region,
		IsLost:              status == string(models.LeadStatusLost),
		Notes:               req.Notes,
		FollowUpAt:          followUp,
		EventRegistrationID: req.EventRegistrationID,
		CreatedBy:           scope.Actor(),
		UpdatedBy:           scope.Actor(),
	}
	if err := s.repo.Create(ctx, nil, lead); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lead")
	}

	if err := s.activities.Record(ctx, nil, newActivity(models.EntityLead, lead.ID, models.ActivityCreated, "Lead created", scope)); err != nil {
		s.logger.Warn("failed to record lead creation activity", zap.String("lead_id", lead.ID), zap.Error(err))
	}
	s.cache.Invalidate(ctx, dashboardCachePattern)
	return lead, nil
}

// Update applies the non-nil fields of req and records one activity per changed field.
func (s *LeadService) Update(ctx context.Context, id string, req dto.UpdateLeadRequest, scope models.Scope) (*models.Lead, error) {
	if err := validation.Struct(s.validator, req, "invalid lead payload"); err != nil {
		return nil, err
	}
	lead, err := s.Get(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	before := *lead

	setString(&lead.Name, req.Name)
	setString(&lead.Email, req.Email)
	setString(&lead.Phone, req.Phone)
	setString(&lead.City, req.City)
	if req.Countries != nil {
		lead.Countries = *req.Countries
	}
	setString(&lead.Program, req.Program)
	setString(&lead.Source, req.Source)
	setString(&lead.Type, req.Type)
	setOptional(&lead.CounselorID, req.CounselorID)
	setString(&lead.Branch, req.Branch)
	setString(&lead.Region, req.Region)
	setBool(&lead.IsLost, req.IsLost)
	setOptional(&lead.LostReason, req.LostReason)
	setString(&lead.Notes, req.Notes)
	if req.FollowUpAt != nil {
		if lead.FollowUpAt, err = optionalDate("followUpAt", req.FollowUpAt); err != nil {
			return nil, err
		}
	}

	var decision workflow.Decision
	if req.Status != nil {
		if decision, err = s.transition(ctx, string(before.Status), *req.Status); err != nil {
			return nil, err
		}
		if decision.Changed {
			lead.Status = models.LeadStatus(*req.Status)
		}
	}

	return s.persist(ctx, &before, lead, decision, scope)
}

// SetStatus moves a lead to status after a transition check.
func (s *LeadService) SetStatus(ctx context.Context, id string, req dto.LeadStatusRequest, scope models.Scope) (*models.Lead, error) {
	if err := validation.Struct(s.validator, req, "invalid status payload"); err != nil {
		return nil, err
	}
	status := req.Status
	return s.Update(ctx, id, dto.UpdateLeadRequest{Status: &status}, scope)
}

// MarkLost moves a lead to lost and stores the reason.
func (s *LeadService) MarkLost(ctx context.Context, id string, req dto.MarkLostRequest, scope models.Scope) (*models.Lead, error) {
	if err := validation.Struct(s.validator, req, "invalid lost payload"); err != nil {
		return nil, err
	}
	status := string(models.LeadStatusLost)
	lost := true
	reason := strings.TrimSpace(req.Reason)
	return s.Update(ctx, id, dto.UpdateLeadRequest{Status: &status, IsLost: &lost, LostReason: &reason}, scope)
}

// Delete removes a lead visible to scope.
func (s *LeadService) Delete(ctx context.Context, id string, scope models.Scope) error {
	if _, err := s.Get(ctx, id, scope); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete lead")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "lead not found")
	}
	s.cache.Invalidate(ctx, dashboardCachePattern)
	return nil
}

func (s *LeadService) transition(ctx context.Context, from, to string) (workflow.Decision, error) {
	decision, err := s.checker.Check(ctx, models.EntityLead, from, to)
	recordTransition(s.metrics, models.EntityLead, decision, err)
	return decision, err
}

func (s *LeadService) persist(ctx context.Context, before, lead *models.Lead, decision workflow.Decision, scope models.Scope) (*models.Lead, error) {
	changes := diffFields(before, lead)
	if len(changes) == 0 {
		return lead, nil
	}
	lead.UpdatedBy = scope.Actor()
	if err := s.repo.Update(ctx, lead); err != nil {
		return nil, saveFailure(err, "lead")
	}
	activities := changeActivities(models.EntityLead, lead.ID, changes, "status", decision.Flagged, scope)
	if err := s.activities.Record(ctx, nil, activities...); err != nil {
		s.logger.Warn("failed to record lead change activities", zap.String("lead_id", lead.ID), zap.Error(err))
	}
	s.cache.Invalidate(ctx, dashboardCachePattern)
	return lead, nil
}
