package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/educrm-api/internal/dto"
	"github.com/noah-isme/educrm-api/internal/models"
	"github.com/noah-isme/educrm-api/internal/workflow"
	appErrors "github.com/noah-isme/educrm-api/pkg/errors"
	"github.com/noah-isme/educrm-api/pkg/validation"
)

type applicationRepository interface {
	List(ctx context.Context, filter models.ApplicationFilter, scope models.Scope) ([]models.Application, int, error)
	FindByID(ctx context.Context, id string) (*models.Application, error)
	Create(ctx context.Context, app *models.Application) error
	Update(ctx context.Context, app *models.Application) error
	Delete(ctx context.Context, id string) (bool, error)
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// ApplicationService implements university application use cases.
type ApplicationService struct {
	repo       applicationRepository
	students   studentReader
	activities *ActivityService
	checker    *workflow.Checker
	cache      *CacheService
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
}

// ApplicationServiceParams groups constructor dependencies.
type ApplicationServiceParams struct {
	Repo       applicationRepository
	Students   studentReader
	Activities *ActivityService
	Checker    *workflow.Checker
	Cache      *CacheService
	Metrics    *MetricsService
	Validator  *validator.Validate
	Logger     *zap.Logger
}

// NewApplicationService constructs an ApplicationService.
func NewApplicationService(params ApplicationServiceParams) *ApplicationService {
	if params.Validator == nil {
		params.Validator = validation.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Checker == nil {
		params.Checker = workflow.NewChecker(workflow.ModeFlag, params.Logger)
	}
	return &ApplicationService{
		repo:       params.Repo,
		students:   params.Students,
		activities: params.Activities,
		checker:    params.Checker,
		cache:      params.Cache,
		metrics:    params.Metrics,
		validator:  params.Validator,
		logger:     params.Logger,
	}
}

// List returns applications visible to scope.
func (s *ApplicationService) List(ctx context.Context, filter models.ApplicationFilter, scope models.Scope) ([]models.Application, *models.Pagination, error) {
	apps, total, err := s.repo.List(ctx, filter, scope)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	return apps, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns an application visible to scope.
func (s *ApplicationService) Get(ctx context.Context, id string, scope models.Scope) (*models.Application, error) {
	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadFailure(err, "application")
	}
	if err := visible(scope, app, "application"); err != nil {
		return nil, err
	}
	return app, nil
}

// Create submits an application for an existing student.
func (s *ApplicationService) Create(ctx context.Context, req dto.CreateApplicationRequest, scope models.Scope) (*models.Application, error) {
	if err := validation.Struct(s.validator, req, "invalid application payload"); err != nil {
		return nil, err
	}
	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		return nil, loadFailure(err, "student")
	}
	if err := visible(scope, student, "student"); err != nil {
		return nil, err
	}
	status := nonEmpty(req.AppStatus, string(models.ApplicationStatusOpen))
	if _, err := s.checker.Check(ctx, models.EntityApplication, "", status); err != nil {
		return nil, err
	}

	counselor := req.CounselorID
	if counselor == nil {
		counselor = student.CounselorID
	}
	officer := req.AdmissionOfficerID
	if officer == nil {
		officer = student.AdmissionOfficerID
	}
	app := &models.Application{
		StudentID:          student.ID,
		University:         strings.TrimSpace(req.University),
		Program:            strings.TrimSpace(req.Program),
		CourseType:         req.CourseType,
		Country:            nonEmpty(req.Country, student.TargetCountry),
		Intake:             req.Intake,
		AppStatus:          models.ApplicationStatus(status),
		CaseStatus:         req.CaseStatus,
		ChannelPartner:     req.ChannelPartner,
		DriveLink:          req.DriveLink,
		Notes:              req.Notes,
		CounselorID:        defaultCounselor(counselor, scope),
		AdmissionOfficerID: defaultOfficer(officer, scope),
		CreatedBy:          scope.Actor(),
		UpdatedBy:          scope.Actor(),
	}
	if err := s.repo.Create(ctx, app); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}

	if err := s.activities.Record(ctx, nil,
		newActivity(models.EntityApplication, app.ID, models.ActivityCreated, "Application created", scope),
		newActivity(models.EntityStudent, student.ID, models.ActivityCreated, fmt.Sprintf("Application submitted to %s", app.University), scope),
	); err != nil {
		s.logger.Warn("failed to record application activities", zap.String("application_id", app.ID), zap.Error(err))
	}
	s.cache.Invalidate(ctx, dashboardCachePattern)
	return app, nil
}

// Update applies the non-nil fields of req. appStatus changes pass the transition check.
func (s *ApplicationService) Update(ctx context.Context, id string, req dto.UpdateApplicationRequest, scope models.Scope) (*models.Application, error) {
	if err := validation.Struct(s.validator, req, "invalid application payload"); err != nil {
		return nil, err
	}
	app, err := s.Get(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	before := *app

	setString(&app.University, req.University)
	setString(&app.Program, req.Program)
	setString(&app.CourseType, req.CourseType)
	setString(&app.Country, req.Country)
	setString(&app.Intake, req.Intake)
	setString(&app.CaseStatus, req.CaseStatus)
	setString(&app.ChannelPartner, req.ChannelPartner)
	setString(&app.DriveLink, req.DriveLink)
	setString(&app.Notes, req.Notes)
	setOptional(&app.CounselorID, req.CounselorID)
	setOptional(&app.AdmissionOfficerID, req.AdmissionOfficerID)

	var decision workflow.Decision
	if req.AppStatus != nil {
		decision, err = s.checker.Check(ctx, models.EntityApplication, string(before.AppStatus), *req.AppStatus)
		recordTransition(s.metrics, models.EntityApplication, decision, err)
		if err != nil {
			return nil, err
		}
		if decision.Changed {
			app.AppStatus = models.ApplicationStatus(*req.AppStatus)
		}
	}

	changes := diffFields(&before, app)
	if len(changes) == 0 {
		return app, nil
	}
	app.UpdatedBy = scope.Actor()
	if err := s.repo.Update(ctx, app); err != nil {
		return nil, saveFailure(err, "application")
	}
	activities := changeActivities(models.EntityApplication, app.ID, changes, "appStatus", decision.Flagged, scope)
	if err := s.activities.Record(ctx, nil, activities...); err != nil {
		s.logger.Warn("failed to record application change activities", zap.String("application_id", app.ID), zap.Error(err))
	}
	s.cache.Invalidate(ctx, dashboardCachePattern)
	return app, nil
}

// Delete removes an application visible to scope.
func (s *ApplicationService) Delete(ctx context.Context, id string, scope models.Scope) error {
	if _, err := s.Get(ctx, id, scope); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete application")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "application not found")
	}
	s.cache.Invalidate(ctx, dashboardCachePattern)
	return nil
}

// recordTransition counts the outcome of a status check.
func recordTransition(metrics *MetricsService, entity string, decision workflow.Decision, err error) {
	switch {
	case err != nil:
		if errors.Is(err, appErrors.ErrInvalidTransition) {
			metrics.RecordTransition(entity, "rejected")
		}
	case decision.Flagged:
		metrics.RecordTransition(entity, "flagged")
	case decision.Changed:
		metrics.RecordTransition(entity, "allowed")
	}
}
