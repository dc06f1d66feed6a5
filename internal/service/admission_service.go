package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/educrm-api/internal/dto"
	"github.com/noah-isme/educrm-api/internal/models"
	"github.com/noah-isme/educrm-api/internal/workflow"
	appErrors "github.com/noah-isme/educrm-api/pkg/errors"
	"github.com/noah-isme/educrm-api/pkg/validation"
)

type admissionRepository interface {
	List(ctx context.Context, filter models.AdmissionFilter, scope models.Scope) ([]models.Admission, int, error)
	FindByID(ctx context.Context, id string) (*models.Admission, error)
	Create(ctx context.Context, admission *models.Admission) error
	Update(ctx context.Context, admission *models.Admission) error
	Delete(ctx context.Context, id string) (bool, error)
}

type applicationReader interface {
	FindByID(ctx context.Context, id string) (*models.Application, error)
}

// AdmissionService implements admission and visa tracking use cases.
type AdmissionService struct {
	repo         admissionRepository
	applications applicationReader
	students     studentReader
	activities   *ActivityService
	checker      *workflow.Checker
	cache        *CacheService
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
}

// AdmissionServiceParams groups constructor dependencies.
type AdmissionServiceParams struct {
	Repo         admissionRepository
	Applications applicationReader
	Students     studentReader
	Activities   *ActivityService
	Checker      *workflow.Checker
	Cache        *CacheService
	Metrics      *MetricsService
	Validator    *validator.Validate
	Logger       *zap.Logger
}

// NewAdmissionService constructs an AdmissionService.
func NewAdmissionService(params AdmissionServiceParams) *AdmissionService {
	if params.Validator == nil {
		params.Validator = validation.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Checker == nil {
		params.Checker = workflow.NewChecker(workflow.ModeFlag, params.Logger)
	}
	return &AdmissionService{
		repo:         params.Repo,
		applications: params.Applications,
		students:     params.Students,
		activities:   params.Activities,
		checker:      params.Checker,
		cache:        params.Cache,
		metrics:      params.Metrics,
		validator:    params.Validator,
		logger:       params.Logger,
	}
}

// List returns admissions visible to scope.
func (s *AdmissionService) List(ctx context.Context, filter models.AdmissionFilter, scope models.Scope) ([]models.Admission, *models.Pagination, error) {
	admissions, total, err := s.repo.List(ctx, filter, scope)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list admissions")
	}
	return admissions, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns an admission visible to scope.
func (s *AdmissionService) Get(ctx context.Context, id string, scope models.Scope) (*models.Admission, error) {
	admission, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadFailure(err, "admission")
	}
	if err := visible(scope, admission, "admission"); err != nil {
		return nil, err
	}
	return admission, nil
}

// Create records the outcome of an application.
func (s *AdmissionService) Create(ctx context.Context, req dto.CreateAdmissionRequest, scope models.Scope) (*models.Admission, error) {
	if err := validation.Struct(s.validator, req, "invalid admission payload"); err != nil {
		return nil, err
	}
	app, err := s.applications.FindByID(ctx, req.ApplicationID)
	if err != nil {
		return nil, loadFailure(err, "application")
	}
	if err := visible(scope, app, "application"); err != nil {
		return nil, err
	}
	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		return nil, loadFailure(err, "student")
	}
	if err := visible(scope, student, "student"); err != nil {
		return nil, err
	}
	if app.StudentID != student.ID {
		return nil, appErrors.Validation("invalid admission payload", []appErrors.FieldError{{
			Field:   "applicationId",
			Message: "does not belong to the given student",
		}})
	}
	status := nonEmpty(req.VisaStatus, string(models.VisaStatusNotApplied))
	if _, err := s.checker.Check(ctx, models.EntityAdmission, "", status); err != nil {
		return nil, err
	}

	admission := &models.Admission{
		ApplicationID:     app.ID,
		StudentID:         student.ID,
		University:        nonEmpty(req.University, app.University),
		Program:           nonEmpty(req.Program, app.Program),
		TuitionFee:        req.TuitionFee,
		InitialDeposit:    req.InitialDeposit,
		FullTuitionPaid:   req.FullTuitionPaid,
		VisaStatus:        models.VisaStatus(status),
		ScholarshipAmount: req.ScholarshipAmount,
		Notes:             req.Notes,
		CreatedBy:         scope.Actor(),
		UpdatedBy:         scope.Actor(),
	}
	if admission.DepositDate, err = optionalDate("depositDate", req.DepositDate); err != nil {
		return nil, err
	}
	if admission.VisaDate, err = optionalDate("visaDate", req.VisaDate); err != nil {
		return nil, err
	}
	if admission.DecisionDate, err = optionalDate("decisionDate", req.DecisionDate); err != nil {
		return nil, err
	}
	counselor := req.CounselorID
	if counselor == nil {
		counselor = app.CounselorID
	}
	officer := req.AdmissionOfficerID
	if officer == nil {
		officer = app.AdmissionOfficerID
	}
	admission.CounselorID = defaultCounselor(counselor, scope)
	admission.AdmissionOfficerID = defaultOfficer(officer, scope)

	if err := s.repo.Create(ctx, admission); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create admission")
	}
	if err := s.activities.Record(ctx, nil,
		newActivity(models.EntityAdmission, admission.ID, models.ActivityCreated, "Admission created", scope),
	); err != nil {
		s.logger.Warn("failed to record admission creation activity", zap.String("admission_id", admission.ID), zap.Error(err))
	}
	s.cache.Invalidate(ctx, dashboardCachePattern)
	return admission, nil
}

// Update applies the non-nil fields of req. visaStatus changes pass the transition check.
func (s *AdmissionService) Update(ctx context.Context, id string, req dto.UpdateAdmissionRequest, scope models.Scope) (*models.Admission, error) {
	if err := validation.Struct(s.validator, req, "invalid admission payload"); err != nil {
		return nil, err
	}
	admission, err := s.Get(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	before := *admission

	setString(&admission.University, req.University)
	setString(&admission.Program, req.Program)
	setFloat(&admission.TuitionFee, req.TuitionFee)
	setFloat(&admission.InitialDeposit, req.InitialDeposit)
	setBool(&admission.FullTuitionPaid, req.FullTuitionPaid)
	setFloat(&admission.ScholarshipAmount, req.ScholarshipAmount)
	setString(&admission.Notes, req.Notes)
	setOptional(&admission.CounselorID, req.CounselorID)
	setOptional(&admission.AdmissionOfficerID, req.AdmissionOfficerID)
	if req.DepositDate != nil {
		if admission.DepositDate, err = optionalDate("depositDate", req.DepositDate); err != nil {
			return nil, err
		}
	}
	if req.VisaDate != nil {
		if admission.VisaDate, err = optionalDate("visaDate", req.VisaDate); err != nil {
			return nil, err
		}
	}
	if req.DecisionDate != nil {
		if admission.DecisionDate, err = optionalDate("decisionDate", req.DecisionDate); err != nil {
			return nil, err
		}
	}

	var decision workflow.Decision
	if req.VisaStatus != nil {
		decision, err = s.checker.Check(ctx, models.EntityAdmission, string(before.VisaStatus), *req.VisaStatus)
		recordTransition(s.metrics, models.EntityAdmission, decision, err)
		if err != nil {
			return nil, err
		}
		if decision.Changed {
			admission.VisaStatus = models.VisaStatus(*req.VisaStatus)
		}
	}

	changes := diffFields(&before, admission)
	if len(changes) == 0 {
		return admission, nil
	}
	admission.UpdatedBy = scope.Actor()
	if err := s.repo.Update(ctx, admission); err != nil {
		return nil, saveFailure(err, "admission")
	}
	activities := changeActivities(models.EntityAdmission, admission.ID, changes, "visaStatus", decision.Flagged, scope)
	if err := s.activities.Record(ctx, nil, activities...); err != nil {
		s.logger.Warn("failed to record admission change activities", zap.String("admission_id", admission.ID), zap.Error(err))
	}
	s.cache.Invalidate(ctx, dashboardCachePattern)
	return admission, nil
}

// Delete removes an admission visible to scope.
func (s *AdmissionService) Delete(ctx context.Context, id string, scope models.Scope) error {
	if _, err := s.Get(ctx, id, scope); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete admission")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "admission not found")
	}
	s.cache.Invalidate(ctx, dashboardCachePattern)
	return nil
}
