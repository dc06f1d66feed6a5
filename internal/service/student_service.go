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

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter, scope models.Scope) ([]models.Student, int, error)
	Search(ctx context.Context, q string, scope models.Scope, limit int) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByLeadID(ctx context.Context, leadID string) (*models.Student, error)
	Create(ctx context.Context, exec sqlx.ExtContext, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) (bool, error)
}

type leadReader interface {
	FindByID(ctx context.Context, id string) (*models.Lead, error)
}

// StudentService implements student use cases including lead conversion.
type StudentService struct {
	repo       studentRepository
	leads      leadReader
	activities *ActivityService
	tx         txProvider
	cache      *CacheService
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
}

// StudentServiceParams groups constructor dependencies.
type StudentServiceParams struct {
	Repo       studentRepository
	Leads      leadReader
	Activities *ActivityService
	Tx         txProvider
	Cache      *CacheService
	Metrics    *MetricsService
	Validator  *validator.Validate
	Logger     *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(params StudentServiceParams) *StudentService {
	if params.Validator == nil {
		params.Validator = validation.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	return &StudentService{
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

// List returns students visible to scope.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter, scope models.Scope) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter, scope)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	for i := range students {
		students[i].Decorate()
	}
	return students, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Search matches students by name, email, target program or target country.
func (s *StudentService) Search(ctx context.Context, q string, scope models.Scope) ([]models.Student, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []models.Student{}, nil
	}
	students, err := s.repo.Search(ctx, q, scope, searchLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search students")
	}
	for i := range students {
		students[i].Decorate()
	}
	return students, nil
}

// Get returns a student visible to scope.
func (s *StudentService) Get(ctx context.Context, id string, scope models.Scope) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadFailure(err, "student")
	}
	if err := visible(scope, student, "student"); err != nil {
		return nil, err
	}
	student.Decorate()
	return student, nil
}

// Create registers a student directly.
func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentRequest, scope models.Scope) (*models.Student, error) {
	if err := validation.Struct(s.validator, req, "invalid student payload"); err != nil {
		return nil, err
	}
	dob, err := optionalDate("dateOfBirth", req.DateOfBirth)
	if err != nil {
		return nil, err
	}

	student := &models.Student{
		Name:                 strings.TrimSpace(req.Name),
		Email:                strings.TrimSpace(req.Email),
		Phone:                req.Phone,
		DateOfBirth:          dob,
		Nationality:          req.Nationality,
		TargetCountry:        req.TargetCountry,
		TargetProgram:        req.TargetProgram,
		EnglishProficiency:   req.EnglishProficiency,
		HighestQualification: req.HighestQualification,
		ConsultancyFeePaid:   req.ConsultancyFeePaid,
		Scholarship:          req.Scholarship,
		Status:               models.StudentStatus(nonEmpty(req.Status, string(models.StudentStatusActive))),
		CounselorID:          defaultCounselor(req.CounselorID, scope),
		AdmissionOfficerID:   defaultOfficer(req.AdmissionOfficerID, scope),
		Branch:               req.Branch,
		Region:               req.Region,
		ProfilePicture:       req.ProfilePicture,
		Notes:                req.Notes,
		CreatedBy:            scope.Actor(),
		UpdatedBy:            scope.Actor(),
	}
	if err := s.repo.Create(ctx, nil, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	if err := s.activities.Record(ctx, nil, newActivity(models.EntityStudent, student.ID, models.ActivityCreated, "Student created", scope)); err != nil {
		s.logger.Warn("failed to record student creation activity", zap.String("student_id", student.ID), zap.Error(err))
	}
	s.cache.Invalidate(ctx, dashboardCachePattern)
	student.Decorate()
	return student, nil
}

// ConvertFromLead creates a student from a lead in one transaction: the
// student row, a copy of the lead's timeline and a single converted
// activity. The lead row itself is left as is.
func (s *StudentService) ConvertFromLead(ctx context.Context, req dto.ConvertLeadRequest, scope models.Scope) (student *models.Student, err error) {
	if err = validation.Struct(s.validator, req, "invalid conversion payload"); err != nil {
		return nil, err
	}
	lead, err := s.leads.FindByID(ctx, req.LeadID)
	if err != nil {
		return nil, loadFailure(err, "lead")
	}
	if err = visible(scope, lead, "lead"); err != nil {
		return nil, err
	}
	if _, findErr := s.repo.FindByLeadID(ctx, lead.ID); findErr == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "lead already converted")
	} else if !isMissing(findErr) {
		return nil, appErrors.Wrap(findErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check conversion")
	}
	dob, err := optionalDate("dateOfBirth", req.DateOfBirth)
	if err != nil {
		return nil, err
	}

	leadID := lead.ID
	counselor := lead.CounselorID
	if counselor == nil {
		counselor = defaultCounselor(nil, scope)
	}
	student = &models.Student{
		LeadID:               &leadID,
		Name:                 nonEmpty(strings.TrimSpace(req.Name), lead.Name),
		Email:                nonEmpty(strings.TrimSpace(req.Email), lead.Email),
		Phone:                nonEmpty(req.Phone, lead.Phone),
		DateOfBirth:          dob,
		Nationality:          req.Nationality,
		TargetCountry:        nonEmpty(req.TargetCountry, firstOf(lead.Countries)),
		TargetProgram:        nonEmpty(req.TargetProgram, lead.Program),
		EnglishProficiency:   req.EnglishProficiency,
		HighestQualification: req.HighestQualification,
		Status:               models.StudentStatusActive,
		CounselorID:          counselor,
		AdmissionOfficerID:   defaultOfficer(req.AdmissionOfficerID, scope),
		Branch:               lead.Branch,
		Region:               lead.Region,
		Notes:                req.Notes,
		CreatedBy:            scope.Actor(),
		UpdatedBy:            scope.Actor(),
	}

	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
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

	if err = s.repo.Create(ctx, tx, student); err != nil {
		if isUniqueViolation(err) {
			err = appErrors.Clone(appErrors.ErrConflict, "lead already converted")
			return nil, err
		}
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
		return nil, err
	}
	copied, err := s.activities.Transfer(ctx, tx, models.EntityLead, lead.ID, models.EntityStudent, student.ID)
	if err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to copy lead activities")
		return nil, err
	}
	converted := newActivity(models.EntityStudent, student.ID, models.ActivityConverted,
		fmt.Sprintf("Converted from lead %s", lead.Name), scope)
	converted.FieldName = strPtr("leadId")
	converted.NewValue = strPtr(lead.ID)
	if err = s.activities.Record(ctx, tx,
		newActivity(models.EntityStudent, student.ID, models.ActivityCreated, "Student created", scope),
		converted,
	); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record conversion")
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit conversion")
		return nil, err
	}

	s.logger.Info("lead converted to student",
		zap.String("lead_id", lead.ID),
		zap.String("student_id", student.ID),
		zap.Int("activities_copied", copied),
	)
	s.metrics.RecordConversion(models.EntityLead, models.EntityStudent)
	s.cache.Invalidate(ctx, dashboardCachePattern)
	student.Decorate()
	return student, nil
}

// Update applies the non-nil fields of req and records one activity per changed field.
func (s *StudentService) Update(ctx context.Context, id string, req dto.UpdateStudentRequest, scope models.Scope) (*models.Student, error) {
	if err := validation.Struct(s.validator, req, "invalid student payload"); err != nil {
		return nil, err
	}
	student, err := s.Get(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	before := *student

	setString(&student.Name, req.Name)
	setString(&student.Email, req.Email)
	setString(&student.Phone, req.Phone)
	if req.DateOfBirth != nil {
		if student.DateOfBirth, err = optionalDate("dateOfBirth", req.DateOfBirth); err != nil {
			return nil, err
		}
	}
	setString(&student.Nationality, req.Nationality)
	setString(&student.TargetCountry, req.TargetCountry)
	setString(&student.TargetProgram, req.TargetProgram)
	setString(&student.EnglishProficiency, req.EnglishProficiency)
	setString(&student.HighestQualification, req.HighestQualification)
	setBool(&student.ConsultancyFeePaid, req.ConsultancyFeePaid)
	setBool(&student.Scholarship, req.Scholarship)
	if req.Status != nil {
		student.Status = models.StudentStatus(*req.Status)
	}
	setOptional(&student.CounselorID, req.CounselorID)
	setOptional(&student.AdmissionOfficerID, req.AdmissionOfficerID)
	setString(&student.Branch, req.Branch)
	setString(&student.Region, req.Region)
	setString(&student.ProfilePicture, req.ProfilePicture)
	setString(&student.Notes, req.Notes)

	changes := diffFields(&before, student)
	if len(changes) == 0 {
		return student, nil
	}
	student.UpdatedBy = scope.Actor()
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, saveFailure(err, "student")
	}
	activities := changeActivities(models.EntityStudent, student.ID, changes, "status", false, scope)
	if err := s.activities.Record(ctx, nil, activities...); err != nil {
		s.logger.Warn("failed to record student change activities", zap.String("student_id", student.ID), zap.Error(err))
	}
	s.cache.Invalidate(ctx, dashboardCachePattern)
	student.Decorate()
	return student, nil
}

// Delete removes a student visible to scope.
func (s *StudentService) Delete(ctx context.Context, id string, scope models.Scope) error {
	if _, err := s.Get(ctx, id, scope); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	s.cache.Invalidate(ctx, dashboardCachePattern)
	return nil
}

func defaultOfficer(requested *string, scope models.Scope) *string {
	if requested != nil && *requested != "" {
		return requested
	}
	if scope.Role == models.RoleAdmissionOfficer {
		return scope.Actor()
	}
	return nil
}

func firstOf(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func strPtr(v string) *string {
	return &v
}
