package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/educrm-api/internal/dto"
	"github.com/noah-isme/educrm-api/internal/models"
	appErrors "github.com/noah-isme/educrm-api/pkg/errors"
	"github.com/noah-isme/educrm-api/pkg/validation"
)

type universityRepository interface {
	List(ctx context.Context, filter models.UniversityFilter) ([]models.University, int, error)
	FindByID(ctx context.Context, id string) (*models.University, error)
	Create(ctx context.Context, uni *models.University) error
}

// UniversityService serves university reference data.
type UniversityService struct {
	repo      universityRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUniversityService constructs a UniversityService.
func NewUniversityService(repo universityRepository, validate *validator.Validate, logger *zap.Logger) *UniversityService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UniversityService{repo: repo, validator: validate, logger: logger}
}

// List returns universities matching filter.
func (s *UniversityService) List(ctx context.Context, filter models.UniversityFilter) ([]models.University, *models.Pagination, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	unis, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list universities")
	}
	return unis, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a university with its courses, intakes and accepted tests.
func (s *UniversityService) Get(ctx context.Context, id string) (*models.University, error) {
	uni, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadFailure(err, "university")
	}
	return uni, nil
}

// Create stores a university and its child rows.
func (s *UniversityService) Create(ctx context.Context, req dto.UniversityRequest) (*models.University, error) {
	if err := validation.Struct(s.validator, req, "invalid university payload"); err != nil {
		return nil, err
	}

	uni := &models.University{
		Name:                  strings.TrimSpace(req.Name),
		Country:               strings.TrimSpace(req.Country),
		City:                  req.City,
		Website:               req.Website,
		Ranking:               req.Ranking,
		Description:           req.Description,
		AdmissionRequirements: req.AdmissionRequirements,
		ApplicationFee:        req.ApplicationFee,
		Currency:              strings.ToUpper(req.Currency),
	}
	for _, c := range req.Courses {
		uni.Courses = append(uni.Courses, models.UniversityCourse{
			Name:       c.Name,
			Level:      c.Level,
			Duration:   c.Duration,
			TuitionFee: c.TuitionFee,
			Currency:   strings.ToUpper(c.Currency),
		})
	}
	for i, in := range req.Intakes {
		deadline, err := optionalDate(fmt.Sprintf("intakes[%d].deadline", i), in.Deadline)
		if err != nil {
			return nil, err
		}
		uni.Intakes = append(uni.Intakes, models.UniversityIntake{Month: in.Month, Deadline: deadline})
	}
	for _, elt := range req.AcceptedElts {
		uni.AcceptedElts = append(uni.AcceptedElts, models.UniversityAcceptedElt{
			TestName:     elt.TestName,
			MinimumScore: elt.MinimumScore,
		})
	}

	if err := s.repo.Create(ctx, uni); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create university")
	}
	s.logger.Info("university created", zap.String("university_id", uni.ID), zap.String("name", uni.Name))
	return uni, nil
}
