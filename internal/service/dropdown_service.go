package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/educrm-api/internal/dto"
	"github.com/noah-isme/educrm-api/internal/models"
	appErrors "github.com/noah-isme/educrm-api/pkg/errors"
	"github.com/noah-isme/educrm-api/pkg/validation"
)

const dropdownCacheKeyPrefix = "dropdowns:"

type dropdownRepository interface {
	List(ctx context.Context, module string) ([]models.Dropdown, error)
	FindByID(ctx context.Context, id string) (*models.Dropdown, error)
	Create(ctx context.Context, row *models.Dropdown) error
	Update(ctx context.Context, row *models.Dropdown) error
	Delete(ctx context.Context, id string) (bool, error)
}

// DropdownService serves and maintains lookup lists.
type DropdownService struct {
	repo      dropdownRepository
	cache     *CacheService
	ttl       time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDropdownService constructs a DropdownService.
func NewDropdownService(repo dropdownRepository, cache *CacheService, ttl time.Duration, validate *validator.Validate, logger *zap.Logger) *DropdownService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DropdownService{repo: repo, cache: cache, ttl: ttl, validator: validate, logger: logger}
}

// All returns every module's lookup lists grouped by field.
func (s *DropdownService) All(ctx context.Context) (map[string]models.DropdownGroup, error) {
	key := dropdownCacheKeyPrefix + "all"
	var cached map[string]models.DropdownGroup
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	rows, err := s.repo.List(ctx, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list dropdowns")
	}
	out := make(map[string]models.DropdownGroup, len(models.DropdownFields))
	for module := range models.DropdownFields {
		out[module] = groupDropdowns(module, rows)
	}
	s.cache.Set(ctx, key, out, s.ttl)
	return out, nil
}

// Module returns the lookup lists of one module.
func (s *DropdownService) Module(ctx context.Context, module string) (models.DropdownGroup, error) {
	if _, ok := models.DropdownFields[module]; !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unknown dropdown module %q", module))
	}
	key := dropdownCacheKeyPrefix + module
	var cached models.DropdownGroup
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	rows, err := s.repo.List(ctx, module)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list dropdowns")
	}
	group := groupDropdowns(module, rows)
	s.cache.Set(ctx, key, group, s.ttl)
	return group, nil
}

// Rows returns the raw rows of a module in display order.
func (s *DropdownService) Rows(ctx context.Context, module string) ([]models.Dropdown, error) {
	rows, err := s.repo.List(ctx, module)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list dropdowns")
	}
	return rows, nil
}

// Create adds a lookup value to a known module field.
func (s *DropdownService) Create(ctx context.Context, req dto.DropdownRequest) (*models.Dropdown, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	row := &models.Dropdown{
		Module:    req.Module,
		FieldName: req.FieldName,
		Key:       strings.TrimSpace(req.Key),
		Value:     strings.TrimSpace(req.Value),
		Sequence:  req.Sequence,
		IsDefault: req.IsDefault,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		if isUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "dropdown key already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create dropdown")
	}
	s.cache.Invalidate(ctx, dropdownCachePattern)
	return row, nil
}

// Update replaces the key, label, order and default flag of a lookup value.
func (s *DropdownService) Update(ctx context.Context, id string, req dto.DropdownRequest) (*models.Dropdown, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadFailure(err, "dropdown")
	}
	if row.Module != req.Module || row.FieldName != req.FieldName {
		return nil, appErrors.Validation("invalid dropdown payload", []appErrors.FieldError{{
			Field:   "fieldName",
			Message: "module and fieldName cannot change",
		}})
	}
	row.Key = strings.TrimSpace(req.Key)
	row.Value = strings.TrimSpace(req.Value)
	row.Sequence = req.Sequence
	row.IsDefault = req.IsDefault
	if err := s.repo.Update(ctx, row); err != nil {
		if isUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "dropdown key already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update dropdown")
	}
	s.cache.Invalidate(ctx, dropdownCachePattern)
	return row, nil
}

// Delete removes a lookup value.
func (s *DropdownService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete dropdown")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "dropdown not found")
	}
	s.cache.Invalidate(ctx, dropdownCachePattern)
	return nil
}

func (s *DropdownService) validate(req dto.DropdownRequest) error {
	if err := validation.Struct(s.validator, req, "invalid dropdown payload"); err != nil {
		return err
	}
	if !models.KnownDropdownField(req.Module, req.FieldName) {
		return appErrors.Validation("invalid dropdown payload", []appErrors.FieldError{{
			Field:   "fieldName",
			Message: fmt.Sprintf("must be one of [%s]", strings.Join(models.DropdownFields[req.Module], " ")),
		}})
	}
	return nil
}

// groupDropdowns keys rows of module by field. Every known field is present,
// even when it has no rows.
func groupDropdowns(module string, rows []models.Dropdown) models.DropdownGroup {
	group := make(models.DropdownGroup, len(models.DropdownFields[module]))
	for _, field := range models.DropdownFields[module] {
		group[field] = []models.Dropdown{}
	}
	for _, row := range rows {
		if row.Module != module {
			continue
		}
		if _, ok := group[row.FieldName]; !ok {
			continue
		}
		group[row.FieldName] = append(group[row.FieldName], row)
	}
	for field := range group {
		options := group[field]
		sort.SliceStable(options, func(i, j int) bool {
			if options[i].Sequence != options[j].Sequence {
				return options[i].Sequence < options[j].Sequence
			}
			return options[i].Key < options[j].Key
		})
	}
	return group
}
