package service

import (
	"context"
	"fmt"

	"github.com/noah-isme/educrm-api/internal/models"
	"github.com/noah-isme/educrm-api/internal/workflow"
	appErrors "github.com/noah-isme/educrm-api/pkg/errors"
)

type dropdownRowSource interface {
	Rows(ctx context.Context, module string) ([]models.Dropdown, error)
}

// WorkflowService describes status progressions for progress bars.
type WorkflowService struct {
	dropdowns dropdownRowSource
	checker   *workflow.Checker
}

// NewWorkflowService constructs a WorkflowService.
func NewWorkflowService(dropdowns dropdownRowSource, checker *workflow.Checker) *WorkflowService {
	return &WorkflowService{dropdowns: dropdowns, checker: checker}
}

// WorkflowView is the progress-bar payload of one entity.
type WorkflowView struct {
	workflow.Description
	Mode string `json:"mode"`
}

// Describe returns the ordered steps and allowed transitions of entity.
func (s *WorkflowService) Describe(ctx context.Context, entity string) (*WorkflowView, error) {
	machine, ok := workflow.For(entity)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no workflow for %q", entity))
	}
	var overrides []models.Dropdown
	if s.dropdowns != nil {
		rows, err := s.dropdowns.Rows(ctx, machine.Module)
		if err != nil {
			return nil, err
		}
		overrides = rows
	}
	mode := workflow.ModeFlag
	if s.checker != nil {
		mode = s.checker.Mode()
	}
	return &WorkflowView{Description: machine.Describe(overrides), Mode: mode}, nil
}

// Entities lists entities that have a workflow.
func (s *WorkflowService) Entities() []string {
	return workflow.Entities()
}
