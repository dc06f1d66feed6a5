// Package workflow defines the status steps of each pipeline entity and the
// transitions allowed between them.
package workflow

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/educrm-api/internal/models"
	appErrors "github.com/noah-isme/educrm-api/pkg/errors"
)

// Modes for handling transitions missing from the table.
const (
	ModeFlag   = "flag"
	ModeStrict = "strict"
)

// Step is one state of a status field as shown on a progress bar.
type Step struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Sequence int      `json:"sequence"`
	Next     []string `json:"next"`
}

// Description is the progress-bar view of a machine.
type Description struct {
	Entity string `json:"entity"`
	Module string `json:"module"`
	Field  string `json:"field"`
	Steps  []Step `json:"steps"`
}

// Machine holds the ordered states and transition table of one status field.
type Machine struct {
	Entity      string
	Module      string
	Field       string
	steps       []Step
	transitions map[string]map[string]bool
}

func newMachine(entity, module, field string, steps []Step, transitions map[string][]string) *Machine {
	table := make(map[string]map[string]bool, len(transitions))
	for from, targets := range transitions {
		table[from] = make(map[string]bool, len(targets))
		for _, to := range targets {
			table[from][to] = true
		}
	}
	for i := range steps {
		steps[i].Sequence = i + 1
		steps[i].Next = transitions[steps[i].Key]
	}
	return &Machine{Entity: entity, Module: module, Field: field, steps: steps, transitions: table}
}

var machines = map[string]*Machine{
	models.EntityLead: newMachine(models.EntityLead, models.ModuleLeads, "status",
		[]Step{
			{Key: "new", Label: "New"},
			{Key: "contacted", Label: "Contacted"},
			{Key: "qualified", Label: "Qualified"},
			{Key: "nurturing", Label: "Nurturing"},
			{Key: "converted", Label: "Converted"},
			{Key: "lost", Label: "Lost"},
		},
		map[string][]string{
			"new":       {"contacted", "qualified", "lost"},
			"contacted": {"qualified", "nurturing", "lost"},
			"qualified": {"nurturing", "converted", "lost"},
			"nurturing": {"qualified", "converted", "lost"},
			"lost":      {"new", "contacted"},
			"converted": {},
		}),
	models.EntityApplication: newMachine(models.EntityApplication, models.ModuleApplications, "appStatus",
		[]Step{
			{Key: "Open", Label: "Open"},
			{Key: "Needs Attention", Label: "Needs Attention"},
			{Key: "Closed", Label: "Closed"},
		},
		map[string][]string{
			"Open":            {"Needs Attention", "Closed"},
			"Needs Attention": {"Open", "Closed"},
			"Closed":          {"Open"},
		}),
	models.EntityAdmission: newMachine(models.EntityAdmission, models.ModuleAdmissions, "visaStatus",
		[]Step{
			{Key: "not-applied", Label: "Not Applied"},
			{Key: "applied", Label: "Applied"},
			{Key: "interview-scheduled", Label: "Interview Scheduled"},
			{Key: "pending", Label: "Pending"},
			{Key: "on-hold", Label: "On Hold"},
			{Key: "approved", Label: "Approved"},
			{Key: "rejected", Label: "Rejected"},
		},
		map[string][]string{
			"not-applied":         {"applied", "on-hold"},
			"applied":             {"interview-scheduled", "pending", "approved", "rejected", "on-hold"},
			"interview-scheduled": {"pending", "approved", "rejected", "on-hold"},
			"pending":             {"approved", "rejected", "on-hold"},
			"on-hold":             {"not-applied", "applied", "pending"},
			"approved":            {},
			"rejected":            {"applied"},
		}),
}

// For returns the machine of an entity type.
func For(entity string) (*Machine, bool) {
	m, ok := machines[entity]
	return m, ok
}

// Entities lists entity types that have a status workflow.
func Entities() []string {
	out := make([]string, 0, len(machines))
	for entity := range machines {
		out = append(out, entity)
	}
	sort.Strings(out)
	return out
}

// Has reports whether key is a known state.
func (m *Machine) Has(key string) bool {
	for _, step := range m.steps {
		if step.Key == key {
			return true
		}
	}
	return false
}

// Keys returns the states in order.
func (m *Machine) Keys() []string {
	keys := make([]string, len(m.steps))
	for i, step := range m.steps {
		keys[i] = step.Key
	}
	return keys
}

// Allowed reports whether from -> to is in the transition table. An empty
// from state may move anywhere.
func (m *Machine) Allowed(from, to string) bool {
	if from == "" {
		return true
	}
	return m.transitions[from][to]
}

// Extra returns the dropdown rows of the machine's module and field whose
// keys are not machine states, ordered by sequence.
func (m *Machine) Extra(rows []models.Dropdown) []models.Dropdown {
	var out []models.Dropdown
	for _, d := range rows {
		if d.Module != m.Module || d.FieldName != m.Field || d.Key == "" || m.Has(d.Key) {
			continue
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out
}

// Describe returns the steps with dropdown rows of the same module and field
// overriding labels and ordering. Dropdown keys outside the machine are
// appended as steps with no outgoing transitions.
func (m *Machine) Describe(overrides []models.Dropdown) Description {
	steps := make([]Step, len(m.steps))
	copy(steps, m.steps)
	for i := range steps {
		for _, d := range overrides {
			if d.Module != m.Module || d.FieldName != m.Field || d.Key != steps[i].Key {
				continue
			}
			if d.Value != "" {
				steps[i].Label = d.Value
			}
			if d.Sequence > 0 {
				steps[i].Sequence = d.Sequence
			}
		}
	}
	last := 0
	for _, step := range steps {
		if step.Sequence > last {
			last = step.Sequence
		}
	}
	for _, d := range m.Extra(overrides) {
		step := Step{Key: d.Key, Label: nonBlank(d.Value, d.Key), Sequence: d.Sequence, Next: []string{}}
		if step.Sequence <= 0 {
			last++
			step.Sequence = last
		}
		steps = append(steps, step)
	}
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Sequence < steps[j].Sequence })
	return Description{Entity: m.Entity, Module: m.Module, Field: m.Field, Steps: steps}
}

func nonBlank(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// Decision is the outcome of a transition check.
type Decision struct {
	Changed bool
	Flagged bool
}

// StateSource supplies the dropdown rows of a module. Rows of a machine's
// field whose keys fall outside the machine are accepted as extra states.
type StateSource interface {
	Rows(ctx context.Context, module string) ([]models.Dropdown, error)
}

// Checker enforces transition tables according to a mode.
type Checker struct {
	mode   string
	logger *zap.Logger
	states StateSource
}

// NewChecker builds a Checker; unknown modes fall back to flag.
func NewChecker(mode string, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	mode = strings.ToLower(mode)
	if mode != ModeStrict {
		mode = ModeFlag
	}
	return &Checker{mode: mode, logger: logger}
}

// UseStates makes dropdown-defined states of src known to Check.
func (c *Checker) UseStates(src StateSource) {
	c.states = src
}

// Mode returns the active enforcement mode.
func (c *Checker) Mode() string {
	return c.mode
}

// Check validates a status change for entity. Targets that are neither
// machine states nor dropdown-defined states are rejected in every mode.
// Disallowed transitions, and any move into a dropdown-defined state, fail in
// strict mode and are flagged in flag mode. Setting the current value again
// reports Changed=false.
func (c *Checker) Check(ctx context.Context, entity, from, to string) (Decision, error) {
	m, ok := For(entity)
	if !ok {
		return Decision{Changed: from != to}, nil
	}
	if !m.Has(to) {
		return c.checkExtra(ctx, m, from, to)
	}
	if from == to {
		return Decision{}, nil
	}
	if m.Allowed(from, to) {
		return Decision{Changed: true}, nil
	}
	if c.mode == ModeStrict {
		return Decision{}, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("%s cannot move from %q to %q", m.Field, from, to))
	}
	c.logger.Warn("out-of-order status transition accepted",
		zap.String("entity", entity),
		zap.String("field", m.Field),
		zap.String("from", from),
		zap.String("to", to),
	)
	return Decision{Changed: true, Flagged: true}, nil
}

func (c *Checker) checkExtra(ctx context.Context, m *Machine, from, to string) (Decision, error) {
	extra, err := c.extraStates(ctx, m)
	if err != nil {
		return Decision{}, err
	}
	known := false
	keys := m.Keys()
	for _, d := range extra {
		keys = append(keys, d.Key)
		if d.Key == to {
			known = true
		}
	}
	if !known {
		return Decision{}, appErrors.Validation("invalid status", []appErrors.FieldError{{
			Field:   m.Field,
			Message: fmt.Sprintf("must be one of [%s]", strings.Join(keys, ", ")),
		}})
	}
	if from == to {
		return Decision{}, nil
	}
	if c.mode == ModeStrict {
		return Decision{}, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("%s %q is not in the transition table", m.Field, to))
	}
	c.logger.Warn("status outside transition table accepted",
		zap.String("entity", m.Entity),
		zap.String("field", m.Field),
		zap.String("from", from),
		zap.String("to", to),
	)
	return Decision{Changed: true, Flagged: true}, nil
}

func (c *Checker) extraStates(ctx context.Context, m *Machine) ([]models.Dropdown, error) {
	if c.states == nil {
		return nil, nil
	}
	rows, err := c.states.Rows(ctx, m.Module)
	if err != nil {
		return nil, err
	}
	return m.Extra(rows), nil
}
