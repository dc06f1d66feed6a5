package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/educrm-api/internal/models"
	appErrors "github.com/noah-isme/educrm-api/pkg/errors"
)

const unassignedGroup = "unassigned"

type pipelineReader interface {
	Leads(ctx context.Context, filter models.PipelineFilter, scope models.Scope) ([]models.LeadFact, error)
	Students(ctx context.Context, filter models.PipelineFilter, scope models.Scope) ([]models.StudentFact, error)
	Applications(ctx context.Context, filter models.PipelineFilter, scope models.Scope) ([]models.ApplicationFact, error)
	Admissions(ctx context.Context, filter models.PipelineFilter, scope models.Scope) ([]models.AdmissionFact, error)
	CountEvents(ctx context.Context, filter models.PipelineFilter) (int, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
}

// DashboardService composes the current-month pipeline overview.
type DashboardService struct {
	pipeline pipelineReader
	cache    *CacheService
	logger   *zap.Logger
	now      func() time.Time
	cfg      DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Pipeline pipelineReader
	Cache    *CacheService
	Logger   *zap.Logger
	Config   DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		pipeline: params.Pipeline,
		cache:    params.Cache,
		logger:   logger,
		now:      time.Now,
		cfg:      cfg,
	}
}

// Summary returns the dashboard for the current UTC month as seen by scope and
// reports whether it came from cache.
func (s *DashboardService) Summary(ctx context.Context, scope models.Scope) (*models.DashboardSummary, bool, error) {
	from, to := monthBounds(s.now())
	month := from.Format("2006-01")
	cacheKey := fmt.Sprintf("dash:%s:%s", scopeKey(scope), month)

	var cached models.DashboardSummary
	if s.cache.Get(ctx, cacheKey, &cached) {
		return &cached, true, nil
	}

	summary, err := s.compose(ctx, models.PipelineFilter{From: from, To: to}, scope)
	if err != nil {
		return nil, false, err
	}
	summary.Month = month
	s.cache.Set(ctx, cacheKey, summary, s.cfg.CacheTTL)
	return summary, false, nil
}

func (s *DashboardService) compose(ctx context.Context, filter models.PipelineFilter, scope models.Scope) (*models.DashboardSummary, error) {
	leads, err := s.pipeline.Leads(ctx, filter, scope)
	if err != nil {
		return nil, dashboardFailure(err)
	}
	students, err := s.pipeline.Students(ctx, filter, scope)
	if err != nil {
		return nil, dashboardFailure(err)
	}
	apps, err := s.pipeline.Applications(ctx, filter, scope)
	if err != nil {
		return nil, dashboardFailure(err)
	}
	admissions, err := s.pipeline.Admissions(ctx, filter, scope)
	if err != nil {
		return nil, dashboardFailure(err)
	}
	events, err := s.pipeline.CountEvents(ctx, filter)
	if err != nil {
		return nil, dashboardFailure(err)
	}

	return &models.DashboardSummary{
		Totals: models.DashboardTotals{
			Leads:        len(leads),
			Students:     len(students),
			Applications: len(apps),
			Admissions:   len(admissions),
			Events:       events,
		},
		LeadsByStatus:          groupCount(leads, func(l models.LeadFact) string { return l.Status }),
		LeadsBySource:          groupCount(leads, func(l models.LeadFact) string { return l.Source }),
		ApplicationsByStatus:   groupCount(apps, func(a models.ApplicationFact) string { return a.AppStatus }),
		AdmissionsByVisaStatus: groupCount(admissions, func(a models.AdmissionFact) string { return a.VisaStatus }),
		GeneratedAt:            s.now().UTC(),
	}, nil
}

func dashboardFailure(err error) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build dashboard")
}

// groupCount tallies items by key, largest bucket first, ties by key. Blank
// keys are counted as unassigned.
func groupCount[T any](items []T, key func(T) string) []models.GroupCount {
	counts := make(map[string]int)
	for _, item := range items {
		k := key(item)
		if k == "" {
			k = unassignedGroup
		}
		counts[k]++
	}
	out := make([]models.GroupCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, models.GroupCount{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// monthBounds returns [first of month, first of next month) in UTC.
func monthBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	from := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

// scopeKey partitions cached aggregates by visibility. Unscoped roles share one entry.
func scopeKey(scope models.Scope) string {
	switch scope.Role {
	case models.RoleCounselor, models.RoleAdmissionOfficer:
		return string(scope.Role) + ":" + scope.UserID
	default:
		return "all"
	}
}
