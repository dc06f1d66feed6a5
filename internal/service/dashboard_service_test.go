package service

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/educrm-api/internal/models"
	appErrors "github.com/noah-isme/educrm-api/pkg/errors"
)

type memoryCache struct {
	entries map[string][]byte
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	for key := range m.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.entries, key)
			m.deleted = append(m.deleted, key)
		}
	}
	return nil
}

type fakePipeline struct {
	leads      []models.LeadFact
	students   []models.StudentFact
	apps       []models.ApplicationFact
	admissions []models.AdmissionFact
	events     int
	calls      int
	filters    []models.PipelineFilter
	err        error
}

func (f *fakePipeline) Leads(ctx context.Context, filter models.PipelineFilter, scope models.Scope) ([]models.LeadFact, error) {
	f.calls++
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return nil, f.err
	}
	return f.leads, nil
}

func (f *fakePipeline) Students(ctx context.Context, filter models.PipelineFilter, scope models.Scope) ([]models.StudentFact, error) {
	return f.students, nil
}

func (f *fakePipeline) Applications(ctx context.Context, filter models.PipelineFilter, scope models.Scope) ([]models.ApplicationFact, error) {
	return f.apps, nil
}

func (f *fakePipeline) Admissions(ctx context.Context, filter models.PipelineFilter, scope models.Scope) ([]models.AdmissionFact, error) {
	return f.admissions, nil
}

func (f *fakePipeline) CountEvents(ctx context.Context, filter models.PipelineFilter) (int, error) {
	return f.events, nil
}

func samplePipeline() *fakePipeline {
	return &fakePipeline{
		leads: []models.LeadFact{
			{Status: "new", Source: "web"},
			{Status: "new", Source: "event"},
			{Status: "lost", Source: "web"},
			{Status: "contacted", Source: ""},
		},
		students:   []models.StudentFact{{Status: "active"}},
		apps:       []models.ApplicationFact{{University: "Leeds", Country: "UK", AppStatus: "Open"}, {University: "Leeds", Country: "UK", AppStatus: "Closed"}},
		admissions: []models.AdmissionFact{{VisaStatus: "approved"}},
		events:     2,
	}
}

func TestGroupCountOrdersByCountThenKey(t *testing.T) {
	items := []string{"b", "a", "c", "a", "b", ""}
	got := groupCount(items, func(s string) string { return s })
	assert.Equal(t, []models.GroupCount{
		{Key: "a", Count: 2},
		{Key: "b", Count: 2},
		{Key: "c", Count: 1},
		{Key: "unassigned", Count: 1},
	}, got)
}

func TestDashboardSummaryCurrentMonthAndCache(t *testing.T) {
	pipeline := samplePipeline()
	cache := NewCacheService(newMemoryCache(), nil, time.Minute, nil, true)
	svc := NewDashboardService(DashboardServiceParams{Pipeline: pipeline, Cache: cache})
	svc.now = func() time.Time { return time.Date(2024, 2, 14, 9, 0, 0, 0, time.UTC) }

	summary, hit, err := svc.Summary(context.Background(), adminScope())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "2024-02", summary.Month)
	assert.Equal(t, 4, summary.Totals.Leads)
	assert.Equal(t, 2, summary.Totals.Events)
	assert.Equal(t, models.GroupCount{Key: "new", Count: 2}, summary.LeadsByStatus[0])
	assert.Equal(t, models.GroupCount{Key: "web", Count: 2}, summary.LeadsBySource[0])

	require.Len(t, pipeline.filters, 1)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), pipeline.filters[0].From)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), pipeline.filters[0].To)

	cached, hit, err := svc.Summary(context.Background(), adminScope())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, summary.Totals, cached.Totals)
	assert.Equal(t, 1, pipeline.calls)
}

func TestDashboardCachePartitionedByScope(t *testing.T) {
	pipeline := samplePipeline()
	cache := NewCacheService(newMemoryCache(), nil, time.Minute, nil, true)
	svc := NewDashboardService(DashboardServiceParams{Pipeline: pipeline, Cache: cache})

	_, _, err := svc.Summary(context.Background(), counselorScope("c-1"))
	require.NoError(t, err)
	_, hit, err := svc.Summary(context.Background(), counselorScope("c-2"))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, pipeline.calls)
}

func TestDashboardPipelineFailure(t *testing.T) {
	svc := NewDashboardService(DashboardServiceParams{Pipeline: &fakePipeline{err: errors.New("db down")}})
	_, _, err := svc.Summary(context.Background(), adminScope())
	requireCode(t, err, appErrors.ErrInternal.Code)
}

func TestCacheInvalidateRemovesDashboardEntries(t *testing.T) {
	store := newMemoryCache()
	cache := NewCacheService(store, nil, time.Minute, nil, true)
	cache.Set(context.Background(), "dash:all:2024-02", map[string]int{"a": 1}, 0)
	cache.Set(context.Background(), "dropdowns:leads", map[string]int{"b": 1}, 0)

	cache.Invalidate(context.Background(), dashboardCachePattern)
	assert.Equal(t, []string{"dash:all:2024-02"}, store.deleted)
	assert.Contains(t, store.entries, "dropdowns:leads")
}
