package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/educrm-api/internal/dto"
	"github.com/noah-isme/educrm-api/internal/models"
	appErrors "github.com/noah-isme/educrm-api/pkg/errors"
)

const reportDateLayout = "2006-01-02"

// ReportService produces grouped pipeline counts over a date range.
type ReportService struct {
	pipeline pipelineReader
	exporter *ExportService
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportService constructs the report service.
func NewReportService(pipeline pipelineReader, exporter *ExportService, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if exporter == nil {
		exporter = NewExportService(ExportConfig{}, logger, nil, nil)
	}
	return &ReportService{pipeline: pipeline, exporter: exporter, logger: logger, now: time.Now}
}

// Build returns grouped counts for the query. from and to are inclusive days;
// they default to the current month up to today.
func (s *ReportService) Build(ctx context.Context, query dto.ReportQuery, scope models.Scope) (*models.Report, error) {
	filter, err := s.filter(query)
	if err != nil {
		return nil, err
	}

	leads, err := s.pipeline.Leads(ctx, filter, scope)
	if err != nil {
		return nil, reportFailure(err)
	}
	students, err := s.pipeline.Students(ctx, filter, scope)
	if err != nil {
		return nil, reportFailure(err)
	}
	apps, err := s.pipeline.Applications(ctx, filter, scope)
	if err != nil {
		return nil, reportFailure(err)
	}
	admissions, err := s.pipeline.Admissions(ctx, filter, scope)
	if err != nil {
		return nil, reportFailure(err)
	}

	counselorOf := func(l models.LeadFact) string {
		if l.CounselorID == nil {
			return ""
		}
		return *l.CounselorID
	}
	sections := []models.ReportSection{
		section("leadsByStatus", "Leads by status", len(leads), groupCount(leads, func(l models.LeadFact) string { return l.Status })),
		section("leadsBySource", "Leads by source", len(leads), groupCount(leads, func(l models.LeadFact) string { return l.Source })),
		section("leadsByBranch", "Leads by branch", len(leads), groupCount(leads, func(l models.LeadFact) string { return l.Branch })),
		section("leadsByCounselor", "Leads by counselor", len(leads), groupCount(leads, counselorOf)),
		section("studentsByStatus", "Students by status", len(students), groupCount(students, func(st models.StudentFact) string { return st.Status })),
		section("applicationsByUniversity", "Applications by university", len(apps), groupCount(apps, func(a models.ApplicationFact) string { return a.University })),
		section("applicationsByCountry", "Applications by country", len(apps), groupCount(apps, func(a models.ApplicationFact) string { return a.Country })),
		section("applicationsByStatus", "Applications by status", len(apps), groupCount(apps, func(a models.ApplicationFact) string { return a.AppStatus })),
		section("admissionsByVisaStatus", "Admissions by visa status", len(admissions), groupCount(admissions, func(a models.AdmissionFact) string { return a.VisaStatus })),
	}

	return &models.Report{
		From:        filter.From.Format(reportDateLayout),
		To:          filter.To.AddDate(0, 0, -1).Format(reportDateLayout),
		Branch:      filter.Branch,
		CounselorID: filter.CounselorID,
		Sections:    sections,
		GeneratedAt: s.now().UTC(),
	}, nil
}

// Export builds the report and renders it in query.Format.
func (s *ReportService) Export(ctx context.Context, query dto.ReportQuery, scope models.Scope) (*ExportResult, error) {
	report, err := s.Build(ctx, query, scope)
	if err != nil {
		return nil, err
	}
	return s.exporter.Render(report, query.Format)
}

func (s *ReportService) filter(query dto.ReportQuery) (models.PipelineFilter, error) {
	monthStart, _ := monthBounds(s.now())
	today := s.now().UTC().Truncate(24 * time.Hour)

	from := monthStart
	if query.From != "" {
		parsed, err := time.Parse(reportDateLayout, query.From)
		if err != nil {
			return models.PipelineFilter{}, reportDateError("from")
		}
		from = parsed
	}
	to := today
	if query.To != "" {
		parsed, err := time.Parse(reportDateLayout, query.To)
		if err != nil {
			return models.PipelineFilter{}, reportDateError("to")
		}
		to = parsed
	}
	if to.Before(from) {
		return models.PipelineFilter{}, appErrors.Validation("invalid report range", []appErrors.FieldError{{
			Field:   "to",
			Message: "must not be before from",
		}})
	}
	return models.PipelineFilter{
		From:        from,
		To:          to.AddDate(0, 0, 1),
		Branch:      query.Branch,
		CounselorID: query.CounselorID,
	}, nil
}

func section(name, title string, total int, groups []models.GroupCount) models.ReportSection {
	return models.ReportSection{Name: name, Title: title, Total: total, Groups: groups}
}

func reportDateError(field string) error {
	return appErrors.Validation("invalid report range", []appErrors.FieldError{{
		Field:   field,
		Message: "must be a date in YYYY-MM-DD format",
	}})
}

func reportFailure(err error) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build report")
}
