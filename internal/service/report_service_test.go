package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/educrm-api/internal/dto"
	"github.com/noah-isme/educrm-api/internal/models"
	appErrors "github.com/noah-isme/educrm-api/pkg/errors"
)

func newReportFixture() (*ReportService, *fakePipeline) {
	pipeline := samplePipeline()
	svc := NewReportService(pipeline, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 2, 14, 9, 0, 0, 0, time.UTC) }
	return svc, pipeline
}

func TestReportBuildGroupsEverySection(t *testing.T) {
	svc, pipeline := newReportFixture()

	report, err := svc.Build(context.Background(), dto.ReportQuery{From: "2024-01-01", To: "2024-01-31", Branch: "Lagos"}, adminScope())
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01", report.From)
	assert.Equal(t, "2024-01-31", report.To)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), pipeline.filters[0].To)
	assert.Equal(t, "Lagos", pipeline.filters[0].Branch)

	sections := map[string]models.ReportSection{}
	for _, s := range report.Sections {
		sections[s.Name] = s
	}
	require.Len(t, sections, 9)
	assert.Equal(t, 4, sections["leadsBySource"].Total)
	assert.Contains(t, sections["leadsBySource"].Groups, models.GroupCount{Key: "unassigned", Count: 1})
	assert.Equal(t, []models.GroupCount{{Key: "Leeds", Count: 2}}, sections["applicationsByUniversity"].Groups)
	assert.Equal(t, []models.GroupCount{{Key: "approved", Count: 1}}, sections["admissionsByVisaStatus"].Groups)
}

func TestReportDefaultsToCurrentMonth(t *testing.T) {
	svc, _ := newReportFixture()
	report, err := svc.Build(context.Background(), dto.ReportQuery{}, adminScope())
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", report.From)
	assert.Equal(t, "2024-02-14", report.To)
}

func TestReportRejectsBadRange(t *testing.T) {
	svc, _ := newReportFixture()

	_, err := svc.Build(context.Background(), dto.ReportQuery{From: "01/01/2024"}, adminScope())
	appErr := requireCode(t, err, appErrors.ErrValidation.Code)
	assert.Equal(t, "from", appErr.Details[0].Field)

	_, err = svc.Build(context.Background(), dto.ReportQuery{From: "2024-02-10", To: "2024-02-01"}, adminScope())
	appErr = requireCode(t, err, appErrors.ErrValidation.Code)
	assert.Equal(t, "to", appErr.Details[0].Field)
}

func TestReportExportCSV(t *testing.T) {
	svc, _ := newReportFixture()
	result, err := svc.Export(context.Background(), dto.ReportQuery{From: "2024-01-01", To: "2024-01-31"}, adminScope())
	require.NoError(t, err)

	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "pipeline-report-2024-01-01-2024-01-31.csv", result.Filename)
	text := string(result.Data)
	assert.True(t, strings.HasPrefix(text, "Pipeline Report,2024-01-01 to 2024-01-31\n"))
	assert.Contains(t, text, "Leads by status\nKey,Count\nnew,2\n")
	assert.Contains(t, text, "Total,4\n")
}

func TestReportExportPDF(t *testing.T) {
	svc, _ := newReportFixture()
	result, err := svc.Export(context.Background(), dto.ReportQuery{Format: "PDF"}, adminScope())
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, bytes.HasPrefix(result.Data, []byte("%PDF")))
}

func TestReportExportUnknownFormat(t *testing.T) {
	svc, _ := newReportFixture()
	_, err := svc.Export(context.Background(), dto.ReportQuery{Format: "xlsx"}, adminScope())
	appErr := requireCode(t, err, appErrors.ErrValidation.Code)
	assert.Equal(t, "format", appErr.Details[0].Field)
}
