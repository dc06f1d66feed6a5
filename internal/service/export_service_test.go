package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/educrm-api/internal/models"
	"github.com/noah-isme/educrm-api/pkg/export"
)

type capturingRenderer struct {
	doc export.Document
	err error
}

func (r *capturingRenderer) Render(doc export.Document) ([]byte, error) {
	r.doc = doc
	if r.err != nil {
		return nil, r.err
	}
	return []byte("ok"), nil
}

func (r *capturingRenderer) ContentType() string { return "text/plain" }
func (r *capturingRenderer) Extension() string   { return "txt" }

func sampleReport() *models.Report {
	return &models.Report{
		From:        "2026-03-01",
		To:          "2026-03-31",
		Branch:      "Kathmandu",
		CounselorID: "c-1",
		Sections: []models.ReportSection{{
			Name:   "leads",
			Title:  "Leads by source",
			Total:  4,
			Groups: []models.GroupCount{{Key: "facebook", Count: 3}, {Key: "walk_in", Count: 1}},
		}},
	}
}

func TestExportDocumentCarriesFiltersAndTotals(t *testing.T) {
	csv := &capturingRenderer{}
	svc := NewExportService(ExportConfig{Title: "March"}, nil, csv, nil)

	result, err := svc.Render(sampleReport(), "CSV")
	require.NoError(t, err)
	assert.Equal(t, "pipeline-report-2026-03-01-2026-03-31.txt", result.Filename)
	assert.Equal(t, "March", csv.doc.Title)
	assert.Contains(t, csv.doc.Subtitle, "branch Kathmandu")
	assert.Contains(t, csv.doc.Subtitle, "counselor c-1")
	require.Len(t, csv.doc.Tables, 1)
	rows := csv.doc.Tables[0].Rows
	assert.Equal(t, []string{"Total", "4"}, rows[len(rows)-1])
}

func TestExportDefaultsToCSV(t *testing.T) {
	svc := NewExportService(ExportConfig{}, nil, nil, nil)
	result, err := svc.Render(sampleReport(), "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.Contains(string(result.Data), "facebook"))
}

func TestExportRendererFailureIsInternal(t *testing.T) {
	svc := NewExportService(ExportConfig{}, nil, nil, &capturingRenderer{err: errors.New("font missing")})
	_, err := svc.Render(sampleReport(), "pdf")
	requireCode(t, err, "INTERNAL_ERROR")
}
