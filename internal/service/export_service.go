package service

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/educrm-api/internal/models"
	appErrors "github.com/noah-isme/educrm-api/pkg/errors"
	"github.com/noah-isme/educrm-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	Title string
}

// ExportResult is a rendered report ready for download.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders reports into downloadable documents.
type ExportService struct {
	renderers map[string]export.Renderer
	logger    *zap.Logger
	cfg       ExportConfig
}

// NewExportService constructs an ExportService. Nil renderers fall back to the
// package defaults.
func NewExportService(cfg ExportConfig, logger *zap.Logger, csv, pdf export.Renderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if cfg.Title == "" {
		cfg.Title = "Pipeline Report"
	}
	return &ExportService{
		renderers: map[string]export.Renderer{ExportFormatCSV: csv, ExportFormatPDF: pdf},
		logger:    logger,
		cfg:       cfg,
	}
}

// Render turns report into the requested format. An empty format means CSV.
func (s *ExportService) Render(report *models.Report, format string) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Validation("invalid export format", []appErrors.FieldError{{
			Field:   "format",
			Message: "must be one of [csv pdf]",
		}})
	}

	data, err := renderer.Render(reportDocument(s.cfg.Title, report))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	s.logger.Info("report exported",
		zap.String("format", format),
		zap.String("from", report.From),
		zap.String("to", report.To),
		zap.Int("bytes", len(data)),
	)
	return &ExportResult{
		Filename:    fmt.Sprintf("pipeline-report-%s-%s.%s", report.From, report.To, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}

func reportDocument(title string, report *models.Report) export.Document {
	subtitle := fmt.Sprintf("%s to %s", report.From, report.To)
	if report.Branch != "" {
		subtitle += ", branch " + report.Branch
	}
	if report.CounselorID != "" {
		subtitle += ", counselor " + report.CounselorID
	}
	doc := export.Document{Title: title, Subtitle: subtitle}
	for _, section := range report.Sections {
		table := export.Table{Title: section.Title, Headers: []string{"Key", "Count"}}
		for _, g := range section.Groups {
			table.Rows = append(table.Rows, []string{g.Key, strconv.Itoa(g.Count)})
		}
		table.Rows = append(table.Rows, []string{"Total", strconv.Itoa(section.Total)})
		doc.Tables = append(doc.Tables, table)
	}
	return doc
}
