package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/educrm-api/internal/dto"
	"github.com/noah-isme/educrm-api/internal/models"
	"github.com/noah-isme/educrm-api/internal/service"
	"github.com/noah-isme/educrm-api/pkg/response"
	"github.com/noah-isme/educrm-api/pkg/validation"
)

type reportService interface {
	Build(ctx context.Context, query dto.ReportQuery, scope models.Scope) (*models.Report, error)
	Export(ctx context.Context, query dto.ReportQuery, scope models.Scope) (*service.ExportResult, error)
}

// ReportHandler exposes pipeline reports.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Pipeline godoc
// @Summary Pipeline report
// @Description Grouped counts for leads, students, applications and admissions
// @Tags Reports
// @Produce json
// @Param from query string false "From date (YYYY-MM-DD), defaults to month start"
// @Param to query string false "To date inclusive (YYYY-MM-DD), defaults to today"
// @Param branch query string false "Branch"
// @Param counselorId query string false "Counselor"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports [get]
func (h *ReportHandler) Pipeline(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	var q dto.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, validation.Bind(err, "invalid report query"))
		return
	}
	report, err := h.reports.Build(c.Request.Context(), q, scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Export godoc
// @Summary Download pipeline report
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date inclusive (YYYY-MM-DD)"
// @Param branch query string false "Branch"
// @Param counselorId query string false "Counselor"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /reports/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	var q dto.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, validation.Bind(err, "invalid report query"))
		return
	}
	result, err := h.reports.Export(c.Request.Context(), q, scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
