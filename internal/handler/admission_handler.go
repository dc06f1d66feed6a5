package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/educrm-api/internal/dto"
	"github.com/noah-isme/educrm-api/internal/models"
	"github.com/noah-isme/educrm-api/internal/service"
	"github.com/noah-isme/educrm-api/pkg/response"
)

// AdmissionHandler exposes admission endpoints.
type AdmissionHandler struct {
	admissions *service.AdmissionService
}

// NewAdmissionHandler constructs AdmissionHandler.
func NewAdmissionHandler(admissions *service.AdmissionService) *AdmissionHandler {
	return &AdmissionHandler{admissions: admissions}
}

// List godoc
// @Summary List admissions
// @Tags Admissions
// @Produce json
// @Param studentId query string false "Student"
// @Param applicationId query string false "Application"
// @Param visaStatus query string false "Visa status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admissions [get]
func (h *AdmissionHandler) List(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	filter := models.AdmissionFilter{
		StudentID:     query(c, "studentId"),
		ApplicationID: query(c, "applicationId"),
		VisaStatus:    query(c, "visaStatus"),
		SortBy:        c.Query("sort"),
		SortOrder:     c.Query("order"),
	}
	filter.Page, filter.PageSize = pageParams(c)

	admissions, pagination, err := h.admissions.List(c.Request.Context(), filter, scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, admissions, pagination)
}

// Get godoc
// @Summary Get admission
// @Tags Admissions
// @Produce json
// @Param id path string true "Admission ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admissions/{id} [get]
func (h *AdmissionHandler) Get(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	admission, err := h.admissions.Get(c.Request.Context(), id, scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, admission, nil)
}

// Create godoc
// @Summary Create admission
// @Tags Admissions
// @Accept json
// @Produce json
// @Param payload body dto.CreateAdmissionRequest true "Admission payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admissions [post]
func (h *AdmissionHandler) Create(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	var req dto.CreateAdmissionRequest
	if !bindJSON(c, &req, "invalid admission payload") {
		return
	}
	admission, err := h.admissions.Create(c.Request.Context(), req, scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, admission)
}

// Update godoc
// @Summary Update admission
// @Tags Admissions
// @Accept json
// @Produce json
// @Param id path string true "Admission ID"
// @Param payload body dto.UpdateAdmissionRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admissions/{id} [put]
func (h *AdmissionHandler) Update(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	var req dto.UpdateAdmissionRequest
	if !bindJSON(c, &req, "invalid admission payload") {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	admission, err := h.admissions.Update(c.Request.Context(), id, req, scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, admission, nil)
}

// Delete godoc
// @Summary Delete admission
// @Tags Admissions
// @Param id path string true "Admission ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admissions/{id} [delete]
func (h *AdmissionHandler) Delete(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.admissions.Delete(c.Request.Context(), id, scope); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
