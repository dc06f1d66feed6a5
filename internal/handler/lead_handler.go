package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/educrm-api/internal/dto"
	"github.com/noah-isme/educrm-api/internal/models"
	"github.com/noah-isme/educrm-api/internal/service"
	"github.com/noah-isme/educrm-api/pkg/response"
)

// LeadHandler exposes lead endpoints.
type LeadHandler struct {
	leads *service.LeadService
}

// NewLeadHandler constructs LeadHandler.
func NewLeadHandler(leads *service.LeadService) *LeadHandler {
	return &LeadHandler{leads: leads}
}

// List godoc
// @Summary List leads
// @Description Unconverted leads visible to the caller
// @Tags Leads
// @Produce json
// @Param status query string false "Status"
// @Param source query string false "Source"
// @Param branch query string false "Branch"
// @Param counselorId query string false "Counselor"
// @Param isLost query bool false "Lost flag"
// @Param search query string false "Name or email"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /leads [get]
func (h *LeadHandler) List(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	filter := models.LeadFilter{
		Status:      query(c, "status"),
		Source:      query(c, "source"),
		Branch:      query(c, "branch"),
		CounselorID: query(c, "counselorId"),
		Search:      query(c, "search"),
		SortBy:      c.Query("sort"),
		SortOrder:   c.Query("order"),
	}
	if lost := query(c, "isLost"); lost != "" {
		if v, err := strconv.ParseBool(lost); err == nil {
			filter.IsLost = &v
		}
	}
	filter.Page, filter.PageSize = pageParams(c)

	leads, pagination, err := h.leads.List(c.Request.Context(), filter, scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, leads, pagination)
}

// Get godoc
// @Summary Get lead
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /leads/{id} [get]
func (h *LeadHandler) Get(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	lead, err := h.leads.Get(c.Request.Context(), id, scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lead, nil)
}

// Create godoc
// @Summary Create lead
// @Tags Leads
// @Accept json
// @Produce json
// @Param payload body dto.CreateLeadRequest true "Lead payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /leads [post]
func (h *LeadHandler) Create(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	var req dto.CreateLeadRequest
	if !bindJSON(c, &req, "invalid lead payload") {
		return
	}
	lead, err := h.leads.Create(c.Request.Context(), req, scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lead)
}

// Update godoc
// @Summary Update lead
// @Description Partial update; every changed field is recorded on the timeline
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param payload body dto.UpdateLeadRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /leads/{id} [put]
func (h *LeadHandler) Update(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	var req dto.UpdateLeadRequest
	if !bindJSON(c, &req, "invalid lead payload") {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	lead, err := h.leads.Update(c.Request.Context(), id, req, scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lead, nil)
}

// SetStatus godoc
// @Summary Change lead status
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param payload body dto.LeadStatusRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /leads/{id}/status [patch]
func (h *LeadHandler) SetStatus(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	var req dto.LeadStatusRequest
	if !bindJSON(c, &req, "invalid status payload") {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	lead, err := h.leads.SetStatus(c.Request.Context(), id, req, scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lead, nil)
}

// MarkLost godoc
// @Summary Mark lead as lost
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param payload body dto.MarkLostRequest true "Reason"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /leads/{id}/lost [post]
func (h *LeadHandler) MarkLost(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	var req dto.MarkLostRequest
	if !bindJSON(c, &req, "invalid lost payload") {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	lead, err := h.leads.MarkLost(c.Request.Context(), id, req, scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lead, nil)
}

// Delete godoc
// @Summary Delete lead
// @Tags Leads
// @Param id path string true "Lead ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /leads/{id} [delete]
func (h *LeadHandler) Delete(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.leads.Delete(c.Request.Context(), id, scope); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
