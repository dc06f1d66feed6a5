package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/educrm-api/internal/dto"
	"github.com/noah-isme/educrm-api/internal/service"
	"github.com/noah-isme/educrm-api/pkg/response"
)

// DropdownHandler serves and administers lookup lists.
type DropdownHandler struct {
	dropdowns *service.DropdownService
}

// NewDropdownHandler constructs DropdownHandler.
func NewDropdownHandler(dropdowns *service.DropdownService) *DropdownHandler {
	return &DropdownHandler{dropdowns: dropdowns}
}

// All godoc
// @Summary All lookup lists
// @Tags Dropdowns
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dropdowns [get]
func (h *DropdownHandler) All(c *gin.Context) {
	groups, err := h.dropdowns.All(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}

// Module godoc
// @Summary Lookup lists of a module
// @Tags Dropdowns
// @Produce json
// @Param module path string true "leads, students, applications, admissions or events"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /dropdowns/{module} [get]
func (h *DropdownHandler) Module(c *gin.Context) {
	group, err := h.dropdowns.Module(c.Request.Context(), c.Param("module"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}

// Create godoc
// @Summary Add lookup value
// @Tags Dropdowns
// @Accept json
// @Produce json
// @Param payload body dto.DropdownRequest true "Lookup value"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /dropdowns [post]
func (h *DropdownHandler) Create(c *gin.Context) {
	var req dto.DropdownRequest
	if !bindJSON(c, &req, "invalid dropdown payload") {
		return
	}
	row, err := h.dropdowns.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, row)
}

// Update godoc
// @Summary Replace lookup value
// @Tags Dropdowns
// @Accept json
// @Produce json
// @Param id path string true "Dropdown ID"
// @Param payload body dto.DropdownRequest true "Lookup value"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /dropdowns/{id} [put]
func (h *DropdownHandler) Update(c *gin.Context) {
	var req dto.DropdownRequest
	if !bindJSON(c, &req, "invalid dropdown payload") {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	row, err := h.dropdowns.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, row, nil)
}

// Delete godoc
// @Summary Remove lookup value
// @Tags Dropdowns
// @Param id path string true "Dropdown ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /dropdowns/{id} [delete]
func (h *DropdownHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.dropdowns.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
