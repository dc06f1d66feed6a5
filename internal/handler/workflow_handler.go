package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/educrm-api/internal/service"
	"github.com/noah-isme/educrm-api/pkg/response"
)

// WorkflowHandler serves status progress metadata.
type WorkflowHandler struct {
	workflows *service.WorkflowService
}

// NewWorkflowHandler constructs WorkflowHandler.
func NewWorkflowHandler(workflows *service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{workflows: workflows}
}

// List godoc
// @Summary Entities with a status workflow
// @Tags Workflow
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /workflow [get]
func (h *WorkflowHandler) List(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.workflows.Entities(), nil)
}

// Describe godoc
// @Summary Status steps of an entity
// @Description Ordered steps with allowed targets, for progress bars
// @Tags Workflow
// @Produce json
// @Param entity path string true "lead, application or admission"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /workflow/{entity} [get]
func (h *WorkflowHandler) Describe(c *gin.Context) {
	view, err := h.workflows.Describe(c.Request.Context(), c.Param("entity"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
