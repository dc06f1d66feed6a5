package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/educrm-api/internal/dto"
	"github.com/noah-isme/educrm-api/internal/service"
	"github.com/noah-isme/educrm-api/pkg/response"
)

// ActivityHandler exposes entity timelines.
type ActivityHandler struct {
	activities *service.ActivityService
}

// NewActivityHandler constructs ActivityHandler.
func NewActivityHandler(activities *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activities: activities}
}

// Timeline godoc
// @Summary Entity timeline
// @Description Activities of one entity, newest first
// @Tags Activities
// @Produce json
// @Param entityType path string true "lead, student, application, admission or event"
// @Param entityId path string true "Entity ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /activities/{entityType}/{entityId} [get]
func (h *ActivityHandler) Timeline(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	entityID, ok := idParam(c, "entityId")
	if !ok {
		return
	}
	items, err := h.activities.Timeline(c.Request.Context(), c.Param("entityType"), entityID, scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Add note
// @Description Manual note or comment on an entity timeline
// @Tags Activities
// @Accept json
// @Produce json
// @Param payload body dto.CreateActivityRequest true "Note payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /activities [post]
func (h *ActivityHandler) Create(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	var req dto.CreateActivityRequest
	if !bindJSON(c, &req, "invalid activity payload") {
		return
	}
	activity, err := h.activities.AddNote(c.Request.Context(), req, scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, activity)
}
