package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/educrm-api/internal/service"
	"github.com/noah-isme/educrm-api/pkg/response"
)

// SearchHandler runs scoped free-text lookups.
type SearchHandler struct {
	leads    *service.LeadService
	students *service.StudentService
}

// NewSearchHandler constructs SearchHandler.
func NewSearchHandler(leads *service.LeadService, students *service.StudentService) *SearchHandler {
	return &SearchHandler{leads: leads, students: students}
}

// Leads godoc
// @Summary Search leads
// @Description Matches name, email, program and countries
// @Tags Search
// @Produce json
// @Param q query string true "Search text"
// @Success 200 {object} response.Envelope
// @Router /search/leads [get]
func (h *SearchHandler) Leads(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	leads, err := h.leads.Search(c.Request.Context(), query(c, "q"), scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, leads, nil)
}

// Students godoc
// @Summary Search students
// @Description Matches name, email, target program and target country
// @Tags Search
// @Produce json
// @Param q query string true "Search text"
// @Success 200 {object} response.Envelope
// @Router /search/students [get]
func (h *SearchHandler) Students(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	students, err := h.students.Search(c.Request.Context(), query(c, "q"), scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}
