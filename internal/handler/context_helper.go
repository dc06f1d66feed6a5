package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/noah-isme/educrm-api/internal/middleware"
	"github.com/noah-isme/educrm-api/internal/models"
	appErrors "github.com/noah-isme/educrm-api/pkg/errors"
	"github.com/noah-isme/educrm-api/pkg/response"
	"github.com/noah-isme/educrm-api/pkg/validation"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

// requireScope writes a 401 and returns false when the request carries no
// verified identity.
func requireScope(c *gin.Context) (models.Scope, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.Scope{}, false
	}
	return claims.Scope(), true
}

// bindJSON decodes the body into dest, answering 400 on malformed JSON.
func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, validation.Bind(err, message))
		return false
	}
	return true
}

// idParam reads a UUID path parameter, answering 404 when it is malformed.
func idParam(c *gin.Context, name string) (string, bool) {
	raw := strings.TrimSpace(c.Param(name))
	if _, err := uuid.Parse(raw); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "resource not found"))
		return "", false
	}
	return raw, true
}

func pageParams(c *gin.Context) (int, int) {
	page, size := 1, 20
	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		page = v
	}
	limit := c.Query("limit")
	if limit == "" {
		limit = c.Query("pageSize")
	}
	if v, err := strconv.Atoi(limit); err == nil {
		size = v
	}
	return page, size
}

func query(c *gin.Context, key string) string {
	return strings.TrimSpace(c.Query(key))
}

// dateQuery parses an optional date query parameter, answering 400 naming
// the parameter when it is malformed.
func dateQuery(c *gin.Context, key string) (*time.Time, bool) {
	raw := query(c, key)
	if raw == "" {
		return nil, true
	}
	t, err := validation.ParseDate(key, raw)
	if err != nil {
		response.Error(c, validation.Bind(err, "invalid query"))
		return nil, false
	}
	return &t, true
}
