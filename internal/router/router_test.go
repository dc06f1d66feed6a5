package router

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/noah-isme/educrm-api/internal/handler"
	"github.com/noah-isme/educrm-api/internal/models"
	"github.com/noah-isme/educrm-api/internal/service"
	appErrors "github.com/noah-isme/educrm-api/pkg/errors"
)

type staticTokens map[string]*models.JWTClaims

func (s staticTokens) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Wrap(errors.New("unknown token"), appErrors.ErrUnauthorized.Code, http.StatusUnauthorized, "invalid token")
}

func testEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	tokens := staticTokens{
		"counselor": {UserID: "u1", Role: models.RoleCounselor},
	}
	return New(Options{APIPrefix: "/api"}, zap.NewNop(), service.NewMetricsService(), tokens, Handlers{
		Metrics: handler.NewMetricsHandler(service.NewMetricsService(), nil),
	})
}

func serve(r *gin.Engine, method, path, token string) int {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec.Code
}

func TestPublicProbes(t *testing.T) {
	r := testEngine()
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health", ""))
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ready", ""))
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/metrics", ""))
}

func TestSecuredRoutesNeedToken(t *testing.T) {
	r := testEngine()
	for _, path := range []string{"/api/leads", "/api/students", "/api/dashboard", "/api/reports", "/api/auth/me"} {
		assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, path, ""), path)
		assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, path, "forged"), path)
	}
}

func TestAdminRoutesRejectCounselors(t *testing.T) {
	r := testEngine()
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/api/users", "counselor"))
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodPost, "/api/dropdowns", "counselor"))
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodPost, "/api/universities", "counselor"))
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/api/users/u2", "counselor"))
}

func TestUnknownRoute(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, serve(testEngine(), http.MethodGet, "/api/nothing-here", ""))
}
