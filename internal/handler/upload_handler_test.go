package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/educrm-api/internal/service"
	"github.com/noah-isme/educrm-api/pkg/storage"
)

var onePixelPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89,
}

func uploadRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload/profile-picture", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func uploadRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := service.NewUploadService(store, nil, service.UploadConfig{PublicPath: "/uploads"}, zap.NewNop())
	r := gin.New()
	r.POST("/upload/profile-picture", NewUploadHandler(svc).ProfilePicture)
	return r
}

func TestUploadProfilePicture(t *testing.T) {
	rec := httptest.NewRecorder()
	uploadRouter(t).ServeHTTP(rec, uploadRequest(t, "profilePicture", "me.png", onePixelPNG))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"url":"/uploads/profile-`)
}

func TestUploadRequiresField(t *testing.T) {
	rec := httptest.NewRecorder()
	uploadRouter(t).ServeHTTP(rec, uploadRequest(t, "avatar", "me.png", onePixelPNG))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"profilePicture"`)
}

func TestUploadRejectsText(t *testing.T) {
	rec := httptest.NewRecorder()
	uploadRouter(t).ServeHTTP(rec, uploadRequest(t, "profilePicture", "notes.png", []byte("just some text")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
