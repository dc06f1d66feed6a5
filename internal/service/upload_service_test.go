package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/educrm-api/pkg/errors"
	"github.com/noah-isme/educrm-api/pkg/storage"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

func multipartFile(t *testing.T, field, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	t.Cleanup(func() { _ = req.MultipartForm.RemoveAll() })
	return req.MultipartForm.File[field][0]
}

func newUploadFixture(t *testing.T, maxBytes int64) (*UploadService, string) {
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	return NewUploadService(store, nil, UploadConfig{PublicPath: "/uploads", MaxBytes: maxBytes}, nil), dir
}

func TestUploadStoresSniffedImage(t *testing.T) {
	svc, dir := newUploadFixture(t, 1024)
	header := multipartFile(t, "profilePicture", "avatar.txt", pngHeader)

	resp, err := svc.SaveProfilePicture(context.Background(), header)
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(resp.Filename))
	assert.Equal(t, "/uploads/"+resp.Filename, resp.URL)

	stored, err := os.ReadFile(filepath.Join(dir, resp.Filename))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)
}

func TestUploadRejectsNonImage(t *testing.T) {
	svc, _ := newUploadFixture(t, 1024)
	header := multipartFile(t, "profilePicture", "avatar.png", []byte("plain text pretending to be a picture"))

	_, err := svc.SaveProfilePicture(context.Background(), header)
	appErr := requireCode(t, err, appErrors.ErrValidation.Code)
	assert.Equal(t, "profilePicture", appErr.Details[0].Field)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	svc, _ := newUploadFixture(t, 8)
	header := multipartFile(t, "profilePicture", "avatar.png", pngHeader)

	_, err := svc.SaveProfilePicture(context.Background(), header)
	appErr := requireCode(t, err, appErrors.ErrValidation.Code)
	assert.Equal(t, "profilePicture", appErr.Details[0].Field)
}
