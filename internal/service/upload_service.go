package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/educrm-api/internal/dto"
	appErrors "github.com/noah-isme/educrm-api/pkg/errors"
	"github.com/noah-isme/educrm-api/pkg/storage"
)

const (
	profilePictureField = "profilePicture"
	sniffLength         = 512
)

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

type fileStore interface {
	SaveStream(filename string, r io.Reader, limit int64) (int64, error)
}

// UploadConfig controls accepted uploads.
type UploadConfig struct {
	PublicPath   string
	MaxBytes     int64
	AllowedMIMEs []string
}

// UploadService stores profile pictures.
type UploadService struct {
	store   fileStore
	metrics *MetricsService
	logger  *zap.Logger
	cfg     UploadConfig
}

// NewUploadService constructs an UploadService.
func NewUploadService(store fileStore, metrics *MetricsService, cfg UploadConfig, logger *zap.Logger) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 5 * 1024 * 1024
	}
	if cfg.PublicPath == "" {
		cfg.PublicPath = "/uploads"
	}
	if len(cfg.AllowedMIMEs) == 0 {
		for mime := range imageExtensions {
			cfg.AllowedMIMEs = append(cfg.AllowedMIMEs, mime)
		}
	}
	return &UploadService{store: store, metrics: metrics, logger: logger, cfg: cfg}
}

// SaveProfilePicture validates and stores an uploaded image. The type is taken
// from the file content, not the client supplied header.
func (s *UploadService) SaveProfilePicture(ctx context.Context, header *multipart.FileHeader) (*dto.UploadResponse, error) {
	if header == nil {
		return nil, s.reject("is required")
	}
	if header.Size > s.cfg.MaxBytes {
		return nil, s.reject(fmt.Sprintf("must be at most %d bytes", s.cfg.MaxBytes))
	}

	file, err := header.Open()
	if err != nil {
		s.metrics.RecordUpload("failed")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
	}
	defer file.Close()

	head := make([]byte, sniffLength)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		s.metrics.RecordUpload("failed")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
	}
	head = head[:n]
	if n == 0 {
		return nil, s.reject("must not be empty")
	}

	mime := http.DetectContentType(head)
	ext, ok := imageExtensions[mime]
	if !ok || !s.allowed(mime) {
		return nil, s.reject(fmt.Sprintf("must be an image (%s), got %s", strings.Join(s.cfg.AllowedMIMEs, ", "), mime))
	}

	filename := storage.GenerateName("profile", ext)
	if _, err := s.store.SaveStream(filename, io.MultiReader(bytes.NewReader(head), file), s.cfg.MaxBytes); err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, s.reject(fmt.Sprintf("must be at most %d bytes", s.cfg.MaxBytes))
		}
		s.metrics.RecordUpload("failed")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store upload")
	}

	s.metrics.RecordUpload("accepted")
	s.logger.Info("profile picture stored", zap.String("filename", filename), zap.String("mime", mime))
	return &dto.UploadResponse{
		URL:      path.Join(s.cfg.PublicPath, filename),
		Filename: filename,
	}, nil
}

func (s *UploadService) allowed(mime string) bool {
	for _, m := range s.cfg.AllowedMIMEs {
		if strings.EqualFold(m, mime) {
			return true
		}
	}
	return false
}

func (s *UploadService) reject(message string) error {
	s.metrics.RecordUpload("rejected")
	return appErrors.Validation("invalid upload", []appErrors.FieldError{{Field: profilePictureField, Message: message}})
}
