package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidName is returned for names that would escape the base directory.
	ErrInvalidName = errors.New("invalid file name")
	// ErrTooLarge is returned when a stream exceeds the write limit.
	ErrTooLarge = errors.New("file too large")
)

// LocalStorage persists files on disk under a base directory.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// Dir returns the base directory served to clients.
func (s *LocalStorage) Dir() string {
	return s.baseDir
}

// GenerateName builds a collision-free file name keeping the given extension.
func GenerateName(prefix, ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	name := fmt.Sprintf("%s-%d-%s", prefix, time.Now().UTC().Unix(), uuid.NewString()[:8])
	if ext == "" {
		return name
	}
	return name + "." + ext
}

// SaveStream copies from reader into filename under the base dir, writing at
// most limit bytes. It returns the number of bytes stored.
func (s *LocalStorage) SaveStream(filename string, r io.Reader, limit int64) (int64, error) {
	path, err := s.resolve(filename)
	if err != nil {
		return 0, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	n, err := io.Copy(file, src)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && limit > 0 && n > limit {
		err = fmt.Errorf("%w: limit %d bytes", ErrTooLarge, limit)
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, fmt.Errorf("write file: %w", err)
	}
	return n, nil
}

// Delete removes a stored file if present.
func (s *LocalStorage) Delete(filename string) error {
	path, err := s.resolve(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// Path exposes the on-disk path of a stored file.
func (s *LocalStorage) Path(filename string) (string, error) {
	return s.resolve(filename)
}

func (s *LocalStorage) resolve(filename string) (string, error) {
	clean := filepath.Base(filepath.Clean(filename))
	if clean != filename || clean == "." || clean == ".." || clean == string(filepath.Separator) {
		return "", ErrInvalidName
	}
	return filepath.Join(s.baseDir, clean), nil
}
