package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/wooftrace/wooftrace-backend/pkg/config"
	"github.com/wooftrace/wooftrace-backend/pkg/logger"
)

// PublicPrefix is the URL path the stored files are served under.
const PublicPrefix = "/uploads"

// ErrTooLarge is returned when an upload exceeds the configured size cap.
var ErrTooLarge = errors.New("upload exceeds size limit")

// ErrUnsupportedType is returned for extensions outside the image whitelist.
var ErrUnsupportedType = errors.New("unsupported file type")

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Store writes uploads to a local directory and serves them back over HTTP.
type Store struct {
	dir      string
	maxBytes int64
}

func NewStore(cfg config.UploadsConfig, logg *logger.Logger) (*Store, error) {
	if cfg.Dir == "" {
		return nil, errors.New("uploads directory required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads directory: %w", err)
	}
	maxMB := cfg.MaxUploadMB
	if maxMB <= 0 {
		maxMB = 10
	}
	store := &Store{dir: cfg.Dir, maxBytes: int64(maxMB) << 20}
	if logg != nil {
		logg.Info(logg.WithField(context.Background(), "dir", cfg.Dir), "uploads store initialized")
	}
	return store, nil
}

// MaxBytes returns the configured upload size cap.
func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// Save streams the upload to disk under a random name that keeps the
// original extension, and returns the public URL path. Reads past the size
// cap abort with ErrTooLarge and leave nothing behind.
func (s *Store) Save(_ context.Context, originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedType
	}

	name := uuid.NewString() + ext
	dst := filepath.Join(s.dir, name)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}

	written, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	closeErr := f.Close()
	if err == nil && written > s.maxBytes {
		err = ErrTooLarge
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dst)
		if errors.Is(err, ErrTooLarge) {
			return "", ErrTooLarge
		}
		return "", fmt.Errorf("writing upload: %w", err)
	}

	return path.Join(PublicPrefix, name), nil
}

// Remove deletes a previously stored file given its public URL path. Paths
// outside the uploads directory are rejected.
func (s *Store) Remove(_ context.Context, publicPath string) error {
	name := path.Base(publicPath)
	if name == "." || name == "/" || strings.Contains(name, "..") {
		return fmt.Errorf("invalid upload path %q", publicPath)
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing upload: %w", err)
	}
	return nil
}

// Handler serves the uploads directory; mount it at PublicPrefix.
func (s *Store) Handler() http.Handler {
	return http.StripPrefix(PublicPrefix, http.FileServer(http.Dir(s.dir)))
}
