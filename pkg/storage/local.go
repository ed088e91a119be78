package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kidoralabs/kidora-backend/pkg/config"
)

// Store persists uploaded media and returns a public URL for it.
type Store interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	SaveFromURL(ctx context.Context, sourceURL string) (string, error)
	Delete(ctx context.Context, publicURL string) error
}

// Local keeps files on disk under a single root directory and serves
// them through the static file route.
type Local struct {
	rootDir string
	baseURL string
	maxSize int64
	client  *http.Client
}

// NewLocal prepares the upload directory.
func NewLocal(cfg config.MediaConfig) (*Local, error) {
	if err := os.MkdirAll(cfg.RootDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating media root %s: %w", cfg.RootDir, err)
	}
	maxSize := int64(cfg.MaxUploadMB) * 1024 * 1024
	if maxSize <= 0 {
		maxSize = 10 * 1024 * 1024
	}
	return &Local{
		rootDir: cfg.RootDir,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		maxSize: maxSize,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Save writes the stream to disk under a generated name. The original
// extension is kept so browsers infer the content type.
func (l *Local) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	name := uuid.NewString() + sanitizeExt(filename)
	dest := filepath.Join(l.rootDir, name)

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", dest, err)
	}
	defer f.Close()

	written, err := io.Copy(f, io.LimitReader(r, l.maxSize+1))
	if err != nil {
		_ = os.Remove(dest)
		return "", fmt.Errorf("writing %s: %w", dest, err)
	}
	if written > l.maxSize {
		_ = os.Remove(dest)
		return "", fmt.Errorf("upload exceeds %d bytes", l.maxSize)
	}

	return l.baseURL + "/" + name, nil
}

// SaveFromURL downloads a remote image and stores it locally.
func (l *Local) SaveFromURL(ctx context.Context, sourceURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("building download request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", sourceURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading %s: status %d", sourceURL, resp.StatusCode)
	}

	return l.Save(ctx, path.Base(sourceURL), resp.Body)
}

// Delete removes a previously stored file. Unknown URLs are ignored so
// cleanup stays idempotent.
func (l *Local) Delete(ctx context.Context, publicURL string) error {
	name := path.Base(publicURL)
	if name == "" || name == "." || name == "/" {
		return nil
	}
	dest := filepath.Join(l.rootDir, name)
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", dest, err)
	}
	return nil
}

// RootDir exposes the storage root for the static file route.
func (l *Local) RootDir() string {
	return l.rootDir
}

func sanitizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 8 {
		return ""
	}
	for _, r := range ext {
		if r != '.' && (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
