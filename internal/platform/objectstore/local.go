package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore keeps objects as files below a root directory. The HTTP layer
// serves that directory under publicBaseURL.
type LocalStore struct {
	root          string
	publicBaseURL string
	logger        *slog.Logger
}

// NewLocalStore creates root if needed.
func NewLocalStore(root, publicBaseURL string, logger *slog.Logger) (*LocalStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	if publicBaseURL == "" {
		publicBaseURL = "/static"
	}
	return &LocalStore{
		root:          root,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger.With(slog.String("component", "local_store")),
	}, nil
}

var _ ObjectStore = (*LocalStore)(nil)

// Root returns the directory objects are written to.
func (l *LocalStore) Root() string {
	return l.root
}

func (l *LocalStore) path(key string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	return filepath.Join(l.root, filepath.FromSlash(key)), nil
}

// Put writes the object to disk, replacing any previous file.
func (l *LocalStore) Put(_ context.Context, key string, r io.Reader, size int64, _ string) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create object directory: %w", err)
	}

	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("create object file: %w", err)
	}
	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(p)
		return fmt.Errorf("write object file: %w", err)
	}
	if size >= 0 && n != size {
		_ = os.Remove(p)
		return fmt.Errorf("write object file: wrote %d of %d bytes", n, size)
	}

	l.logger.Debug("object stored", slog.String("key", key), slog.Int64("size", n))
	return nil
}

// URL returns publicBaseURL joined with key.
func (l *LocalStore) URL(_ context.Context, key string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	return l.publicBaseURL + "/" + key, nil
}

// Delete removes the file for key.
func (l *LocalStore) Delete(_ context.Context, key string) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete object file: %w", err)
	}
	return nil
}

// checkKey rejects keys that are empty, absolute or climb out of the root.
func checkKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return ErrInvalidKey
	}
	if cleaned := path.Clean(key); cleaned != key || cleaned == "." || strings.HasPrefix(cleaned, "../") || cleaned == ".." {
		return ErrInvalidKey
	}
	return nil
}
