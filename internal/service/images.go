package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/bookreviews-api/internal/platform/logger"
	"github.com/phrazzld/bookreviews-api/internal/platform/objectstore"
)

// Object key prefixes for uploaded images.
const (
	coverPrefix   = "book-covers"
	profilePrefix = "profiles"
)

// images turns image fields of requests into stored object keys and stored
// keys back into URLs clients can fetch.
//
// A stored image path is either an object key written by this service or an
// external http(s) URL kept verbatim.
type images struct {
	objects objectstore.ObjectStore
	logger  *slog.Logger
}

func newImages(objects objectstore.ObjectStore, logger *slog.Logger) *images {
	return &images{objects: objects, logger: logger}
}

// upload is the result of resolving an image field.
type upload struct {
	// Path is the value to persist.
	Path string
	// Key is set when a new object was written and must be removed if the
	// surrounding write fails.
	Key string
}

func isExternalURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// resolve decides what to persist for an image field. An empty value keeps
// current. A data URL is uploaded under prefix. An http(s) URL, or the
// current path or its public URL, is kept. Anything else is rejected.
func (m *images) resolve(ctx context.Context, prefix, suffix, value, current string) (upload, error) {
	value = strings.TrimSpace(value)
	switch {
	case value == "" || value == current:
		return upload{Path: current}, nil
	case objectstore.IsDataURL(value):
		return m.put(ctx, prefix, suffix, value)
	case current != "" && sameURL(value, m.url(ctx, current)):
		return upload{Path: current}, nil
	case isExternalURL(value):
		return upload{Path: value}, nil
	default:
		return upload{}, fmt.Errorf("%w: expected a data URL or an http(s) URL", ErrInvalidImage)
	}
}

func (m *images) put(ctx context.Context, prefix, suffix, dataURL string) (upload, error) {
	img, err := objectstore.DecodeImageDataURL(dataURL)
	if err != nil {
		return upload{}, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	if m.objects == nil {
		return upload{}, fmt.Errorf("%w: image storage is not configured", ErrInvalidImage)
	}

	key := fmt.Sprintf("%s/%s_%s.%s", prefix, uuid.NewString(), suffix, img.Extension)
	if err := m.objects.Put(ctx, key, img.Reader(), int64(len(img.Data)), img.ContentType); err != nil {
		return upload{}, fmt.Errorf("failed to store image: %w", err)
	}

	logger.FromContextOrDefault(ctx, m.logger).Debug("image stored",
		slog.String("key", key),
		slog.Int("bytes", len(img.Data)))
	return upload{Path: key, Key: key}, nil
}

// url returns the public URL for a stored image path. Failures are logged
// and yield an empty string so that reads never fail on a missing image.
func (m *images) url(ctx context.Context, path string) string {
	if path == "" || isExternalURL(path) || strings.HasPrefix(path, "/") || m.objects == nil {
		return path
	}
	u, err := m.objects.URL(ctx, path)
	if err != nil {
		logger.FromContextOrDefault(ctx, m.logger).Warn("failed to resolve image URL",
			slog.String("key", path),
			slog.String("error", err.Error()))
		return ""
	}
	return u
}

// remove deletes an object written by put. Other paths are left alone.
func (m *images) remove(ctx context.Context, path string) {
	if m.objects == nil || !isObjectKey(path) {
		return
	}
	if err := m.objects.Delete(ctx, path); err != nil {
		logger.FromContextOrDefault(ctx, m.logger).Warn("failed to delete image",
			slog.String("key", path),
			slog.String("error", err.Error()))
	}
}

// replaced removes old when a write swapped it for a different path.
func (m *images) replaced(ctx context.Context, old, current string) {
	if old != "" && old != current {
		m.remove(ctx, old)
	}
}

// discard removes a fresh upload after the write that referenced it failed.
func (m *images) discard(ctx context.Context, u upload) {
	if u.Key != "" {
		m.remove(ctx, u.Key)
	}
}

// sameURL compares two URLs ignoring the query, which carries the
// signature of presigned URLs.
func sameURL(a, b string) bool {
	a, _, _ = strings.Cut(a, "?")
	b, _, _ = strings.Cut(b, "?")
	return a != "" && a == b
}

func isObjectKey(path string) bool {
	return strings.HasPrefix(path, coverPrefix+"/") || strings.HasPrefix(path, profilePrefix+"/")
}
