// Package objectstore stores uploaded book covers and profile pictures,
// either in a MinIO/S3 bucket or on the local filesystem.
package objectstore

import (
	"context"
	"errors"
	"io"
)

// ErrInvalidKey is returned for empty keys or keys escaping the store root.
var ErrInvalidKey = errors.New("invalid object key")

// ObjectStore provides access to object storage.
type ObjectStore interface {
	// Put uploads an object under key.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// URL returns an address clients can fetch the object from.
	URL(ctx context.Context, key string) (string, error)

	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
}
