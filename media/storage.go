package media

import (
	"context"
	"io"
)

// ObjectStore persists processed images and yields the path callers embed
// in published content.
type ObjectStore interface {
	// Put stores the object under key. size may be -1 when unknown.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// AccessPath returns the public path or URL for a stored key.
	AccessPath(key string) string
}
