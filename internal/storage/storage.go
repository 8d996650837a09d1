package storage

import (
	"context"
	"io"
	"time"
)

// BlobStore is the narrow key-value blob interface the pipeline consumes.
// Document content lives here; nothing in the core ever lists or scans it.
type BlobStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
