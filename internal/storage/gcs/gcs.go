package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"cloud.google.com/go/storage"
)

// Store backs the blob store with a Google Cloud Storage bucket.
type Store struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
	logger *slog.Logger
}

func New(ctx context.Context, bucketName string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &Store{
		client: client,
		bucket: client.Bucket(bucketName),
		name:   bucketName,
		logger: logger,
	}, nil
}

func (s *Store) Upload(ctx context.Context, key string, r io.Reader, contentType string) error {
	w := s.bucket.Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		s.logger.Error("gcs.upload_failed", "bucket", s.name, "key", key, "error", err)
		return fmt.Errorf("failed to write to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		s.logger.Error("gcs.upload_finalize_failed", "bucket", s.name, "key", key, "error", err)
		return fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return nil
}

func (s *Store) Download(ctx context.Context, key string) ([]byte, error) {
	r, err := s.bucket.Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open GCS object %q: %w", key, err)
	}
	defer func() {
		if err := r.Close(); err != nil {
			s.logger.Warn("gcs.reader_close_failed", "bucket", s.name, "key", key, "error", err)
		}
	}()
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read GCS object %q: %w", key, err)
	}
	return b, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Object(key).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil
		}
		return fmt.Errorf("failed to delete GCS object %q: %w", key, err)
	}
	return nil
}

func (s *Store) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	url, err := s.bucket.SignedURL(key, &storage.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign URL for %q: %w", key, err)
	}
	return url, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
