package gcp

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// BlobStore is the bucket-scoped blob store consumed by the access-form
// service: read object bytes, write object bytes, derive a public URL.
type BlobStore struct {
	client *storage.Client
	bucket string
}

func NewBlobStore(client *storage.Client, bucket string) *BlobStore {
	return &BlobStore{client: client, bucket: bucket}
}

// GetBytes reads a whole object into memory. Templates and supporting
// documents are small enough that streaming to disk isn't worth it here.
func (s *BlobStore) GetBytes(ctx context.Context, object string) ([]byte, error) {
	reader, err := s.client.Bucket(s.bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open gs://%s/%s: %w", s.bucket, object, err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", s.bucket, object, err)
	}
	return data, nil
}

// PutBytes writes an object with the given content type.
func (s *BlobStore) PutBytes(ctx context.Context, object string, data []byte, contentType string) error {
	writeCtx, cancel := context.WithTimeout(ctx, 50*time.Second)
	defer cancel()

	writer := s.client.Bucket(s.bucket).Object(object).NewWriter(writeCtx)
	writer.ContentType = contentType
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write gs://%s/%s: %w", s.bucket, object, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize gs://%s/%s: %w", s.bucket, object, err)
	}
	return nil
}

// PublicURL returns the canonical download URL for an object.
func (s *BlobStore) PublicURL(object string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, object)
}

// ObjectPathFromURL extracts the object path from the reference formats the
// app stores: a bare object path, a gs:// URI, a storage.googleapis.com URL
// or a Firebase-style download URL with an escaped object path. Unrecognized
// references are returned unchanged.
func ObjectPathFromURL(ref string) string {
	switch {
	case strings.HasPrefix(ref, "gs://"):
		rest := strings.TrimPrefix(ref, "gs://")
		if _, object, ok := strings.Cut(rest, "/"); ok {
			return object
		}
		return rest
	case strings.Contains(ref, "storage.googleapis.com/"):
		_, rest, _ := strings.Cut(ref, "storage.googleapis.com/")
		if _, object, ok := strings.Cut(rest, "/"); ok {
			if unescaped, err := url.PathUnescape(object); err == nil {
				return unescaped
			}
			return object
		}
		return rest
	case strings.Contains(ref, "/o/"):
		// Firebase download URL: .../o/<escaped object>?alt=media
		_, rest, _ := strings.Cut(ref, "/o/")
		object, _, _ := strings.Cut(rest, "?")
		if unescaped, err := url.PathUnescape(object); err == nil {
			return unescaped
		}
		return object
	default:
		return ref
	}
}
