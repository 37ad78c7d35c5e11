package content

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// GCSStore adapts the Google Cloud Storage client to the BlobStore interface.
type GCSStore struct {
	client *storage.Client
}

// NewGCSStore wraps an initialized storage client.
func NewGCSStore(client *storage.Client) *GCSStore {
	return &GCSStore{client: client}
}

// Download reads the full object and returns bytes plus the stored content type.
func (s *GCSStore) Download(ctx context.Context, bucket, object string) ([]byte, string, error) {
	reader, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("open object: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", fmt.Errorf("read object: %w", err)
	}
	return data, reader.Attrs.ContentType, nil
}
