package content

import "context"

// Reference identifies a remotely stored blob by locator and declared MIME
// type. MIME may be empty, in which case it is inferred from the locator.
type Reference struct {
	Locator string `json:"uri" validate:"required"`
	MIME    string `json:"mime_type"`
}

// BlobStore abstracts read-only object storage access.
type BlobStore interface {
	// Download fetches the object and returns its bytes plus the stored
	// content-type header value (may be empty).
	Download(ctx context.Context, bucket, object string) ([]byte, string, error)
}
