package content

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"mime"
	"path"
	"strings"
)

// Resolver fetches referenced blobs and settles their MIME types.
type Resolver struct {
	store  BlobStore
	logger *slog.Logger
}

// NewResolver creates a resolver over the given blob store.
func NewResolver(log *slog.Logger, store BlobStore) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{
		store:  store,
		logger: log.With(slog.String("service", "content")),
	}
}

// Resolve downloads the referenced blob and returns its bytes and MIME type.
// The declared MIME type wins; when empty it is inferred from the locator
// extension, and inference failure is a hard error for the reference.
func (r *Resolver) Resolve(ctx context.Context, ref Reference) ([]byte, string, error) {
	bucket, object, err := SplitLocator(ref.Locator)
	if err != nil {
		return nil, "", err
	}

	data, storedType, err := r.store.Download(ctx, bucket, object)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", ref.Locator, err)
	}

	mimeType := strings.TrimSpace(ref.MIME)
	if mimeType == "" {
		mimeType = inferMime(ref.Locator, storedType)
		if mimeType == "" {
			return nil, "", fmt.Errorf("%s: %w", ref.Locator, ErrMimeUnresolvable)
		}
	}

	r.logger.Debug("resolved content",
		slog.String("locator", ref.Locator),
		slog.String("mime", mimeType),
		slog.Int("bytes", len(data)))
	return data, mimeType, nil
}

// SplitLocator parses a gs://bucket/object locator.
func SplitLocator(locator string) (bucket, object string, err error) {
	trimmed, ok := strings.CutPrefix(locator, "gs://")
	if !ok {
		return "", "", fmt.Errorf("%q: %w", locator, ErrBadLocator)
	}
	bucket, object, ok = strings.Cut(trimmed, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("%q: %w", locator, ErrBadLocator)
	}
	return bucket, object, nil
}

// Fingerprint returns the hex SHA-256 digest of the raw bytes. Byte-identical
// content fingerprints equal regardless of where it was fetched from.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func inferMime(locator, storedType string) string {
	if t := mime.TypeByExtension(path.Ext(locator)); t != "" {
		// Strip parameters such as charset; callers want the bare type.
		if mediaType, _, err := mime.ParseMediaType(t); err == nil {
			return mediaType
		}
		return t
	}
	return strings.TrimSpace(storedType)
}
