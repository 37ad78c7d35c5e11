package content

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeStore struct {
	data        []byte
	contentType string
	err         error

	gotBucket string
	gotObject string
}

func (f *fakeStore) Download(_ context.Context, bucket, object string) ([]byte, string, error) {
	f.gotBucket = bucket
	f.gotObject = object
	if f.err != nil {
		return nil, "", f.err
	}
	return f.data, f.contentType, nil
}

func TestSplitLocator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		locator    string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{
			name:       "plain object",
			locator:    "gs://lms-ai/pdfs/lesson.pdf",
			wantBucket: "lms-ai",
			wantObject: "pdfs/lesson.pdf",
		},
		{
			name:       "nested path",
			locator:    "gs://bucket/a/b/c.mp4",
			wantBucket: "bucket",
			wantObject: "a/b/c.mp4",
		},
		{
			name:    "missing scheme",
			locator: "http://bucket/object",
			wantErr: true,
		},
		{
			name:    "no object path",
			locator: "gs://bucket",
			wantErr: true,
		},
		{
			name:    "empty bucket",
			locator: "gs:///object",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			bucket, object, err := SplitLocator(tt.locator)
			if tt.wantErr {
				if !errors.Is(err, ErrBadLocator) {
					t.Fatalf("expected ErrBadLocator, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if bucket != tt.wantBucket || object != tt.wantObject {
				t.Fatalf("got (%q, %q), want (%q, %q)", bucket, object, tt.wantBucket, tt.wantObject)
			}
		})
	}
}

func TestResolveDeclaredMimeWins(t *testing.T) {
	t.Parallel()

	store := &fakeStore{data: []byte("pdf-bytes"), contentType: "application/octet-stream"}
	r := NewResolver(nil, store)

	data, mimeType, err := r.Resolve(context.Background(), Reference{
		Locator: "gs://lms-ai/pdfs/lesson.pdf",
		MIME:    "application/pdf",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "pdf-bytes" {
		t.Fatalf("unexpected data: %q", data)
	}
	if mimeType != "application/pdf" {
		t.Fatalf("unexpected mime: %q", mimeType)
	}
	if store.gotBucket != "lms-ai" || store.gotObject != "pdfs/lesson.pdf" {
		t.Fatalf("unexpected fetch target: %q %q", store.gotBucket, store.gotObject)
	}
}

func TestResolveInfersMimeFromExtension(t *testing.T) {
	t.Parallel()

	store := &fakeStore{data: []byte("video")}
	r := NewResolver(nil, store)

	_, mimeType, err := r.Resolve(context.Background(), Reference{Locator: "gs://b/videos/lecture.mp4"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mimeType != "video/mp4" {
		t.Fatalf("unexpected mime: %q", mimeType)
	}
}

func TestResolveMimeUnresolvable(t *testing.T) {
	t.Parallel()

	store := &fakeStore{data: []byte("mystery")}
	r := NewResolver(nil, store)

	_, _, err := r.Resolve(context.Background(), Reference{Locator: "gs://b/blobs/opaque"})
	if !errors.Is(err, ErrMimeUnresolvable) {
		t.Fatalf("expected ErrMimeUnresolvable, got %v", err)
	}
}

func TestResolveFetchErrorNamesLocator(t *testing.T) {
	t.Parallel()

	boom := errors.New("object not found")
	store := &fakeStore{err: boom}
	r := NewResolver(nil, store)

	_, _, err := r.Resolve(context.Background(), Reference{Locator: "gs://b/missing.pdf", MIME: "application/pdf"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped fetch error, got %v", err)
	}
	if got := err.Error(); !strings.Contains(got, "gs://b/missing.pdf") {
		t.Fatalf("error should name the locator: %q", got)
	}
}

func TestFingerprintStability(t *testing.T) {
	t.Parallel()

	a := Fingerprint([]byte("same bytes"))
	b := Fingerprint([]byte("same bytes"))
	c := Fingerprint([]byte("other bytes"))

	if a != b {
		t.Fatalf("equal bytes must digest equal: %q vs %q", a, b)
	}
	if a == c {
		t.Fatalf("different bytes digested equal")
	}
	if len(a) != 64 {
		t.Fatalf("expected hex sha-256 digest, got %d chars", len(a))
	}
}
