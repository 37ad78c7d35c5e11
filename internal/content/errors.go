package content

import "errors"

var (
	// ErrMimeUnresolvable indicates no MIME type was declared and none could be
	// inferred from the locator extension.
	ErrMimeUnresolvable = errors.New("mime type is required and could not be inferred")
	// ErrBadLocator indicates the locator is not a valid gs://bucket/object URI.
	ErrBadLocator = errors.New("invalid gs:// locator")
)
