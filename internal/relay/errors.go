package relay

import "errors"

var (
	// ErrAuthRequired indicates the first client frame carried no bearer token.
	ErrAuthRequired = errors.New("bearer token missing")
	// ErrAuthTimeout indicates no auth frame arrived within the timeout.
	ErrAuthTimeout = errors.New("authentication timeout")
	// ErrUpstreamConnect indicates the vendor endpoint could not be reached.
	ErrUpstreamConnect = errors.New("upstream connect failed")
)
