package tutor

import "fmt"

// ContentError marks a failure while materializing one content reference.
// It names the locator so callers can tell which attachment broke.
type ContentError struct {
	Locator string
	Err     error
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("content processing failed for %s: %v", e.Locator, e.Err)
}

func (e *ContentError) Unwrap() error { return e.Err }

// InvocationError marks a model or transport failure, tagged with the action
// label for observability.
type InvocationError struct {
	Action string
	Err    error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("model invocation failed for action %q: %v", e.Action, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }
