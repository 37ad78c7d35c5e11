package handlers

// ErrorResponse is the JSON error body returned by all handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}
