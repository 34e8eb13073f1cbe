package services

import "errors"

var (
	// ErrProductNotFound is returned when the requested product does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrMissingSearchQuery is returned by SearchProducts for an empty term.
	ErrMissingSearchQuery = errors.New("missing search query")
)

// ValidationError reports a rejected create payload. Message is safe to
// show to clients.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string { return e.Message }
