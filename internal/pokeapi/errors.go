package pokeapi

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is matched by an UpstreamError carrying HTTP 404.
	ErrNotFound = errors.New("pokeapi: not found")
	// ErrEmptyName is returned when a lookup is requested for a blank name.
	ErrEmptyName = errors.New("pokeapi: empty name")
	// ErrMalformed wraps response bodies that do not decode into the expected shape.
	ErrMalformed = errors.New("pokeapi: malformed response")
)

// UpstreamError reports a non-2xx response from the data source.
type UpstreamError struct {
	URL        string
	StatusCode int
	Status     string
}

// Error implements error.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("HTTP error: %s for url %s", e.Status, e.URL)
}

// Is reports whether a 404 is being compared against ErrNotFound.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// RequestError reports a transport failure before any response was received.
type RequestError struct {
	URL string
	Err error
}

// Error implements error.
func (e *RequestError) Error() string {
	return fmt.Sprintf("Request error: %v", e.Err)
}

// Unwrap returns the transport error.
func (e *RequestError) Unwrap() error { return e.Err }
