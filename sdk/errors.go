package vaultsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error represents a response the vault API did not accept, or a successful
// response that carried no usable transaction.
type Error struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Body is the verbatim response body.
	Body string

	// Message is set when a 2xx response could not be used.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("vault api: HTTP %d", e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Detail extracts a human-readable message from a JSON error body, falling
// back to the raw body.
func (e *Error) Detail() string {
	var body struct {
		Title   string `json:"title"`
		Detail  string `json:"detail"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(e.Body), &body); err == nil {
		for _, s := range []string{body.Detail, body.Title, body.Error, body.Message} {
			if s != "" {
				return s
			}
		}
	}
	if e.Body != "" {
		return e.Body
	}
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.StatusCode)
}

// NetworkError is a transport-level failure: the request did not produce an
// HTTP response.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("vault api: %s %s: %v", e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}
