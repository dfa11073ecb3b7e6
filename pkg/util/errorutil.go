package util

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError standardizes application errors surfaced over HTTP. Message is the
// only field ever serialized to clients; Err carries the internal cause for
// logging and never leaves the process.
type APIError struct {
	Message    string
	HTTPStatus int
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError constructs an APIError.
func NewAPIError(message string, status int) *APIError {
	return &APIError{Message: message, HTTPStatus: status}
}

func NewBadRequest(message string) error {
	return NewAPIError(message, http.StatusBadRequest)
}

func NewUnauthorized(message string) error {
	return NewAPIError(message, http.StatusUnauthorized)
}

func NewNotFound() error {
	return NewAPIError("Not Found", http.StatusNotFound)
}

func NewConflict(message string) error {
	return NewAPIError(message, http.StatusConflict)
}

func NewInternalError(err error) error {
	return &APIError{
		Message:    "Internal Server Error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToAPIError converts generic errors to APIError, hiding internal detail
// behind a generic 500 for anything unrecognized.
func ToAPIError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &APIError{
		Message:    "Internal Server Error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
