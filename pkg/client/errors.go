package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTransport covers everything that kept a request from getting an
	// HTTP answer, including cancellation.
	ErrTransport    = errors.New("transport error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")

	// ErrConflict and ErrVersionMismatch are also ErrValidation.
	ErrConflict        = errors.New("conflict")
	ErrVersionMismatch = errors.New("version mismatch")
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	// Message is the envelope's message, Detail its error field.
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	if e.Detail != "" {
		return e.Message + ": " + e.Detail
	}
	return e.Message
}

func (e *APIError) Unwrap() []error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return []error{ErrUnauthorized}
	case http.StatusNotFound:
		return []error{ErrNotFound}
	case http.StatusConflict:
		return []error{ErrValidation, ErrConflict}
	case http.StatusPreconditionFailed:
		return []error{ErrValidation, ErrVersionMismatch}
	}
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return []error{ErrValidation}
	}
	return []error{ErrServer}
}
