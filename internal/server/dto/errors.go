package dto

import (
	"errors"
	"net/http"

	"github.com/maruel/docdb"
)

// ErrorCode classifies API errors for machine consumption.
type ErrorCode string

const (
	// ErrorCodeValidationFailed is returned when input data fails validation.
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	// ErrorCodeNotFound is returned when a resource is not found.
	ErrorCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrorCodeConflict is returned when a save collides with an existing id.
	ErrorCodeConflict ErrorCode = "CONFLICT"
	// ErrorCodeUpstream is returned when the external id generator failed.
	ErrorCodeUpstream ErrorCode = "UPSTREAM_ERROR"
	// ErrorCodeUnauthorized is returned when the bearer token is missing or wrong.
	ErrorCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrorCodeRateLimited is returned when the client exceeded its rate limit.
	ErrorCodeRateLimited ErrorCode = "RATE_LIMITED"
	// ErrorCodeUnavailable is returned after the store was closed.
	ErrorCodeUnavailable ErrorCode = "UNAVAILABLE"
	// ErrorCodeInternal is returned when an unexpected server error occurs.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// APIError is the wire format for failures.
type APIError struct {
	Status  int       `json:"-"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *APIError) Error() string {
	return e.Message
}

// BadRequest creates a 400 validation error.
func BadRequest(msg string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: ErrorCodeValidationFailed, Message: msg}
}

// NotFound creates a 404 error.
func NotFound(msg string) *APIError {
	return &APIError{Status: http.StatusNotFound, Code: ErrorCodeNotFound, Message: msg}
}

// Unauthorized creates a 401 error.
func Unauthorized(msg string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Code: ErrorCodeUnauthorized, Message: msg}
}

// RateLimited creates a 429 error.
func RateLimited(msg string) *APIError {
	return &APIError{Status: http.StatusTooManyRequests, Code: ErrorCodeRateLimited, Message: msg}
}

// FromStoreError maps a docdb error to its API envelope.
func FromStoreError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var dup *docdb.DuplicateIDError
	if errors.As(err, &dup) {
		return &APIError{Status: http.StatusConflict, Code: ErrorCodeConflict, Message: dup.Error()}
	}
	var gen *docdb.IDGenerationError
	if errors.As(err, &gen) {
		return &APIError{Status: http.StatusBadGateway, Code: ErrorCodeUpstream, Message: gen.Error()}
	}
	switch {
	case errors.Is(err, docdb.ErrMissingDraft):
		return BadRequest(err.Error())
	case errors.Is(err, docdb.ErrClosed):
		return &APIError{Status: http.StatusServiceUnavailable, Code: ErrorCodeUnavailable, Message: err.Error()}
	}
	return &APIError{Status: http.StatusInternalServerError, Code: ErrorCodeInternal, Message: err.Error()}
}
