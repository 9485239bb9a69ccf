package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// ErrMalformedInput is the only fatal ingestion failure: an empty or
// headerless grid. Everything else degrades into a quality statistic.
var ErrMalformedInput = errors.New("malformed input: empty or headerless grid")

// MalformedInputError wraps ErrMalformedInput with position context.
type MalformedInputError struct {
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input: %s", e.Reason)
}

func (e *MalformedInputError) Unwrap() error { return ErrMalformedInput }

// NewMalformedInput creates a fatal ingestion error.
func NewMalformedInput(reason string) error {
	return &MalformedInputError{Reason: reason}
}

// WarningKind classifies non-fatal ingestion anomalies. These are never
// raised to the caller; they surface through the data-quality report.
type WarningKind string

const (
	WarnUnresolvedColumn WarningKind = "unresolved_column"
	WarnAmbiguousCode    WarningKind = "ambiguous_code"
	WarnDuplicateCode    WarningKind = "duplicate_code"
)

// Warning records one non-fatal anomaly observed during ingestion.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Subject string      `json:"subject"`
	Detail  string      `json:"detail,omitempty"`
}

func (w Warning) String() string {
	if w.Detail == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Subject)
	}
	return fmt.Sprintf("%s: %s (%s)", w.Kind, w.Subject, w.Detail)
}

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError represents validation errors
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Predefined error types for common scenarios
var (
	ErrReportNotFound    = New(http.StatusNotFound, "REPORT_NOT_FOUND", "No cost report has been ingested")
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded")
)

// InvalidRequestWithError creates an invalid request error with details
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", err.Error())
}

// ErrValidation creates a validation error with field details
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// IngestError wraps an ingestion failure for the HTTP surface.
func IngestError(err error) *APIError {
	if errors.Is(err, ErrMalformedInput) {
		return NewWithDetails(http.StatusUnprocessableEntity, "MALFORMED_INPUT", "Cost report grid is empty or headerless", err.Error())
	}
	return NewWithDetails(http.StatusUnprocessableEntity, "INGEST_FAILED", "Cost report ingestion failed", err.Error())
}
