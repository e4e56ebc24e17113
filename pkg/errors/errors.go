package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	CodeEmptyInput        = "EMPTY_INPUT"
	CodeAuth              = "AUTH_ERROR"
	CodeMalformedResponse = "MALFORMED_RESPONSE"
	CodeSchemaViolation   = "SCHEMA_VIOLATION"
	CodeCatalogLookup     = "CATALOG_LOOKUP_ERROR"
	CodeNoTracksFound     = "NO_TRACKS_FOUND"
	CodeService           = "SERVICE_ERROR"
)

type AppError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) app() *AppError { return e }

type appErrorCarrier interface {
	app() *AppError
}

// AsAppError walks the error chain for any taxonomy error and returns its
// embedded AppError.
func AsAppError(err error) (*AppError, bool) {
	for err != nil {
		if carrier, ok := err.(appErrorCarrier); ok {
			return carrier.app(), true
		}
		err = stderrors.Unwrap(err)
	}
	return nil, false
}

// EmptyInputError reports that the user supplied no mood text. It is raised
// before any upstream call is made.
type EmptyInputError struct {
	*AppError
}

func NewEmptyInputError() *EmptyInputError {
	return &EmptyInputError{
		AppError: &AppError{
			Message:    "mood description cannot be empty",
			Code:       CodeEmptyInput,
			StatusCode: 400,
		},
	}
}

// AuthError reports a failed credential acquisition for an upstream service.
type AuthError struct {
	*AppError
	Service string
}

func NewAuthError(service string, cause error) *AuthError {
	return &AuthError{
		AppError: &AppError{
			Message:    fmt.Sprintf("failed to authenticate with %s", service),
			Code:       CodeAuth,
			StatusCode: 500,
			Context:    map[string]any{"service": service},
			Cause:      cause,
		},
		Service: service,
	}
}

// MalformedResponseError reports model output that could not be parsed as the
// expected structure, even after brace extraction.
type MalformedResponseError struct {
	*AppError
}

func NewMalformedResponseError(message string, cause error) *MalformedResponseError {
	return &MalformedResponseError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeMalformedResponse,
			StatusCode: 500,
			Cause:      cause,
		},
	}
}

// SchemaViolationError reports parseable model output that violates the mood
// analysis invariants. Field diagnostics name the first violated constraint.
type SchemaViolationError struct {
	*AppError
	Field    string
	Expected string
	Actual   string
}

func NewSchemaViolationError(field, expected, actual string) *SchemaViolationError {
	return &SchemaViolationError{
		AppError: &AppError{
			Message:    fmt.Sprintf("invalid mood analysis: field %q expected %s, got %s", field, expected, actual),
			Code:       CodeSchemaViolation,
			StatusCode: 500,
			Context: map[string]any{
				"field":    field,
				"expected": expected,
				"actual":   actual,
			},
		},
		Field:    field,
		Expected: expected,
		Actual:   actual,
	}
}

// CatalogLookupError reports a per-track catalog failure. It never crosses the
// catalog client boundary; callers only ever see the placeholder result.
type CatalogLookupError struct {
	*AppError
	Title  string
	Artist string
}

func NewCatalogLookupError(title, artist string, cause error) *CatalogLookupError {
	return &CatalogLookupError{
		AppError: &AppError{
			Message:    fmt.Sprintf("catalog lookup failed for %q by %q", title, artist),
			Code:       CodeCatalogLookup,
			StatusCode: 500,
			Context: map[string]any{
				"title":  title,
				"artist": artist,
			},
			Cause: cause,
		},
		Title:  title,
		Artist: artist,
	}
}

// NoTracksFoundError reports a generation round in which every candidate was
// a duplicate or unusable.
type NoTracksFoundError struct {
	*AppError
}

func NewNoTracksFoundError() *NoTracksFoundError {
	return &NoTracksFoundError{
		AppError: &AppError{
			Message:    "no tracks found matching your preferences, try different options or retry",
			Code:       CodeNoTracksFound,
			StatusCode: 404,
		},
	}
}

type ServiceError struct {
	*AppError
	Service   string
	Operation string
}

func NewServiceError(message, service, operation string, cause error) *ServiceError {
	return &ServiceError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeService,
			StatusCode: 500,
			Context: map[string]any{
				"service":   service,
				"operation": operation,
			},
			Cause: cause,
		},
		Service:   service,
		Operation: operation,
	}
}
