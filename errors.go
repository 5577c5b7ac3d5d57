package reqargs

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for field validation failures.
const (
	ErrCodeMissingField = "missing_field"
	ErrCodeInvalidType  = "invalid_type"
	ErrCodeInvalidValue = "invalid_value"
	ErrCodeUnknownField = "unknown_field"
)

// SchemaField is the FieldError.Field used for failures of cross-field checks.
const SchemaField = "_schema"

// Transport failures. A *TransportError wraps one of these.
var (
	ErrMalformedBody        = errors.New("reqargs: malformed request body")
	ErrUnsupportedMediaType = errors.New("reqargs: unsupported media type")
	ErrBodyTooLarge         = errors.New("reqargs: request body too large")
	ErrMalformedQuery       = errors.New("reqargs: malformed query string")
	ErrMalformedForm        = errors.New("reqargs: malformed form data")
	ErrShapeMismatch        = errors.New("reqargs: conflicting value shapes across locations")
)

// Configuration failures.
var (
	ErrNoLoader      = errors.New("reqargs: no loader registered for location")
	ErrNoLocations   = errors.New("reqargs: operation declares no locations")
	ErrRequestClosed = errors.New("reqargs: request already closed")
)

// ValidationError aggregates field-level validation failures.
type ValidationError struct {
	FieldErrors []FieldError
}

// Error formats validation errors as a multi-line message.
func (e *ValidationError) Error() string {
	if len(e.FieldErrors) == 0 {
		return "argument validation failed: no errors"
	}

	var b strings.Builder
	if len(e.FieldErrors) == 1 {
		b.WriteString("argument validation failed: 1 error\n")
	} else {
		fmt.Fprintf(&b, "argument validation failed: %d errors\n", len(e.FieldErrors))
	}

	for _, fe := range e.FieldErrors {
		fmt.Fprintf(&b, "  - %s: %s (%s)\n", fe.Field, fe.Code, fe.Message)
	}

	return strings.TrimRight(b.String(), "\n")
}

// Has reports whether a failure with the given field and code was recorded.
func (e *ValidationError) Has(field, code string) bool {
	for _, fe := range e.FieldErrors {
		if fe.Field == field && fe.Code == code {
			return true
		}
	}
	return false
}

// FieldError represents a single field validation failure.
type FieldError struct {
	Field   string `json:"field"`   // Field name; list elements as name[i]
	Code    string `json:"code"`    // Error code (e.g., "missing_field")
	Message string `json:"message"` // Human-readable description
}

// TransportError reports a malformed encoding at one request location.
// It is fatal for the request and never aggregated with field errors.
type TransportError struct {
	Location Location
	Field    string // Set when the failure concerns one key (e.g., a shape conflict)
	Err      error
}

func (e *TransportError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("transport error at %s (field %s): %v", e.Location, e.Field, e.Err)
	}
	return fmt.Sprintf("transport error at %s: %v", e.Location, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError wraps err, which should wrap one of the transport sentinels, for loc.
func NewTransportError(loc Location, err error) *TransportError {
	return &TransportError{Location: loc, Err: err}
}

// AsValidationError extracts a *ValidationError from err.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AsTransportError extracts a *TransportError from err.
func AsTransportError(err error) (*TransportError, bool) {
	var te *TransportError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// valueError marks a coercion or rule failure on a value of the right type.
type valueError struct {
	msg string
}

func (e *valueError) Error() string { return e.msg }

// Invalid returns an error that classifies as invalid_value when returned from a Type or Rule.
func Invalid(format string, args ...any) error {
	return &valueError{msg: fmt.Sprintf(format, args...)}
}

// IsInvalidValue reports whether err was produced by Invalid.
func IsInvalidValue(err error) bool {
	var ve *valueError
	return errors.As(err, &ve)
}

// elementErrors collects per-element failures of a list coercion.
type elementErrors []elementError

type elementError struct {
	index int
	err   error
}

func (e elementErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, el := range e {
		parts = append(parts, fmt.Sprintf("[%d]: %v", el.index, el.err))
	}
	return strings.Join(parts, "; ")
}
