package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for the caller-facing envelope.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindConfiguration Kind = "configuration"
	KindProvider      Kind = "provider"
	KindInternal      Kind = "internal"
)

// Error is a classified failure. Parse failures and upstream data failures
// never become an Error; they degrade to fallbacks inside the pipeline.
type Error struct {
	Kind    Kind
	Message string
	// Status is the upstream HTTP status for provider errors, 0 otherwise.
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports a missing or malformed request field.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Required is the canonical "<field> is required" validation error.
func Required(field string) *Error {
	return Validation("%s is required", field)
}

// Configuration reports a missing credential or unusable setting.
func Configuration(format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

// Provider reports a non-success answer from the completion provider.
func Provider(status int, err error) *Error {
	return &Error{
		Kind:    KindProvider,
		Message: fmt.Sprintf("Provider API error: %d", status),
		Status:  status,
		Err:     err,
	}
}

// Internal wraps any unexpected failure.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// KindOf returns the Kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As returns err as *Error, wrapping unclassified errors as internal.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// IsProvider reports whether err is a provider error.
func IsProvider(err error) bool {
	return KindOf(err) == KindProvider
}

// HTTPStatus maps an error kind to the status code used in envelopes. Only
// validation failures are the caller's fault; everything else is a 500 and
// the envelope kind tells them apart.
func HTTPStatus(k Kind) int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the message returned to HTTP callers. Classified errors
// expose their fixed message only; internal errors expose the cause text.
func PublicMessage(err error) string {
	e := As(err)
	if e.Kind == KindInternal && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}
