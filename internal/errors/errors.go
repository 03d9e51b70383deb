package ierr

import (
	"github.com/cockroachdb/errors"
)

// Generic error kinds. Every error returned from this module is marked with
// one of these (or one of the domain kinds below) so callers can branch on it
// with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrVersionConflict  = errors.New("version conflict")
	ErrValidation       = errors.New("validation error")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrPermissionDenied = errors.New("permission denied")
	ErrHTTPClient       = errors.New("http client error")
	ErrDatabase         = errors.New("database error")
	ErrSystem           = errors.New("system error")
	ErrInternal         = errors.New("internal error")
)

// Pricing and lifecycle error kinds.
var (
	ErrInvalidCustomPrice     = errors.New("invalid custom price")
	ErrCurrencyMismatch       = errors.New("currency mismatch")
	ErrMissingRejectionReason = errors.New("missing rejection reason")
	ErrAlreadyProcessed       = errors.New("already processed")
	ErrInvalidTransition      = errors.New("invalid transition")
)

// validationKinds are treated as caller-correctable input errors.
var validationKinds = []error{
	ErrValidation,
	ErrInvalidCustomPrice,
	ErrCurrencyMismatch,
	ErrMissingRejectionReason,
}

// InternalError carries the reportable details attached through the builder.
type InternalError struct {
	cause   error
	details map[string]any
}

func (e *InternalError) Error() string { return e.cause.Error() }

func (e *InternalError) Unwrap() error { return e.cause }

func (e *InternalError) Cause() error { return e.cause }

// Details returns the reportable details attached to the error.
func (e *InternalError) Details() map[string]any { return e.details }

// ErrorBuilder accumulates context on an error before it is marked.
type ErrorBuilder struct {
	err     error
	details map[string]any
}

// NewError starts a builder from a message.
func NewError(msg string) *ErrorBuilder {
	return &ErrorBuilder{err: errors.NewWithDepth(1, msg)}
}

// NewErrorf starts a builder from a formatted message.
func NewErrorf(format string, args ...any) *ErrorBuilder {
	return &ErrorBuilder{err: errors.NewWithDepthf(1, format, args...)}
}

// WithError starts a builder from an existing error.
func WithError(err error) *ErrorBuilder {
	if err == nil {
		err = errors.NewWithDepth(1, "unknown error")
	}
	return &ErrorBuilder{err: err}
}

// WithMessage wraps the error with an additional message.
func (b *ErrorBuilder) WithMessage(msg string) *ErrorBuilder {
	b.err = errors.WrapWithDepth(1, b.err, msg)
	return b
}

// WithHint attaches a user facing hint.
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.err = errors.WithHint(b.err, hint)
	return b
}

// WithHintf attaches a formatted user facing hint.
func (b *ErrorBuilder) WithHintf(format string, args ...any) *ErrorBuilder {
	b.err = errors.WithHintf(b.err, format, args...)
	return b
}

// WithReportableDetails attaches structured details that are safe to return to
// the caller.
func (b *ErrorBuilder) WithReportableDetails(details map[string]any) *ErrorBuilder {
	if b.details == nil {
		b.details = make(map[string]any, len(details))
	}
	for k, v := range details {
		b.details[k] = v
	}
	return b
}

// Mark finalises the builder and marks the error with the given kind.
func (b *ErrorBuilder) Mark(kind error) error {
	err := b.err
	if len(b.details) > 0 {
		err = &InternalError{cause: err, details: b.details}
	}
	return errors.Mark(err, kind)
}

// Error returns the built error without marking it.
func (b *ErrorBuilder) Error() error {
	if len(b.details) > 0 {
		return &InternalError{cause: b.err, details: b.details}
	}
	return b.err
}

// Is reports whether err is marked with, or wraps, kind. Marks are not visible
// to the standard library errors.Is.
func Is(err, kind error) bool { return errors.Is(err, kind) }

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsAlreadyExists(err error) bool { return errors.Is(err, ErrAlreadyExists) }

func IsInvalidOperation(err error) bool { return errors.Is(err, ErrInvalidOperation) }

func IsAlreadyProcessed(err error) bool { return errors.Is(err, ErrAlreadyProcessed) }

func IsInvalidTransition(err error) bool { return errors.Is(err, ErrInvalidTransition) }

func IsInternal(err error) bool { return errors.Is(err, ErrInternal) }

// IsValidation reports whether err is any caller-correctable input error.
func IsValidation(err error) bool {
	for _, kind := range validationKinds {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// GetHints returns every hint attached along the error chain.
func GetHints(err error) []string {
	return errors.GetAllHints(err)
}

// GetReportableDetails merges the details attached along the error chain.
func GetReportableDetails(err error) map[string]any {
	details := make(map[string]any)
	for err != nil {
		var ie *InternalError
		if !errors.As(err, &ie) {
			break
		}
		for k, v := range ie.details {
			if _, ok := details[k]; !ok {
				details[k] = v
			}
		}
		err = ie.cause
	}
	return details
}

// Kind returns the name of the first kind err is marked with, or "internal".
func Kind(err error) string {
	for _, kind := range []error{
		ErrInvalidCustomPrice, ErrCurrencyMismatch, ErrMissingRejectionReason,
		ErrAlreadyProcessed, ErrInvalidTransition, ErrNotFound, ErrAlreadyExists,
		ErrVersionConflict, ErrValidation, ErrInvalidOperation, ErrPermissionDenied,
		ErrDatabase, ErrSystem,
	} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return ErrInternal.Error()
}
