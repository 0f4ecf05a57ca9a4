package apperror

import "errors"

// Kind classifies an AppError independently of its user-facing message.
type Kind string

const (
	KindInvalidInterval   Kind = "invalid_interval"
	KindInvalidInput      Kind = "invalid_input"
	KindConflict          Kind = "conflict"
	KindNotFound          Kind = "not_found"
	KindForbidden         Kind = "forbidden"
	KindUnauthorized      Kind = "unauthorized"
	KindInvalidTransition Kind = "invalid_transition"
	KindResourceInUse     Kind = "resource_in_use"
	KindInternal          Kind = "internal"
)

// AppError is a custom error type that includes an HTTP status code and a kind.
type AppError struct {
	Kind    Kind   // Error classification (see KindOf)
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a kind, status code and message.
func New(kind Kind, code int, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, kind Kind, code int, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithMessage returns a copy of e carrying a more specific message.
// The copy still matches e with errors.Is.
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: message,
		Err:     e,
	}
}

// KindOf returns the kind of the first AppError in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
