package apperr

import "errors"

// Category sentinels. Every request-local failure wraps exactly one of these.
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrAttemptsExhausted = errors.New("attempts exhausted")
	ErrAuthentication    = errors.New("authentication error")
	ErrForbidden         = errors.New("forbidden")
)

// Error is a categorised error carrying a message that is safe to show to a client.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func Validation(msg string) *Error {
	return &Error{Kind: ErrValidation, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func AttemptsExhausted(msg string) *Error {
	return &Error{Kind: ErrAttemptsExhausted, Message: msg}
}

func Authentication(msg string) *Error {
	return &Error{Kind: ErrAuthentication, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: ErrForbidden, Message: msg}
}

// Message returns the client-facing message of err if it is an *Error, and ok=false otherwise.
func Message(err error) (string, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message, true
	}
	return "", false
}
