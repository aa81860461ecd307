package apperr

import (
	"errors"
	"net/http"
)

// Error kinds. Match with errors.Is.
var (
	ErrConfiguration  = errors.New("configuration error")
	ErrValidation     = errors.New("validation error")
	ErrAuthentication = errors.New("authentication error")
	ErrUpstream       = errors.New("upstream error")
	ErrNotFound       = errors.New("not found")
)

// Error carries a kind, a client-safe message and an optional cause.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Configuration(msg string) error {
	return &Error{Kind: ErrConfiguration, Msg: msg}
}

func Validation(msg string) error {
	return &Error{Kind: ErrValidation, Msg: msg}
}

func Authentication(msg string) error {
	return &Error{Kind: ErrAuthentication, Msg: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: ErrNotFound, Msg: msg}
}

// Upstream wraps a failure returned by a provider or the model.
func Upstream(msg string, cause error) error {
	return &Error{Kind: ErrUpstream, Msg: msg, Err: cause}
}

// HTTPStatus maps an error to the status code of the JSON error envelope.
// Caller-side problems are 400, everything else is 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrAuthentication),
		errors.Is(err, ErrNotFound):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text placed in the {error} envelope. Causes of typed
// errors stay in the logs.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Msg
	}
	return err.Error()
}
