package errorlib

import (
	"errors"
	"fmt"
	"net/http"
)

type ApiError struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	Status    int    `json:"-"`
	cause     error
}

// New formats the message template with args. Without args the template is kept as is.
func (e ApiError) New(args ...any) ApiError {
	message := e.Message
	if len(args) > 0 {
		message = fmt.Sprintf(e.Message, args...)
	}
	return ApiError{
		ErrorCode: e.ErrorCode,
		Message:   message,
		Status:    e.Status,
		cause:     e.cause,
	}
}

// Wrap attaches the underlying failure. It is logged and matched by errors.Is but never rendered.
func (e ApiError) Wrap(cause error) ApiError {
	e.cause = cause
	return e
}

// WithDetail appends detail to the message.
func (e ApiError) WithDetail(detail string) ApiError {
	if detail != "" {
		e.Message = e.Message + ": " + detail
	}
	return e
}

func (e ApiError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.ErrorCode, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.ErrorCode, e.Message)
}

func (e ApiError) Unwrap() error {
	return e.cause
}

// Is reports whether target is an ApiError of the same kind.
func (e ApiError) Is(target error) bool {
	t, ok := target.(ApiError)
	return ok && t.ErrorCode == e.ErrorCode
}

func (e ApiError) HTTPStatus() int {
	if e.Status == 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}

// Is compares error codes anywhere in err's chain.
func Is(err error, kind ApiError) bool {
	return errors.Is(err, kind)
}

// As returns the outermost ApiError in err's chain.
func As(err error) (ApiError, bool) {
	var apiErr ApiError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return ApiError{}, false
}

// Cause returns the wrapped failure, or nil.
func Cause(err error) error {
	if apiErr, ok := As(err); ok {
		return apiErr.cause
	}
	return nil
}
