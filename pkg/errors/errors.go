package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// NotReady marks an operation attempted without a session token. Callers
// treat it as "skip", not as a failure.
func NotReady(operation string) *AppError {
	return &AppError{
		Code:    "NOT_READY",
		Message: fmt.Sprintf("%s skipped: no session token", operation),
		Status:  http.StatusUnauthorized,
		Err:     nil,
	}
}

func FetchFailed(resource string, err error) *AppError {
	return &AppError{
		Code:    "FETCH_FAILED",
		Message: fmt.Sprintf("failed to fetch %s", resource),
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

func TransportFailure(message string, err error) *AppError {
	return &AppError{
		Code:    "TRANSPORT_FAILURE",
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     err,
	}
}

func MalformedFrame(err error) *AppError {
	return &AppError{
		Code:    "MALFORMED_FRAME",
		Message: "could not decode inbound frame",
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

func Unauthorized(message string, err error) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    "BAD_REQUEST",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
