package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Domain taxonomy. Every failure returned by the services wraps exactly one of these.
var (
	ErrValidation      = fmt.Errorf("validation error")
	ErrNotFound        = fmt.Errorf("not found")
	ErrForbidden       = fmt.Errorf("not allowed")
	ErrDuplicate       = fmt.Errorf("already exists")
	ErrExpiredWindow   = fmt.Errorf("edit window expired")
	ErrUnauthenticated = fmt.Errorf("unauthenticated")
)

var (
	ErrAmbiguousIdentity  = fmt.Errorf("%w: several users match", ErrValidation)
	ErrInvalidPassword    = fmt.Errorf("%w: password does not meet the policy", ErrValidation)
	ErrUserAlreadyExists  = fmt.Errorf("%w: user", ErrDuplicate)
	ErrContactExists      = fmt.Errorf("%w: contact", ErrDuplicate)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
)

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")
	ErrEmptyWords  = fmt.Errorf("no words have been found")
	ErrSinkFull    = fmt.Errorf("sink buffer is full")
	ErrSinkClosed  = fmt.Errorf("sink is closed")
)

// MapToHTTPStatus translates a service error into the status code returned to REST callers.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.Is(err, ErrValidation), stderrors.Is(err, ErrExpiredWindow):
		return http.StatusBadRequest
	case stderrors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case stderrors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case stderrors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage hides internal failures from REST callers.
func PublicMessage(err error) string {
	if MapToHTTPStatus(err) == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}
