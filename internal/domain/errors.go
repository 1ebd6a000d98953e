package domain

import (
	"errors"
	"net/http"
)

// Error is a domain error that carries the HTTP status it maps to at
// the transport boundary. Services return these instead of panicking
// or wrapping transport types.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NotFound(message string) error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

func Forbidden(message string) error {
	return &Error{Status: http.StatusForbidden, Message: message}
}

func BadRequest(message string) error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

func Unauthorized(message string) error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

func statusOf(err error) int {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Status
	}
	return 0
}

func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

func IsForbidden(err error) bool {
	return statusOf(err) == http.StatusForbidden
}

func IsBadRequest(err error) bool {
	return statusOf(err) == http.StatusBadRequest
}

func IsUnauthorized(err error) bool {
	return statusOf(err) == http.StatusUnauthorized
}
