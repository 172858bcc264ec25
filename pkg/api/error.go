package api

import (
	"errors"
	"net/http"
)

// Error is the normalized failure returned by the gateway. Status is the raw
// HTTP status code, or 0 when no response was received at all.
type Error struct {
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the underlying transport error, if any.
func (e *Error) Unwrap() error { return e.cause }

// IsUnauthorized reports whether err is a gateway error with status 401.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// StatusOf returns the HTTP status carried by err, or 0 if err is not a
// gateway error.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// MessageOf returns the user-facing message for err: the normalized gateway
// message when available, otherwise err.Error().
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
