// Package apperr defines the structured error type that resolvers and
// handlers raise and that the HTTP error middleware and the GraphQL
// transport turn into client responses.
//
// An *apperr.Error is a domain-level failure: it carries the HTTP status
// code the client should observe and an optional structured payload
// (e.g. field-level validation issues). Any other error is treated as a
// transport or system failure and is reported with status 500.
package apperr

import "net/http"

// Error is a domain error with a client-facing status code and payload.
type Error struct {
	Message string
	Code    int
	Data    any
}

func (e *Error) Error() string {
	return e.Message
}

// New returns a domain error with the given status code and message.
func New(code int, message string) *Error {
	return &Error{Message: message, Code: code}
}

// WithData returns a domain error carrying a structured payload.
func WithData(code int, message string, data any) *Error {
	return &Error{Message: message, Code: code, Data: data}
}

// StatusCode returns the status code the client should observe.
// A zero code defaults to 500.
func (e *Error) StatusCode() int {
	if e.Code == 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}
