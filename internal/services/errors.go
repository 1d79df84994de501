package services

import "net/http"

// Error is a service-level failure with an HTTP status the handlers can
// forward as-is.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NewError(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func badRequest(message string) *Error {
	return NewError(http.StatusBadRequest, message)
}

func forbidden(message string) *Error {
	return NewError(http.StatusForbidden, message)
}

func notFound(message string) *Error {
	return NewError(http.StatusNotFound, message)
}

func unprocessable(message string) *Error {
	return NewError(http.StatusUnprocessableEntity, message)
}

func conflict(message string) *Error {
	return NewError(http.StatusConflict, message)
}
