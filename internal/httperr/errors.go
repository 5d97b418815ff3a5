// Package httperr carries the service-wide error taxonomy and the central
// Echo error handler. Handlers and middleware return *httperr.Error values;
// exactly one place maps them onto HTTP statuses and the uniform
// {errors:[{type,msg,path,location}]} envelope.
package httperr

import (
	"fmt"
	"net/http"
)

// Violation is one entry of the error envelope.
type Violation struct {
	Type     string `json:"type"`
	Msg      string `json:"msg"`
	Path     string `json:"path"`
	Location string `json:"location"`
}

// Error is the single error type crossing the handler boundary.
type Error struct {
	Status     int
	Type       string
	Msg        string
	Violations []Violation // populated for validation failures only
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Msg)
}

func (e *Error) Unwrap() error { return e.cause }

// Validation wraps a full list of request violations. Per contract the whole
// list is surfaced, not just the first.
func Validation(violations []Violation) *Error {
	return &Error{Status: http.StatusBadRequest, Type: "ValidationError", Msg: "request validation failed", Violations: violations}
}

// BadRequest covers generic 400s, including the session-repair path where a
// missing identity must not surface as 404.
func BadRequest(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Type: "BadRequestError", Msg: msg}
}

// Authentication covers missing, malformed, expired and revoked tokens. One
// message for all of them: the client must not learn whether a session row
// still exists.
func Authentication(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Type: "AuthenticationError", Msg: msg}
}

// Authorization covers a valid identity with an insufficient role. Distinct
// from Authentication by status so 401 and 403 are never conflated.
func Authorization(msg string) *Error {
	return &Error{Status: http.StatusForbidden, Type: "AuthorizationError", Msg: msg}
}

// Conflict covers unique-constraint violations; the message stays generic.
func Conflict(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Type: "ConflictError", Msg: msg}
}

// NotFound covers missing entities on the CRUD surface.
func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Type: "NotFoundError", Msg: msg}
}

// Internal wraps an unexpected failure. The cause is logged, never surfaced.
func Internal(cause error) *Error {
	return &Error{Status: http.StatusInternalServerError, Type: "InternalServerError", Msg: "internal server error", cause: cause}
}
