// Package serviceerr defines the closed set of error kinds the gateway
// produces. Failures from the remote backends are normalised into exactly
// one of these codes at the HTTP call boundary; handlers branch on the code
// and nothing else.
package serviceerr

import (
	"errors"
	"net/http"
)

type Code string

const (
	CodeInvalidCredentials Code = "invalid_credentials"
	CodeTimeout            Code = "timeout"
	CodeNetworkUnavailable Code = "network_unavailable"
	CodeInvalidRequest     Code = "invalid_request"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeUnauthenticated    Code = "unauthenticated"
	CodeUnknown            Code = "unknown"
)

// Error is the only error shape crossing package boundaries in the gateway.
// BackendStatus holds the upstream HTTP status when a response was received,
// and is zero when the transport failed before any response.
type Error struct {
	Err           Code
	Description   string
	BackendStatus int
}

var (
	ErrInvalidCredentials = &Error{Err: CodeInvalidCredentials, Description: "invalid credentials"}
	ErrTimeout            = &Error{Err: CodeTimeout, Description: "backend request timed out"}
	ErrNetworkUnavailable = &Error{Err: CodeNetworkUnavailable, Description: "backend unreachable"}
	ErrInvalidRequest     = &Error{Err: CodeInvalidRequest, Description: "invalid request"}
	ErrNotFound           = &Error{Err: CodeNotFound, Description: "not found"}
	ErrConflict           = &Error{Err: CodeConflict, Description: "already exists"}
	ErrUnauthenticated    = &Error{Err: CodeUnauthenticated, Description: "authentication required"}
	ErrUnknown            = &Error{Err: CodeUnknown, Description: "unknown error"}
)

func (e *Error) Error() string {
	if e.Description == "" {
		return string(e.Err)
	}

	return string(e.Err) + ": " + e.Description
}

// Is makes errors.Is match on the code, so a normalised error with an
// attached backend status still matches its predefined sentinel.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}

	return e.Err == other.Err
}

// HTTPStatus maps the code to the status the gateway answers with.
// Timeout and unreachable map to the gateway statuses, since the failure
// happened between the gateway and a backend, not at the client.
func (e *Error) HTTPStatus() int {
	switch e.Err {
	case CodeInvalidCredentials, CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeNetworkUnavailable:
		return http.StatusBadGateway
	case CodeInvalidRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WithStatus returns a copy of the error carrying the observed backend status.
func (e *Error) WithStatus(status int) *Error {
	clone := *e
	clone.BackendStatus = status

	return &clone
}
