// Package apperrors defines the user-facing error taxonomy and its HTTP mapping.
package apperrors

import (
	"errors"
	"net/http"
)

// Kind classifies an APIError.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuth
	KindNotFound
	KindForbidden
	KindRateLimited
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindRateLimited:
		return "rate_limited"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// APIError is an anticipated failure with a status code and a message safe to show callers.
type APIError struct {
	Kind     Kind
	HTTPCode int
	Message  string
	Err      error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// As returns the APIError in err's chain, if any.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsKind reports whether err carries an APIError of the given kind.
func IsKind(err error, kind Kind) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Kind == kind
}

func NewErrValidation(message string) *APIError {
	return &APIError{Kind: KindValidation, HTTPCode: http.StatusBadRequest, Message: message}
}

func NewErrFieldsRequired() *APIError {
	return NewErrValidation("Fill all details")
}

func NewErrEmailRequired() *APIError {
	return NewErrValidation("Email required")
}

func NewErrPasswordRequired() *APIError {
	return NewErrValidation("Password required")
}

func NewErrInvalidRequestBody() *APIError {
	return NewErrValidation("Invalid request body")
}

func NewErrUserExists() *APIError {
	return &APIError{Kind: KindConflict, HTTPCode: http.StatusConflict, Message: "Username or Email already exists"}
}

func NewErrInvalidCredentials() *APIError {
	return &APIError{Kind: KindAuth, HTTPCode: http.StatusBadRequest, Message: "Invalid credentials"}
}

func NewErrInvalidResetToken() *APIError {
	return &APIError{Kind: KindAuth, HTTPCode: http.StatusBadRequest, Message: "Token expired or invalid"}
}

func NewErrMissingAuthorizationToken() *APIError {
	return &APIError{Kind: KindAuth, HTTPCode: http.StatusUnauthorized, Message: "Authorization token required"}
}

func NewErrInvalidAuthorizationToken() *APIError {
	return &APIError{Kind: KindAuth, HTTPCode: http.StatusUnauthorized, Message: "Invalid token"}
}

func NewErrUserNotFound() *APIError {
	return &APIError{Kind: KindNotFound, HTTPCode: http.StatusNotFound, Message: "User not found"}
}

func NewErrForbidden() *APIError {
	return &APIError{Kind: KindForbidden, HTTPCode: http.StatusForbidden, Message: "Forbidden"}
}

func NewErrTooManyRequests() *APIError {
	return &APIError{Kind: KindRateLimited, HTTPCode: http.StatusTooManyRequests, Message: "Too many requests, please try again later"}
}

func NewErrEstimatorUnavailable(err error) *APIError {
	return &APIError{Kind: KindUnavailable, HTTPCode: http.StatusBadGateway, Message: "Load estimator unavailable", Err: err}
}

func NewErrStoreUnavailable(err error) *APIError {
	return &APIError{Kind: KindUnavailable, HTTPCode: http.StatusServiceUnavailable, Message: "Storage unavailable", Err: err}
}

func NewErrInternalServerError(err error) *APIError {
	return &APIError{Kind: KindInternal, HTTPCode: http.StatusInternalServerError, Message: "Server error", Err: err}
}
