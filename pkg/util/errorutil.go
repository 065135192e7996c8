package util

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError standardizes application errors and how they render at the
// HTTP boundary. TokenRejection marks authenticator-level failures, which
// render as {"error": message} instead of the regular error envelope.
type DomainError struct {
	Title          string
	Message        string
	HTTPStatus     int
	Details        map[string]string
	TokenRejection bool
	Err            error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(title, message string, status int, details map[string]string) *DomainError {
	return &DomainError{Title: title, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(details map[string]string) error {
	return NewDomainError("ValidationException", "Invalid fields", http.StatusBadRequest, details)
}

func NewJSONParseError() error {
	return NewDomainError("JsonParseException", "Could not parse Json", http.StatusBadRequest, nil)
}

func NewNotFound(resource string, id int) error {
	return NewDomainError("ResourceNotFoundException",
		fmt.Sprintf("Resource '%s' not found with id '%d'", resource, id),
		http.StatusNotFound, nil)
}

func NewAlreadyExists(resource, id string) error {
	return NewDomainError("ResourceAlreadyExistsException",
		fmt.Sprintf("Resource '%s' already registered with id '%s'", resource, id),
		http.StatusBadRequest, nil)
}

// NewAuthenticationFailed is the single login failure: unknown email and
// wrong password are deliberately indistinguishable.
func NewAuthenticationFailed() error {
	return NewDomainError("AuthenticationFailedException", "Invalid User or Password", http.StatusForbidden, nil)
}

// NewTokenRejected reports a bearer token the authenticator refused to
// accept. Rendered as {"error": message} with status 403.
func NewTokenRejected(message string) error {
	return &DomainError{
		Title:          "TokenRejectedException",
		Message:        message,
		HTTPStatus:     http.StatusForbidden,
		TokenRejection: true,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UnauthorizedException", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("ForbiddenException", message, http.StatusForbidden, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Title:      "InternalErrorException",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError, defaulting to a
// generic 500 so internals never leak to clients.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Title:      "InternalErrorException",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
