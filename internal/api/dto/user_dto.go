package dto

import (
	"strings"
	"time"

	"github.com/spec-kit/books-api/internal/domain"
)

// UserRequest is the payload for registering a new account.
type UserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Validate checks required fields; role must be a known value.
func (r UserRequest) Validate() map[string]string {
	details := map[string]string{}
	if strings.TrimSpace(r.Name) == "" {
		details["name"] = "required field"
	}
	if strings.TrimSpace(r.Email) == "" {
		details["email"] = "required field"
	} else if !strings.Contains(r.Email, "@") {
		details["email"] = "invalid field"
	}
	if r.Password == "" {
		details["password"] = "required field"
	}
	if _, ok := domain.ParseRole(r.Role); !ok {
		details["role"] = "invalid field"
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

// UserResponse is the wire representation of an account. The password
// hash never leaves the service.
type UserResponse struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// NewUserResponse maps a domain user to its response form.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
	}
}

// AuthenticationRequest is the login payload.
type AuthenticationRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks both credentials are present.
func (r AuthenticationRequest) Validate() map[string]string {
	details := map[string]string{}
	if strings.TrimSpace(r.Email) == "" {
		details["email"] = "required field"
	}
	if r.Password == "" {
		details["password"] = "required field"
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

// AuthenticationResponse carries the issued token.
type AuthenticationResponse struct {
	Token string `json:"token"`
}

// ErrorResponse is the envelope for business errors.
type ErrorResponse struct {
	Title     string            `json:"title"`
	Message   string            `json:"message,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
	Timestamp string            `json:"timestamp"`
}

// NewErrorResponse builds an error envelope stamped with the current time.
func NewErrorResponse(title, message string, details map[string]string) ErrorResponse {
	return ErrorResponse{
		Title:     title,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().Format("2006-01-02 15:04:05"),
	}
}
