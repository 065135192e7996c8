package domain

import "time"

// Role is the coarse privilege level attached to a user account.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// ParseRole validates a role string coming from a request or token claim.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleUser:
		return Role(s), true
	}
	return "", false
}

// User is the domain model for API accounts. Email is the unique login key.
type User struct {
	ID           int
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
