package auth

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/books-api/internal/domain"
	apperrors "github.com/spec-kit/books-api/pkg/util"
)

// Operation identifiers for every role-gated route. Guards are declared
// against these, so the policy table can be inspected and verified as a
// whole instead of being scattered across annotations.
const (
	OpBooksList     = "books.list"
	OpBooksGet      = "books.get"
	OpBooksCreate   = "books.create"
	OpBooksUpdate   = "books.update"
	OpBooksDelete   = "books.delete"
	OpReviewsList   = "reviews.list"
	OpReviewsCreate = "reviews.create"
	OpUsersList     = "users.list"
	OpUsersCreate   = "users.create"
)

// Policy maps each protected operation to the roles permitted to invoke
// it. Closed world: operations absent from the table are always rejected.
type Policy struct {
	requirements map[string][]domain.Role
}

// DefaultPolicy returns the static access table for this service.
func DefaultPolicy() *Policy {
	anyAuthenticated := []domain.Role{domain.RoleAdmin, domain.RoleUser}
	adminOnly := []domain.Role{domain.RoleAdmin}

	return &Policy{requirements: map[string][]domain.Role{
		OpBooksList:     anyAuthenticated,
		OpBooksGet:      anyAuthenticated,
		OpBooksCreate:   adminOnly,
		OpBooksUpdate:   adminOnly,
		OpBooksDelete:   adminOnly,
		OpReviewsList:   anyAuthenticated,
		OpReviewsCreate: anyAuthenticated,
		OpUsersList:     adminOnly,
		OpUsersCreate:   adminOnly,
	}}
}

// Allows reports whether the role may invoke the operation.
func (p *Policy) Allows(operation string, role domain.Role) bool {
	for _, allowed := range p.requirements[operation] {
		if allowed == role {
			return true
		}
	}
	return false
}

// Covers verifies that every listed operation has a declared requirement.
// Wired into tests so a route can never ship without an access rule.
func (p *Policy) Covers(operations ...string) error {
	for _, op := range operations {
		if _, ok := p.requirements[op]; !ok {
			return fmt.Errorf("operation %q has no declared access requirement", op)
		}
	}
	return nil
}

// Require returns a guard that enforces the operation's access
// requirement. It runs after the authenticator and before the business
// handler; rejection is terminal. No identity yields 401, an identity
// with the wrong role yields 403.
func (p *Policy) Require(operation string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sc, ok := FromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !p.Allows(operation, sc.Role) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
