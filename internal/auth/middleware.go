package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/books-api/internal/domain"
	"github.com/spec-kit/books-api/internal/repository"
	apperrors "github.com/spec-kit/books-api/pkg/util"
)

const securityContextKey = "security_context"

// SecurityContext is the per-request record of the identity established by
// token verification. It lives in the request's locals and is never shared
// across requests.
type SecurityContext struct {
	Email string
	Role  domain.Role
}

// Authenticator verifies bearer tokens and establishes the request's
// security context. Requests without an Authorization header (or with a
// non-Bearer scheme) pass through anonymous; the access policy decides
// their fate downstream. This asymmetry is deliberate: only a presented
// token that fails verification is rejected here.
type Authenticator struct {
	tokens *TokenManager
	users  repository.UserRepository
	logger *zap.Logger
}

// NewAuthenticator constructs the middleware.
func NewAuthenticator(tokens *TokenManager, users repository.UserRepository, logger *zap.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, logger: logger}
}

// Handle runs once per request, before any business handler.
func (a *Authenticator) Handle(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" || !strings.HasPrefix(header, bearerPrefix) {
		return c.Next()
	}

	tokenStr, err := ExtractBearer(header)
	if err != nil {
		return apperrors.NewTokenRejected(err.Error())
	}

	subject, role, err := a.tokens.Parse(tokenStr)
	if err != nil {
		return apperrors.NewTokenRejected(err.Error())
	}

	// The subject must still exist: a token outliving its account grants
	// nothing. Treated the same as an invalid token, not a server fault.
	if _, err := a.users.GetByEmail(c.Context(), subject); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewTokenRejected(ErrInvalidToken.Error())
		}
		a.logger.Error("authenticator: user lookup failed", zap.Error(err))
		return apperrors.NewInternalError(err)
	}

	c.Locals(securityContextKey, &SecurityContext{Email: subject, Role: role})
	return c.Next()
}

// FromContext retrieves the security context established for this request,
// if any.
func FromContext(c *fiber.Ctx) (*SecurityContext, bool) {
	val := c.Locals(securityContextKey)
	if val == nil {
		return nil, false
	}
	sc, ok := val.(*SecurityContext)
	return sc, ok
}
