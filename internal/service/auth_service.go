package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/books-api/internal/auth"
	"github.com/spec-kit/books-api/internal/events"
	"github.com/spec-kit/books-api/internal/repository"
	apperrors "github.com/spec-kit/books-api/pkg/util"
)

// AuthService orchestrates credential verification and token issuance.
type AuthService struct {
	users      repository.UserRepository
	hasher     *auth.PasswordHasher
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(users repository.UserRepository, hasher *auth.PasswordHasher, tokenMgr *auth.TokenManager, dispatcher events.Dispatcher) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokenMgr: tokenMgr, dispatcher: dispatcher}
}

// Authenticate verifies credentials and issues a signed token. Unknown
// email and password mismatch collapse into the same failure so a caller
// can never probe which emails are registered. No token is minted on
// failure.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, apperrors.NewAuthenticationFailed()
		}
		return "", time.Time{}, err
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", time.Time{}, apperrors.NewAuthenticationFailed()
	}

	token, expiresAt, err := s.tokenMgr.Issue(user)
	if err != nil {
		return "", time.Time{}, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:      events.EventUserAuthenticated,
			Subject:   user.Email,
			Timestamp: time.Now(),
		})
	}
	return token, expiresAt, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
