package service

import (
	"context"
	"time"

	"github.com/spec-kit/books-api/internal/auth"
	"github.com/spec-kit/books-api/internal/domain"
	"github.com/spec-kit/books-api/internal/events"
	"github.com/spec-kit/books-api/internal/repository"
	apperrors "github.com/spec-kit/books-api/pkg/util"
)

// UserService manages account registration and listing.
type UserService struct {
	users      repository.UserRepository
	hasher     *auth.PasswordHasher
	dispatcher events.Dispatcher
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, hasher *auth.PasswordHasher, dispatcher events.Dispatcher) *UserService {
	return &UserService{users: users, hasher: hasher, dispatcher: dispatcher}
}

// Create registers a new account. The email must not be registered yet;
// the plaintext password is hashed before it touches the store.
func (s *UserService) Create(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewAlreadyExists("User", email)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:      events.EventUserCreated,
			Subject:   user.Email,
			Timestamp: time.Now(),
		})
	}
	return user, nil
}

// List returns all registered accounts.
func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}
