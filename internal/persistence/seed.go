package persistence

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/books-api/internal/domain"
	"github.com/spec-kit/books-api/internal/repository"
	"github.com/spec-kit/books-api/internal/service"
)

// Seed inserts the development fixture accounts and a couple of catalog
// entries after startup. Idempotent: existing emails and titles are
// skipped, so re-running the service never duplicates rows.
func Seed(ctx context.Context, users *service.UserService, books *service.BookService, userRepo repository.UserRepository, logger *zap.Logger) {
	type account struct {
		name, email, password string
		role                  domain.Role
	}
	accounts := []account{
		{"James Kirk", "james@enterprise.com", "123456", domain.RoleAdmin},
		{"Spock", "spock@enterprise.com", "123456", domain.RoleAdmin},
		{"Leonard McCoy", "mccoy@enterprise.com", "123456", domain.RoleUser},
		{"Montgomery Scott", "scott@enterprise.com", "123456", domain.RoleUser},
	}

	for _, a := range accounts {
		exists, err := userRepo.ExistsByEmail(ctx, a.email)
		if err != nil {
			logger.Warn("seed: user existence check failed", zap.String("email", a.email), zap.Error(err))
			continue
		}
		if exists {
			continue
		}
		if _, err := users.Create(ctx, a.name, a.email, a.password, a.role); err != nil {
			logger.Warn("seed: create user failed", zap.String("email", a.email), zap.Error(err))
		}
	}

	fixtures := []domain.Book{
		{Title: "The Hitchhiker's Guide to the Galaxy", Language: "English", YearOfPublication: 1979, Authors: "Douglas Adams"},
		{Title: "Dom Casmurro", Language: "Portuguese", YearOfPublication: 1899, Authors: "Machado de Assis"},
	}

	for i := range fixtures {
		book := fixtures[i]
		if _, err := books.Create(ctx, &book); err != nil {
			logger.Debug("seed: book skipped", zap.String("title", book.Title), zap.Error(err))
		}
	}

	logger.Info("seed data applied")
}
