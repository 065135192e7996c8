package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/books-api/internal/api/http/handlers"
	"github.com/spec-kit/books-api/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Root          *handlers.RootHandler
	Health        *handlers.HealthHandler
	Books         *handlers.BooksHandler
	Users         *handlers.UsersHandler
	Authenticator *auth.Authenticator
	Policy        *auth.Policy
	LoginLimiter  fiber.Handler
}

// RoutedOperations lists every role-gated operation the router registers;
// tests assert the policy covers all of them.
func RoutedOperations() []string {
	return []string{
		auth.OpBooksList,
		auth.OpBooksGet,
		auth.OpBooksCreate,
		auth.OpBooksUpdate,
		auth.OpBooksDelete,
		auth.OpReviewsList,
		auth.OpReviewsCreate,
		auth.OpUsersList,
		auth.OpUsersCreate,
	}
}

// RegisterRoutes wires HTTP routes. The authenticator runs on every
// request; per-route policy guards gate the protected operations.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.Authenticator.Handle)

	app.Get("/", cfg.Root.Get)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	users := app.Group("/users")
	if cfg.LoginLimiter != nil {
		users.Post("/login", cfg.LoginLimiter, cfg.Users.Login)
	} else {
		users.Post("/login", cfg.Users.Login)
	}
	users.Get("/", cfg.Policy.Require(auth.OpUsersList), cfg.Users.Find)
	users.Post("/", cfg.Policy.Require(auth.OpUsersCreate), cfg.Users.Create)

	books := app.Group("/books")
	books.Get("/", cfg.Policy.Require(auth.OpBooksList), cfg.Books.Find)
	books.Post("/", cfg.Policy.Require(auth.OpBooksCreate), cfg.Books.Create)
	books.Get("/:bookId/reviews", cfg.Policy.Require(auth.OpReviewsList), cfg.Books.FindReviews)
	books.Post("/:bookId/reviews", cfg.Policy.Require(auth.OpReviewsCreate), cfg.Books.CreateReview)
	books.Get("/:id", cfg.Policy.Require(auth.OpBooksGet), cfg.Books.Get)
	books.Put("/:id", cfg.Policy.Require(auth.OpBooksUpdate), cfg.Books.Update)
	books.Delete("/:id", cfg.Policy.Require(auth.OpBooksDelete), cfg.Books.Delete)
}
