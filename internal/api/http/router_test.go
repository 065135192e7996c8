package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/books-api/internal/api/http/handlers"
	"github.com/spec-kit/books-api/internal/auth"
	"github.com/spec-kit/books-api/internal/domain"
	"github.com/spec-kit/books-api/internal/observability"
	"github.com/spec-kit/books-api/internal/repository"
	"github.com/spec-kit/books-api/internal/service"
)

const testSecret = "test-secret"

// memUserRepo is an in-memory UserRepository keyed by email.
type memUserRepo struct {
	users  map[string]*domain.User
	nextID int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*domain.User{}, nextID: 1}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.nextID++
	r.users[user.Email] = user
	return nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := r.users[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (r *memUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := r.users[email]
	return ok, nil
}

func (r *memUserRepo) List(_ context.Context) ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// memBookRepo is an in-memory BookRepository.
type memBookRepo struct {
	books   map[int]*domain.Book
	reviews map[int][]string
	nextID  int
}

func newMemBookRepo() *memBookRepo {
	return &memBookRepo{books: map[int]*domain.Book{}, reviews: map[int][]string{}, nextID: 1}
}

func (r *memBookRepo) Create(_ context.Context, book *domain.Book) error {
	book.ID = r.nextID
	r.nextID++
	r.books[book.ID] = book
	return nil
}

func (r *memBookRepo) Update(_ context.Context, book *domain.Book) error {
	if _, ok := r.books[book.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.books[book.ID] = book
	return nil
}

func (r *memBookRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.books[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.books, id)
	delete(r.reviews, id)
	return nil
}

func (r *memBookRepo) GetByID(_ context.Context, id int) (*domain.Book, error) {
	book, ok := r.books[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return book, nil
}

func (r *memBookRepo) GetByTitle(_ context.Context, title string) (*domain.Book, error) {
	for _, book := range r.books {
		if book.Title == title {
			return book, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memBookRepo) List(_ context.Context, params repository.BookListParams) ([]*domain.Book, error) {
	all := make([]*domain.Book, 0, len(r.books))
	for _, book := range r.books {
		all = append(all, book)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Title < all[j].Title })

	start := params.Page * params.Size
	if start >= len(all) {
		return []*domain.Book{}, nil
	}
	end := start + params.Size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (r *memBookRepo) ListReviews(_ context.Context, bookID int) ([]string, error) {
	return r.reviews[bookID], nil
}

func (r *memBookRepo) AddReview(_ context.Context, bookID int, review string) error {
	r.reviews[bookID] = append(r.reviews[bookID], review)
	return nil
}

type testEnv struct {
	app      *fiber.App
	users    *memUserRepo
	books    *memBookRepo
	tokenMgr *auth.TokenManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := newMemUserRepo()
	books := newMemBookRepo()
	logger := zap.NewNop()

	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	tokenMgr := auth.NewTokenManager(testSecret, 10)

	authService := service.NewAuthService(users, hasher, tokenMgr, nil)
	userService := service.NewUserService(users, hasher, nil)
	bookService := service.NewBookService(books, nil)

	seedUser(t, users, "Spock", "spock@enterprise.com", domain.RoleAdmin)
	seedUser(t, users, "Leonard McCoy", "mccoy@enterprise.com", domain.RoleUser)
	for i := 1; i <= 5; i++ {
		require.NoError(t, books.Create(context.Background(), &domain.Book{
			Title:    fmt.Sprintf("Book %d", i),
			Language: "English",
		}))
	}

	app := fiber.New()
	RegisterMiddlewares(app, logger, observability.NewMetrics(), 0)
	RegisterRoutes(app, RouteConfig{
		Root:          handlers.NewRootHandler(),
		Books:         handlers.NewBooksHandler(bookService),
		Users:         handlers.NewUsersHandler(userService, authService),
		Health:        handlers.NewHealthHandler("books-api", "test", nil, nil),
		Authenticator: auth.NewAuthenticator(tokenMgr, users, logger),
		Policy:        auth.DefaultPolicy(),
	})

	return &testEnv{app: app, users: users, books: books, tokenMgr: tokenMgr}
}

func seedUser(t *testing.T, repo *memUserRepo, name, email string, role domain.Role) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}))
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	resp := e.request(t, http.MethodPost, "/users/login", "", fiber.Map{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Token string `json:"token"`
	}
	decodeJSON(t, resp, &body)
	require.NotEmpty(t, body.Token)
	return body.Token
}

func decodeJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

func TestPolicyCoversEveryRoutedOperation(t *testing.T) {
	require.NoError(t, auth.DefaultPolicy().Covers(RoutedOperations()...))
}

func TestAnonymousRequests(t *testing.T) {
	env := newTestEnv(t)

	// Open route passes through without any identity.
	resp := env.request(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Role-gated routes are rejected at the policy stage with 401.
	resp = env.request(t, http.MethodGet, "/books", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.request(t, http.MethodDelete, "/books/5", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_, stillThere := env.books.books[5]
	assert.True(t, stillThere, "handler must not run for anonymous request")
}

func TestNonBearerSchemeIsAnonymous(t *testing.T) {
	env := newTestEnv(t)

	// A non-Bearer Authorization header is pass-through, not a 403: the
	// request reaches the policy stage as anonymous.
	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Basic c3BvY2s6MTIzNDU2")
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestInvalidTokenRejectedEarly(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, http.MethodGet, "/books", "not-a-real-token", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var body map[string]string
	decodeJSON(t, resp, &body)
	assert.Equal(t, "invalid token", body["error"])
}

func TestExpiredTokenRejected(t *testing.T) {
	env := newTestEnv(t)

	claims := &auth.Claims{
		Role: string(domain.RoleAdmin),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "spock@enterprise.com",
			Issuer:    auth.Issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-20 * time.Minute)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-10 * time.Minute)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	resp := env.request(t, http.MethodGet, "/books", expired, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var body map[string]string
	decodeJSON(t, resp, &body)
	assert.Equal(t, "token expired", body["error"])
}

func TestTokenForDeletedUserRejected(t *testing.T) {
	env := newTestEnv(t)

	token := env.login(t, "spock@enterprise.com", "123456")
	delete(env.users.users, "spock@enterprise.com")

	resp := env.request(t, http.MethodGet, "/books", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var body map[string]string
	decodeJSON(t, resp, &body)
	assert.Equal(t, "invalid token", body["error"])
}

func TestLoginFailuresAreUniform(t *testing.T) {
	env := newTestEnv(t)

	type errorBody struct {
		Title   string `json:"title"`
		Message string `json:"message"`
	}

	respUnknown := env.request(t, http.MethodPost, "/users/login", "", fiber.Map{
		"email": "nobody@enterprise.com", "password": "123456",
	})
	assert.Equal(t, http.StatusForbidden, respUnknown.StatusCode)
	var bodyUnknown errorBody
	decodeJSON(t, respUnknown, &bodyUnknown)

	respMismatch := env.request(t, http.MethodPost, "/users/login", "", fiber.Map{
		"email": "spock@enterprise.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusForbidden, respMismatch.StatusCode)
	var bodyMismatch errorBody
	decodeJSON(t, respMismatch, &bodyMismatch)

	assert.Equal(t, "Invalid User or Password", bodyUnknown.Message)
	assert.Equal(t, bodyUnknown.Title, bodyMismatch.Title)
	assert.Equal(t, bodyUnknown.Message, bodyMismatch.Message)
}

func TestAdminCanDeleteBook(t *testing.T) {
	env := newTestEnv(t)

	token := env.login(t, "spock@enterprise.com", "123456")
	resp := env.request(t, http.MethodDelete, "/books/5", token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, exists := env.books.books[5]
	assert.False(t, exists)
}

func TestUserCannotDeleteBook(t *testing.T) {
	env := newTestEnv(t)

	token := env.login(t, "mccoy@enterprise.com", "123456")
	resp := env.request(t, http.MethodDelete, "/books/5", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, exists := env.books.books[5]
	assert.True(t, exists, "handler must not run for an insufficient role")
}

func TestUserCanReadBooks(t *testing.T) {
	env := newTestEnv(t)

	token := env.login(t, "mccoy@enterprise.com", "123456")
	resp := env.request(t, http.MethodGet, "/books", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var books []map[string]any
	decodeJSON(t, resp, &books)
	assert.Len(t, books, 3) // default page size

	resp = env.request(t, http.MethodGet, "/books/1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var book map[string]any
	decodeJSON(t, resp, &book)
	assert.Contains(t, book, "_links")
}

func TestBookCRUDAsAdmin(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "spock@enterprise.com", "123456")

	resp := env.request(t, http.MethodPost, "/books", token, fiber.Map{
		"title": "Dune", "language": "English", "yearOfPublication": 1965, "authors": "Frank Herbert",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created map[string]any
	decodeJSON(t, resp, &created)
	id := int(created["id"].(float64))

	// Duplicate title is a conflict.
	resp = env.request(t, http.MethodPost, "/books", token, fiber.Map{
		"title": "Dune", "language": "English",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.request(t, http.MethodPut, fmt.Sprintf("/books/%d", id), token, fiber.Map{
		"title": "Dune", "language": "English", "yearOfPublication": 1965, "authors": "Herbert, Frank",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.request(t, http.MethodGet, "/books/999", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBookValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "spock@enterprise.com", "123456")

	resp := env.request(t, http.MethodPost, "/books", token, fiber.Map{"language": "English"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Title   string            `json:"title"`
		Details map[string]string `json:"details"`
	}
	decodeJSON(t, resp, &body)
	assert.Equal(t, "ValidationException", body.Title)
	assert.Contains(t, body.Details, "title")
}

func TestReviews(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "mccoy@enterprise.com", "123456")

	resp := env.request(t, http.MethodPost, "/books/1/reviews", token, fiber.Map{
		"review": "Fascinating.",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.request(t, http.MethodGet, "/books/1/reviews", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var reviews []map[string]any
	decodeJSON(t, resp, &reviews)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Fascinating.", reviews[0]["review"])

	resp = env.request(t, http.MethodGet, "/books/999/reviews", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUserManagementRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)

	userToken := env.login(t, "mccoy@enterprise.com", "123456")
	resp := env.request(t, http.MethodPost, "/users", userToken, fiber.Map{
		"name": "Nyota Uhura", "email": "uhura@enterprise.com", "password": "123456", "role": "USER",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	adminToken := env.login(t, "spock@enterprise.com", "123456")
	resp = env.request(t, http.MethodPost, "/users", adminToken, fiber.Map{
		"name": "Nyota Uhura", "email": "uhura@enterprise.com", "password": "123456", "role": "USER",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Newly registered users can log in right away.
	env.login(t, "uhura@enterprise.com", "123456")

	resp = env.request(t, http.MethodGet, "/users", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var users []map[string]any
	decodeJSON(t, resp, &users)
	assert.Len(t, users, 3)
	for _, user := range users {
		assert.NotContains(t, user, "passwordHash")
		assert.NotContains(t, user, "password_hash")
	}
}
