package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/books-api/internal/api/dto"
	"github.com/spec-kit/books-api/internal/domain"
	"github.com/spec-kit/books-api/internal/service"
	apperrors "github.com/spec-kit/books-api/pkg/util"
)

// UsersHandler exposes account and login endpoints.
type UsersHandler struct {
	users *service.UserService
	auth  *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService, authService *service.AuthService) *UsersHandler {
	return &UsersHandler{users: userService, auth: authService}
}

// Find handles GET /users.
func (h *UsersHandler) Find(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext())
	if err != nil {
		return err
	}

	resp := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		resp = append(resp, dto.NewUserResponse(user))
	}
	return c.JSON(resp)
}

// Create handles POST /users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.UserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewJSONParseError()
	}
	if details := req.Validate(); details != nil {
		return apperrors.NewValidationError(details)
	}
	role, _ := domain.ParseRole(req.Role)

	user, err := h.users.Create(c.UserContext(), req.Name, req.Email, req.Password, role)
	if err != nil {
		return err
	}

	c.Location("/users/" + strconv.Itoa(user.ID))
	return c.Status(http.StatusCreated).JSON(dto.NewUserResponse(user))
}

// Login handles POST /users/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.AuthenticationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewJSONParseError()
	}
	if details := req.Validate(); details != nil {
		return apperrors.NewValidationError(details)
	}

	token, _, err := h.auth.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.AuthenticationResponse{Token: token})
}
