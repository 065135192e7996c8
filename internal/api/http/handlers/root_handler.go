package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/books-api/internal/api/dto"
)

// RootHandler serves the API entry point with discovery links.
type RootHandler struct{}

// NewRootHandler returns a new handler instance.
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// Get handles GET /.
func (h *RootHandler) Get(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"_links": dto.Links{
			"books": {Href: "/books"},
			"login": {Href: "/users/login"},
		},
	})
}
