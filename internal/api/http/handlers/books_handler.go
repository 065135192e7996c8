package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/books-api/internal/api/dto"
	"github.com/spec-kit/books-api/internal/repository"
	"github.com/spec-kit/books-api/internal/service"
	apperrors "github.com/spec-kit/books-api/pkg/util"
)

// BooksHandler exposes catalog endpoints.
type BooksHandler struct {
	books *service.BookService
}

// NewBooksHandler constructs handler.
func NewBooksHandler(bookService *service.BookService) *BooksHandler {
	return &BooksHandler{books: bookService}
}

// Find handles GET /books.
func (h *BooksHandler) Find(c *fiber.Ctx) error {
	params := repository.BookListParams{
		Size:          c.QueryInt("size", service.DefaultPageSize),
		Page:          c.QueryInt("page", 0),
		SortField:     c.Query("sort", service.DefaultSortField),
		SortDirection: c.Query("direction", service.DefaultSortDirection),
	}

	books, err := h.books.Find(c.UserContext(), params)
	if err != nil {
		return err
	}

	resp := make([]dto.BookResponse, 0, len(books))
	for _, book := range books {
		resp = append(resp, dto.NewBookResponse(book).WithLinks(dto.Links{
			"self": {Href: dto.BookHref(book.ID)},
		}))
	}
	return c.JSON(resp)
}

// Get handles GET /books/:id.
func (h *BooksHandler) Get(c *fiber.Ctx) error {
	id, err := bookID(c, "id")
	if err != nil {
		return err
	}

	book, err := h.books.FindByID(c.UserContext(), id)
	if err != nil {
		return err
	}

	resp := dto.NewBookResponse(book).WithLinks(dto.Links{
		"reviews": {Href: dto.BookHref(book.ID) + "/reviews"},
		"books":   {Href: "/books"},
	})
	return c.JSON(resp)
}

// Create handles POST /books.
func (h *BooksHandler) Create(c *fiber.Ctx) error {
	var req dto.BookRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewJSONParseError()
	}
	if details := req.Validate(); details != nil {
		return apperrors.NewValidationError(details)
	}

	book, err := h.books.Create(c.UserContext(), req.ToModel())
	if err != nil {
		return err
	}

	c.Location(dto.BookHref(book.ID))
	return c.Status(http.StatusCreated).JSON(dto.NewBookResponse(book))
}

// Update handles PUT /books/:id.
func (h *BooksHandler) Update(c *fiber.Ctx) error {
	id, err := bookID(c, "id")
	if err != nil {
		return err
	}

	var req dto.BookRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewJSONParseError()
	}
	if details := req.Validate(); details != nil {
		return apperrors.NewValidationError(details)
	}

	book := req.ToModel()
	book.ID = id
	book, err = h.books.Update(c.UserContext(), book)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewBookResponse(book))
}

// Delete handles DELETE /books/:id.
func (h *BooksHandler) Delete(c *fiber.Ctx) error {
	id, err := bookID(c, "id")
	if err != nil {
		return err
	}
	if err := h.books.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// FindReviews handles GET /books/:bookId/reviews.
func (h *BooksHandler) FindReviews(c *fiber.Ctx) error {
	bookID, err := bookID(c, "bookId")
	if err != nil {
		return err
	}

	reviews, err := h.books.FindReviews(c.UserContext(), bookID)
	if err != nil {
		return err
	}

	resp := make([]dto.ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		resp = append(resp, dto.ReviewResponse{
			Review: review,
			Links:  dto.Links{"book": {Href: dto.BookHref(bookID)}},
		})
	}
	return c.JSON(resp)
}

// CreateReview handles POST /books/:bookId/reviews.
func (h *BooksHandler) CreateReview(c *fiber.Ctx) error {
	bookID, err := bookID(c, "bookId")
	if err != nil {
		return err
	}

	var req dto.ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewJSONParseError()
	}
	if details := req.Validate(); details != nil {
		return apperrors.NewValidationError(details)
	}

	review, err := h.books.AddReview(c.UserContext(), bookID, req.Review)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.ReviewResponse{Review: review})
}

func bookID(c *fiber.Ctx, param string) (int, error) {
	id, err := strconv.Atoi(c.Params(param))
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError(map[string]string{param: "invalid field"})
	}
	return id, nil
}
