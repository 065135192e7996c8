package dto

import (
	"fmt"
	"strings"

	"github.com/spec-kit/books-api/internal/domain"
)

// Link is a hypermedia reference attached to responses.
type Link struct {
	Href string `json:"href"`
}

// Links maps relation names to targets, serialized under "_links".
type Links map[string]Link

// BookRequest is the payload for creating or updating a book.
type BookRequest struct {
	Title             string `json:"title"`
	Language          string `json:"language"`
	YearOfPublication int    `json:"yearOfPublication"`
	Authors           string `json:"authors"`
}

// Validate checks required fields and bounds, collecting field errors.
func (r BookRequest) Validate() map[string]string {
	details := map[string]string{}
	if strings.TrimSpace(r.Title) == "" {
		details["title"] = "required field"
	} else if len(r.Title) > 200 {
		details["title"] = "invalid field"
	}
	if strings.TrimSpace(r.Language) == "" {
		details["language"] = "required field"
	} else if len(r.Language) > 50 {
		details["language"] = "invalid field"
	}
	if r.YearOfPublication < 0 {
		details["yearOfPublication"] = "invalid field"
	}
	if len(r.Authors) > 200 {
		details["authors"] = "invalid field"
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

// ToModel maps the request onto a domain book.
func (r BookRequest) ToModel() *domain.Book {
	return &domain.Book{
		Title:             strings.TrimSpace(r.Title),
		Language:          strings.TrimSpace(r.Language),
		YearOfPublication: r.YearOfPublication,
		Authors:           strings.TrimSpace(r.Authors),
	}
}

// BookResponse is the wire representation of a book.
type BookResponse struct {
	ID                int    `json:"id"`
	Title             string `json:"title"`
	Language          string `json:"language"`
	YearOfPublication int    `json:"yearOfPublication"`
	Authors           string `json:"authors"`
	Links             Links  `json:"_links,omitempty"`
}

// NewBookResponse maps a domain book to its response form.
func NewBookResponse(book *domain.Book) BookResponse {
	return BookResponse{
		ID:                book.ID,
		Title:             book.Title,
		Language:          book.Language,
		YearOfPublication: book.YearOfPublication,
		Authors:           book.Authors,
	}
}

// WithLinks attaches hypermedia references and returns the response.
func (r BookResponse) WithLinks(links Links) BookResponse {
	r.Links = links
	return r
}

// BookHref builds the canonical path for a book id.
func BookHref(id int) string {
	return fmt.Sprintf("/books/%d", id)
}

// ReviewRequest is the payload for adding a review to a book.
type ReviewRequest struct {
	Review string `json:"review"`
}

// Validate checks the review text is present.
func (r ReviewRequest) Validate() map[string]string {
	if strings.TrimSpace(r.Review) == "" {
		return map[string]string{"review": "required field"}
	}
	return nil
}

// ReviewResponse is the wire representation of a single review.
type ReviewResponse struct {
	Review string `json:"review"`
	Links  Links  `json:"_links,omitempty"`
}
