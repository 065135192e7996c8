package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/books-api/internal/domain"
	"github.com/spec-kit/books-api/internal/events"
	"github.com/spec-kit/books-api/internal/repository"
	apperrors "github.com/spec-kit/books-api/pkg/util"
)

// Defaults for the paged book listing.
const (
	DefaultPageSize      = 3
	DefaultSortField     = "title"
	DefaultSortDirection = "ASC"
)

// BookService implements catalog operations over the book repository.
type BookService struct {
	books      repository.BookRepository
	dispatcher events.Dispatcher
}

// NewBookService builds the service.
func NewBookService(books repository.BookRepository, dispatcher events.Dispatcher) *BookService {
	return &BookService{books: books, dispatcher: dispatcher}
}

// Find returns a page of books ordered by the requested field.
func (s *BookService) Find(ctx context.Context, params repository.BookListParams) ([]*domain.Book, error) {
	if params.Size <= 0 {
		params.Size = DefaultPageSize
	}
	if params.Page < 0 {
		params.Page = 0
	}
	if params.SortField == "" {
		params.SortField = DefaultSortField
	}
	if params.SortDirection == "" {
		params.SortDirection = DefaultSortDirection
	}
	return s.books.List(ctx, params)
}

// FindByID returns a single book.
func (s *BookService) FindByID(ctx context.Context, id int) (*domain.Book, error) {
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Book", id)
		}
		return nil, err
	}
	return book, nil
}

// Create registers a new book; titles are unique.
func (s *BookService) Create(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	existing, err := s.books.GetByTitle(ctx, book.Title)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewAlreadyExists("Book", strconv.Itoa(existing.ID))
	}

	if err := s.books.Create(ctx, book); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:      events.EventBookCreated,
			Subject:   book.Title,
			Timestamp: time.Now(),
		})
	}
	return book, nil
}

// Update replaces a registered book's fields.
func (s *BookService) Update(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	if err := s.ensureExists(ctx, book.ID); err != nil {
		return nil, err
	}
	if err := s.books.Update(ctx, book); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Book", book.ID)
		}
		return nil, err
	}
	return book, nil
}

// Delete removes a book and its reviews.
func (s *BookService) Delete(ctx context.Context, id int) error {
	if err := s.ensureExists(ctx, id); err != nil {
		return err
	}
	if err := s.books.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Book", id)
		}
		return err
	}
	return nil
}

// FindReviews lists a book's reviews.
func (s *BookService) FindReviews(ctx context.Context, bookID int) ([]string, error) {
	if err := s.ensureExists(ctx, bookID); err != nil {
		return nil, err
	}
	return s.books.ListReviews(ctx, bookID)
}

// AddReview attaches a review to a book.
func (s *BookService) AddReview(ctx context.Context, bookID int, review string) (string, error) {
	if err := s.ensureExists(ctx, bookID); err != nil {
		return "", err
	}
	if err := s.books.AddReview(ctx, bookID, review); err != nil {
		return "", err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:      events.EventReviewAdded,
			Subject:   strconv.Itoa(bookID),
			Timestamp: time.Now(),
		})
	}
	return review, nil
}

func (s *BookService) ensureExists(ctx context.Context, id int) error {
	if _, err := s.books.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Book", id)
		}
		return err
	}
	return nil
}
