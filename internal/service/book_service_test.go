package service

import (
	"context"
	"sort"
	"strconv"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/books-api/internal/domain"
	"github.com/spec-kit/books-api/internal/repository"
	apperrors "github.com/spec-kit/books-api/pkg/util"
)

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
		return nil, nil
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

func TestBookService_Create_DuplicateTitle(t *testing.T) {
	repo := newMemBookRepo()
	svc := NewBookService(repo, nil)

	first, err := svc.Create(context.Background(), &domain.Book{Title: "Dune", Language: "English"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), &domain.Book{Title: "Dune", Language: "English"})
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ResourceAlreadyExistsException", domainErr.Title)
	assert.Equal(t, "Resource 'Book' already registered with id '"+strconv.Itoa(first.ID)+"'", domainErr.Message)
}

func TestBookService_FindByID_NotFound(t *testing.T) {
	svc := NewBookService(newMemBookRepo(), nil)

	_, err := svc.FindByID(context.Background(), 99)
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ResourceNotFoundException", domainErr.Title)
	assert.Equal(t, "Resource 'Book' not found with id '99'", domainErr.Message)
	assert.Equal(t, 404, domainErr.HTTPStatus)
}

func TestBookService_Find_AppliesDefaults(t *testing.T) {
	repo := newMemBookRepo()
	svc := NewBookService(repo, nil)

	titles := []string{"Alpha", "Beta", "Gamma", "Delta", "Epsilon"}
	for _, title := range titles {
		_, err := svc.Create(context.Background(), &domain.Book{Title: title, Language: "English"})
		require.NoError(t, err)
	}

	books, err := svc.Find(context.Background(), repository.BookListParams{})
	require.NoError(t, err)
	require.Len(t, books, DefaultPageSize)
	assert.Equal(t, "Alpha", books[0].Title)
}

func TestBookService_Reviews(t *testing.T) {
	repo := newMemBookRepo()
	svc := NewBookService(repo, nil)

	book, err := svc.Create(context.Background(), &domain.Book{Title: "Dune", Language: "English"})
	require.NoError(t, err)

	_, err = svc.AddReview(context.Background(), book.ID, "A classic.")
	require.NoError(t, err)

	reviews, err := svc.FindReviews(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A classic."}, reviews)

	_, err = svc.FindReviews(context.Background(), 42)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 404, domainErr.HTTPStatus)
}

func TestBookService_Delete_NotFound(t *testing.T) {
	svc := NewBookService(newMemBookRepo(), nil)

	err := svc.Delete(context.Background(), 7)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 404, domainErr.HTTPStatus)
}
