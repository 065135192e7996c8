package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/books-api/internal/domain"
)

// BookRepository defines persistence access for books and their reviews.
type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) error
	Update(ctx context.Context, book *domain.Book) error
	Delete(ctx context.Context, id int) error
	GetByID(ctx context.Context, id int) (*domain.Book, error)
	GetByTitle(ctx context.Context, title string) (*domain.Book, error)
	List(ctx context.Context, params BookListParams) ([]*domain.Book, error)
	ListReviews(ctx context.Context, bookID int) ([]string, error)
	AddReview(ctx context.Context, bookID int, review string) error
}

// BookListParams carries pagination and sorting for the list query.
type BookListParams struct {
	Size          int
	Page          int
	SortField     string
	SortDirection string
}

type bookRepository struct {
	pool *pgxpool.Pool
}

// NewBookRepository returns a Postgres-backed implementation.
func NewBookRepository(pool *pgxpool.Pool) BookRepository {
	return &bookRepository{pool: pool}
}

func (r *bookRepository) Create(ctx context.Context, book *domain.Book) error {
	const query = `
        INSERT INTO books (title, language, year_of_publication, authors)
        VALUES ($1, $2, $3, $4)
        RETURNING id`

	return r.pool.QueryRow(ctx, query,
		book.Title,
		book.Language,
		book.YearOfPublication,
		book.Authors,
	).Scan(&book.ID)
}

func (r *bookRepository) Update(ctx context.Context, book *domain.Book) error {
	const query = `
        UPDATE books SET title=$1, language=$2, year_of_publication=$3, authors=$4
        WHERE id=$5`

	cmd, err := r.pool.Exec(ctx, query,
		book.Title,
		book.Language,
		book.YearOfPublication,
		book.Authors,
		book.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *bookRepository) Delete(ctx context.Context, id int) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *bookRepository) GetByID(ctx context.Context, id int) (*domain.Book, error) {
	const query = `
        SELECT id, title, language, year_of_publication, authors
        FROM books WHERE id=$1`

	return r.scanBook(r.pool.QueryRow(ctx, query, id))
}

func (r *bookRepository) GetByTitle(ctx context.Context, title string) (*domain.Book, error) {
	const query = `
        SELECT id, title, language, year_of_publication, authors
        FROM books WHERE title=$1`

	return r.scanBook(r.pool.QueryRow(ctx, query, title))
}

func (r *bookRepository) List(ctx context.Context, params BookListParams) ([]*domain.Book, error) {
	column, ok := domain.SortableBookFields[params.SortField]
	if !ok {
		column = "title"
	}
	direction := "ASC"
	if strings.EqualFold(params.SortDirection, "DESC") {
		direction = "DESC"
	}

	// Sort column and direction are whitelisted above, never interpolated
	// from raw input.
	query := fmt.Sprintf(`
        SELECT id, title, language, year_of_publication, authors
        FROM books ORDER BY %s %s LIMIT $1 OFFSET $2`, column, direction)

	rows, err := r.pool.Query(ctx, query, params.Size, params.Page*params.Size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		var book domain.Book
		if err := rows.Scan(
			&book.ID,
			&book.Title,
			&book.Language,
			&book.YearOfPublication,
			&book.Authors,
		); err != nil {
			return nil, err
		}
		books = append(books, &book)
	}
	return books, rows.Err()
}

func (r *bookRepository) ListReviews(ctx context.Context, bookID int) ([]string, error) {
	const query = `SELECT text FROM reviews WHERE book_id=$1 ORDER BY id`

	rows, err := r.pool.Query(ctx, query, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []string{}
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, err
		}
		reviews = append(reviews, text)
	}
	return reviews, rows.Err()
}

func (r *bookRepository) AddReview(ctx context.Context, bookID int, review string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO reviews (book_id, text) VALUES ($1, $2)`, bookID, review)
	return err
}

func (r *bookRepository) scanBook(row pgx.Row) (*domain.Book, error) {
	var book domain.Book
	if err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Language,
		&book.YearOfPublication,
		&book.Authors,
	); err != nil {
		return nil, err
	}
	return &book, nil
}
