package domain

// Book is the catalog entry.
type Book struct {
	ID                int
	Title             string
	Language          string
	YearOfPublication int
	Authors           string
}

// SortableBookFields whitelists columns accepted by the list endpoint.
var SortableBookFields = map[string]string{
	"title":    "title",
	"language": "language",
	"year":     "year_of_publication",
	"authors":  "authors",
	"id":       "id",
}
