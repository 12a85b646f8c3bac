package book

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"

	"libraryapi/internal/platform/paging"
)

var (
	// ErrNotFound is returned when no book has the requested id.
	ErrNotFound = errors.New("book not found")
	// ErrTitleRequired is returned when a book would be stored without a title.
	ErrTitleRequired = errors.New("book title is required")
	// ErrAuthorNotFound is returned when author_id names no existing author.
	ErrAuthorNotFound = errors.New("author does not exist")
)

// Book is a stored book record. Optional columns are nil when NULL.
type Book struct {
	ID                int64   `json:"id"`
	Title             string  `json:"title"`
	Genre             *string `json:"genre"`
	YearOfPublication *int    `json:"year_of_publication"`
	AuthorID          *int64  `json:"author_id"`
}

// ListItem is one row of a listing: the book joined with its author's name.
type ListItem struct {
	ID                int64   `json:"id"`
	Title             string  `json:"title"`
	Genre             *string `json:"genre"`
	YearOfPublication *int    `json:"year_of_publication"`
	Author            string  `json:"author"`
}

// ListQuery is what a Repository needs to produce one page.
type ListQuery struct {
	Genre  string
	Limit  int
	Offset int
}

type Page struct {
	Results     []ListItem `json:"results"`
	Total       int        `json:"total"`
	Pages       int        `json:"pages"`
	CurrentPage int        `json:"current_page"`
}

type NewBook struct {
	Title             string
	Genre             *string
	YearOfPublication *int
	AuthorID          *int64
}

// Patch is a partial update. A field left unset keeps its stored value; a
// field set to null clears it.
type Patch struct {
	Title             Optional[string] `json:"title"`
	Genre             Optional[string] `json:"genre"`
	YearOfPublication Optional[int]    `json:"year_of_publication"`
	AuthorID          Optional[int64]  `json:"author_id"`
}

func (p Patch) IsEmpty() bool {
	return !p.Title.Set && !p.Genre.Set && !p.YearOfPublication.Set && !p.AuthorID.Set
}

// Apply returns b with every set field of p copied over.
func (p Patch) Apply(b Book) Book {
	if p.Title.Set && p.Title.Value != nil {
		b.Title = *p.Title.Value
	}
	if p.Genre.Set {
		b.Genre = p.Genre.Value
	}
	if p.YearOfPublication.Set {
		b.YearOfPublication = p.YearOfPublication.Value
	}
	if p.AuthorID.Set {
		b.AuthorID = p.AuthorID.Value
	}
	return b
}

// Columns maps each set field to its column value; nil pointers become NULL.
func (p Patch) Columns() map[string]any {
	cols := make(map[string]any, 4)
	if p.Title.Set && p.Title.Value != nil {
		cols["title"] = *p.Title.Value
	}
	if p.Genre.Set {
		cols["genre"] = p.Genre.Value
	}
	if p.YearOfPublication.Set {
		cols["year_of_publication"] = p.YearOfPublication.Value
	}
	if p.AuthorID.Set {
		cols["author_id"] = p.AuthorID.Value
	}
	return cols
}

// Optional tells an absent JSON key apart from an explicit null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// window keeps a ListQuery within sane bounds for callers that skip the
// service. A negative offset is treated as past the end, never as page one.
func (q ListQuery) window() ListQuery {
	if q.Limit <= 0 {
		q.Limit = paging.DefaultPerPage
	}
	if q.Offset < 0 {
		q.Offset = math.MaxInt
	}
	return q
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (Book, error) {
	var b Book
	err := row.Scan(&b.ID, &b.Title, &b.Genre, &b.YearOfPublication, &b.AuthorID)
	return b, err
}

func scanListItem(row rowScanner) (ListItem, error) {
	var item ListItem
	err := row.Scan(&item.ID, &item.Title, &item.Genre, &item.YearOfPublication, &item.Author)
	return item, err
}
