package author

import "errors"

var (
	ErrNotFound     = errors.New("author not found")
	ErrNameRequired = errors.New("author name is required")
)

type Author struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Page struct {
	Results     []Author `json:"results"`
	Total       int      `json:"total"`
	Pages       int      `json:"pages"`
	CurrentPage int      `json:"current_page"`
}
