package book

import (
	"context"
	"strings"

	"libraryapi/internal/platform/paging"
)

// Service provides book-related business logic.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns one page of books, optionally restricted to an exact genre.
// A page past the end yields an empty Results slice, not an error.
func (s *Service) List(ctx context.Context, genre string, p paging.Params) (Page, error) {
	p = paging.Normalize(p.Page, p.PerPage)

	items, total, err := s.repo.List(ctx, ListQuery{
		Genre:  genre,
		Limit:  p.Limit(),
		Offset: p.Offset(),
	})
	if err != nil {
		return Page{}, err
	}
	if items == nil {
		items = []ListItem{}
	}

	return Page{
		Results:     items,
		Total:       total,
		Pages:       paging.TotalPages(total, p.PerPage),
		CurrentPage: p.Page,
	}, nil
}

// Get returns a book by id.
func (s *Service) Get(ctx context.Context, id int64) (Book, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores a new book and returns it with its assigned id.
func (s *Service) Create(ctx context.Context, nb NewBook) (Book, error) {
	if strings.TrimSpace(nb.Title) == "" {
		return Book{}, ErrTitleRequired
	}
	return s.repo.Create(ctx, nb)
}

// Update applies the set fields of p. An empty title is accepted, a null one
// is not since the column cannot hold NULL.
func (s *Service) Update(ctx context.Context, id int64, p Patch) (Book, error) {
	if p.Title.Set && p.Title.Value == nil {
		return Book{}, ErrTitleRequired
	}
	return s.repo.Update(ctx, id, p)
}

// Delete removes a book by id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
