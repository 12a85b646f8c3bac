package author

import (
	"context"
	"strings"

	"libraryapi/internal/platform/paging"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, p paging.Params) (Page, error) {
	p = paging.Normalize(p.Page, p.PerPage)

	authors, total, err := s.repo.List(ctx, p.Limit(), p.Offset())
	if err != nil {
		return Page{}, err
	}
	if authors == nil {
		authors = []Author{}
	}
	return Page{
		Results:     authors,
		Total:       total,
		Pages:       paging.TotalPages(total, p.PerPage),
		CurrentPage: p.Page,
	}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Author, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores an author under the trimmed name.
func (s *Service) Create(ctx context.Context, name string) (Author, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Author{}, ErrNameRequired
	}
	return s.repo.Create(ctx, name)
}
