package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book data storage. Create and Update
// must verify a set author_id inside the same transaction as the write.
type Repository interface {
	List(ctx context.Context, q ListQuery) ([]ListItem, int, error)
	GetByID(ctx context.Context, id int64) (Book, error)
	Create(ctx context.Context, nb NewBook) (Book, error)
	Update(ctx context.Context, id int64, p Patch) (Book, error)
	Delete(ctx context.Context, id int64) error
}
