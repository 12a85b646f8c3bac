package author

import "context"

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=author

// Repository defines the contract for author data storage.
type Repository interface {
	List(ctx context.Context, limit, offset int) ([]Author, int, error)
	GetByID(ctx context.Context, id int64) (Author, error)
	Create(ctx context.Context, name string) (Author, error)
}
