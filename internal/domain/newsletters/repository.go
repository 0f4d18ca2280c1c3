package newsletters

import "context"

type Repository interface {
	// List returns newsletters newest first.
	List(ctx context.Context, limit int) ([]Newsletter, error)
	Create(ctx context.Context, newsletter *Newsletter) error
	Delete(ctx context.Context, id string) (bool, error)
}
