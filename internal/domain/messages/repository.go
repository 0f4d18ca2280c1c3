package messages

import "context"

type Repository interface {
	Create(ctx context.Context, message *Message) error
	// List returns messages newest first, all of them when userID is empty.
	List(ctx context.Context, userID string) ([]WithSender, error)
	MarkRead(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}
