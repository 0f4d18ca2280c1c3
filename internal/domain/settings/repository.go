package settings

import (
	"context"
	"time"
)

type Repository interface {
	// Get returns ErrSettingsNotFound when the row has not been seeded.
	Get(ctx context.Context) (*AppSettings, error)
	SetAcceptingResponses(ctx context.Context, accepting bool, at time.Time) (*AppSettings, error)
}
