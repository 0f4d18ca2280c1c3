package submissions

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, submission *Submission) error
	GetByID(ctx context.Context, id string) (*Submission, error)
	List(ctx context.Context, filter ListFilter) ([]Submission, int64, error)
	UpdateDecision(ctx context.Context, id string, status Status, approvedAt *time.Time, approvedBy *string) error
	Delete(ctx context.Context, id string) (bool, error)
}

// SettingsReader exposes the global accepting-responses toggle.
type SettingsReader interface {
	AcceptingResponses(ctx context.Context) (bool, error)
}
