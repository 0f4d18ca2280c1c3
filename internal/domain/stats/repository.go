package stats

import (
	"context"

	"github.com/MalavS298/basiscpk/internal/domain/submissions"
)

type Repository interface {
	// ListApproved returns approved submissions, all of them when userID is empty.
	ListApproved(ctx context.Context, userID string) ([]submissions.Submission, error)
	// CountSubmissions counts rows of a user (every user when empty) in a
	// status (any status when empty).
	CountSubmissions(ctx context.Context, userID string, status submissions.Status) (int64, error)
	ListMembers(ctx context.Context) ([]MemberRef, error)
}
