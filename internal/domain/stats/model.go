package stats

import "github.com/MalavS298/basiscpk/internal/domain/submissions"

// Requirements are the chapter's hour thresholds shown on the member dashboard.
type Requirements struct {
	ServiceHours float64
	SyncHours    float64
}

type MemberRef struct {
	UserID   string  `json:"user_id"`
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
}

type MemberTotals struct {
	MemberRef
	submissions.Totals
}

type Overview struct {
	Members      []MemberTotals     `json:"members"`
	Organization submissions.Totals `json:"organization"`
}

type Dashboard struct {
	submissions.Totals
	SubmissionCount       int64   `json:"submission_count"`
	RequiredHours         float64 `json:"required_hours"`
	RequiredSyncHours     float64 `json:"required_sync_hours"`
	BelowServiceThreshold bool    `json:"below_service_threshold"`
	BelowSyncThreshold    bool    `json:"below_sync_threshold"`
	PendingCount          *int64  `json:"pending_count,omitempty"`
}
