package submissions

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type ServiceType string

const (
	ServiceSynchronous  ServiceType = "synchronous"
	ServiceAsynchronous ServiceType = "asynchronous"
)

func (t ServiceType) Valid() bool {
	return t == ServiceSynchronous || t == ServiceAsynchronous
}

// DateLayout is the wire and storage format of a service date.
const DateLayout = "2006-01-02"

type Submission struct {
	ID          string      `gorm:"type:uuid;primaryKey"`
	UserID      string      `gorm:"type:uuid;not null;index"`
	Hours       float64     `gorm:"type:numeric(7,2);not null"`
	Description *string     `gorm:"type:text"`
	ImageURL    *string     `gorm:"column:image_url;type:text"`
	ServiceDate time.Time   `gorm:"type:date;not null"`
	ServiceType ServiceType `gorm:"type:text;not null"`
	Status      Status      `gorm:"type:text;not null"`
	SubmittedAt time.Time   `gorm:"not null"`
	ApprovedAt  *time.Time
	ApprovedBy  *string `gorm:"type:uuid"`
}

func (Submission) TableName() string {
	return "submissions"
}

// CreateInput is the raw claim as typed by a member. Hours stays a string so
// that parse failures surface as validation errors here rather than as a
// decoding error in the transport.
type CreateInput struct {
	Hours       string
	ServiceType string
	ServiceDate string
	Description string
	ImageURL    string
}

type ListFilter struct {
	UserID string
	Status Status
	Limit  int
	Offset int
}

// Totals is the approved-hours aggregate of a set of submissions.
type Totals struct {
	Synchronous  float64 `json:"synchronous"`
	Asynchronous float64 `json:"asynchronous"`
	Total        float64 `json:"total"`
	Approved     int     `json:"approved_count"`
}

// Aggregate sums approved hours. Rows in any other status are ignored, so the
// result is a pure function of the current rows. Sums are kept in hundredths
// of an hour so the total is exactly the sum of the sub-totals.
func Aggregate(items []Submission) Totals {
	var totals Totals
	var sync, async int64
	for _, item := range items {
		if item.Status != StatusApproved {
			continue
		}
		switch item.ServiceType {
		case ServiceAsynchronous:
			async += toHundredths(item.Hours)
		default:
			sync += toHundredths(item.Hours)
		}
		totals.Approved++
	}
	totals.Synchronous = fromHundredths(sync)
	totals.Asynchronous = fromHundredths(async)
	totals.Total = fromHundredths(sync + async)
	return totals
}
