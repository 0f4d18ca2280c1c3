package meetings

import (
	"fmt"

	"github.com/MalavS298/basiscpk/internal/apperr"
)

var (
	ErrMeetingNotFound = fmt.Errorf("meeting %w", apperr.ErrNotFound)
	ErrDetailsNotFound = fmt.Errorf("meeting details %w", apperr.ErrNotFound)
	ErrMissingFields   = apperr.Validation("title and start_time are required")
)
