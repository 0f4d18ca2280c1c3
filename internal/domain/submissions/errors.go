package submissions

import (
	"fmt"

	"github.com/MalavS298/basiscpk/internal/apperr"
)

var (
	ErrSubmissionNotFound = fmt.Errorf("submission %w", apperr.ErrNotFound)
	ErrSubmissionsClosed  = apperr.Policy("submissions are not being accepted right now")
	ErrInvalidTransition  = apperr.Validation("status must be approved or rejected")
)
