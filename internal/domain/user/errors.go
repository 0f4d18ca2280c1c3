package user

import (
	"fmt"

	"github.com/MalavS298/basiscpk/internal/apperr"
)

var (
	ErrProfileNotFound = fmt.Errorf("profile %w", apperr.ErrNotFound)
	ErrRoleNotFound    = fmt.Errorf("role assignment %w", apperr.ErrNotFound)
	ErrSelfDeletion    = apperr.Validation("You cannot delete yourself")
	ErrUserIDRequired  = apperr.Validation("User ID is required")
)
