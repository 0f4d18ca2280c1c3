package messages

import (
	"fmt"

	"github.com/MalavS298/basiscpk/internal/apperr"
)

var ErrMessageNotFound = fmt.Errorf("message %w", apperr.ErrNotFound)
