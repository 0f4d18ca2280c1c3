package newsletters

import (
	"fmt"

	"github.com/MalavS298/basiscpk/internal/apperr"
)

var ErrNewsletterNotFound = fmt.Errorf("newsletter %w", apperr.ErrNotFound)
