package settings

import (
	"fmt"

	"github.com/MalavS298/basiscpk/internal/apperr"
)

var ErrSettingsNotFound = fmt.Errorf("settings %w", apperr.ErrNotFound)
