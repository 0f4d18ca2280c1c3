package inmemory

import (
	"context"
	"time"

	"github.com/MalavS298/basiscpk/internal/domain/settings"
)

type SettingsRepository struct {
	store *Store
}

func (r *SettingsRepository) Get(ctx context.Context) (*settings.AppSettings, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	row := r.store.settings
	return &row, nil
}

func (r *SettingsRepository) SetAcceptingResponses(ctx context.Context, accepting bool, at time.Time) (*settings.AppSettings, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.settings.AcceptingResponses = accepting
	r.store.settings.UpdatedAt = at
	row := r.store.settings
	return &row, nil
}
