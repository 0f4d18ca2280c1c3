// Package inmemory keeps every table in process memory. It backs
// STORE_DRIVER=memory for local development and the HTTP handler tests.
package inmemory

import (
	"maps"
	"sync"
	"time"

	"github.com/MalavS298/basiscpk/internal/domain/meetings"
	"github.com/MalavS298/basiscpk/internal/domain/messages"
	"github.com/MalavS298/basiscpk/internal/domain/newsletters"
	"github.com/MalavS298/basiscpk/internal/domain/settings"
	"github.com/MalavS298/basiscpk/internal/domain/submissions"
	"github.com/MalavS298/basiscpk/internal/domain/user"
)

type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	profiles    map[string]user.Profile
	roles       map[string]user.RoleAssignment
	submissions map[string]submissions.Submission
	newsletters map[string]newsletters.Newsletter
	messages    map[string]messages.Message
	meetings    map[string]meetings.Meeting
	details     map[string]meetings.Details
	settings    settings.AppSettings
}

func NewStore() *Store {
	defaults := settings.Defaults()
	defaults.UpdatedAt = time.Now().UTC()
	return &Store{
		profiles:    make(map[string]user.Profile),
		roles:       make(map[string]user.RoleAssignment),
		submissions: make(map[string]submissions.Submission),
		newsletters: make(map[string]newsletters.Newsletter),
		messages:    make(map[string]messages.Message),
		meetings:    make(map[string]meetings.Meeting),
		details:     make(map[string]meetings.Details),
		settings:    defaults,
	}
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{store: s}
}

func (s *Store) Submissions() *SubmissionRepository {
	return &SubmissionRepository{store: s}
}

func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{store: s}
}

func (s *Store) Newsletters() *NewsletterRepository {
	return &NewsletterRepository{store: s}
}

func (s *Store) Messages() *MessageRepository {
	return &MessageRepository{store: s}
}

func (s *Store) Meetings() *MeetingRepository {
	return &MeetingRepository{store: s}
}

func (s *Store) Stats() *StatsRepository {
	return &StatsRepository{store: s}
}

// transaction runs fn against a private copy of the user-owned tables and
// commits only the keys fn changed. A failed fn leaves the shared tables
// untouched, so writes made outside the transaction survive either way.
// Transactions are serialized among themselves.
func (s *Store) transaction(fn func(tx *Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	base := &Store{
		profiles:    maps.Clone(s.profiles),
		roles:       maps.Clone(s.roles),
		submissions: maps.Clone(s.submissions),
	}
	s.mu.RUnlock()

	tx := &Store{
		profiles:    maps.Clone(base.profiles),
		roles:       maps.Clone(base.roles),
		submissions: maps.Clone(base.submissions),
	}
	if err := fn(tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	applyChanges(s.profiles, base.profiles, tx.profiles)
	applyChanges(s.roles, base.roles, tx.roles)
	applyChanges(s.submissions, base.submissions, tx.submissions)
	return nil
}

// applyChanges replays onto dst the difference between before and after.
func applyChanges[K comparable, V comparable](dst, before, after map[K]V) {
	for key := range before {
		if _, ok := after[key]; !ok {
			delete(dst, key)
		}
	}
	for key, value := range after {
		if prev, ok := before[key]; !ok || prev != value {
			dst[key] = value
		}
	}
}
