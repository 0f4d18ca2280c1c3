package inmemory

import (
	"context"
	"sort"

	"github.com/MalavS298/basiscpk/internal/domain/messages"
)

type MessageRepository struct {
	store *Store
}

func (r *MessageRepository) Create(ctx context.Context, message *messages.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.messages[message.ID] = *message
	return nil
}

func (r *MessageRepository) List(ctx context.Context, userID string) ([]messages.WithSender, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]messages.WithSender, 0)
	for _, item := range r.store.messages {
		if userID != "" && item.UserID != userID {
			continue
		}
		row := messages.WithSender{Message: item}
		if profile, ok := r.store.profiles[item.UserID]; ok {
			row.SenderEmail = profile.Email
			row.SenderName = profile.FullName
		}
		result = append(result, row)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *MessageRepository) MarkRead(ctx context.Context, id string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.messages[id]
	if !ok {
		return false, nil
	}
	item.Read = true
	r.store.messages[id] = item
	return true, nil
}

func (r *MessageRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.messages[id]; !ok {
		return false, nil
	}
	delete(r.store.messages, id)
	return true, nil
}
