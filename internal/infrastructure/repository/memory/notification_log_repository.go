package memory

import (
	"context"

	"github.com/riskibarqy/matchday/internal/domain/notification"
)

type NotificationLogRepository struct {
	store *Store
}

func NewNotificationLogRepository(store *Store) *NotificationLogRepository {
	return &NotificationLogRepository{store: store}
}

func (r *NotificationLogRepository) Insert(_ context.Context, item notification.Log) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item.UserIDs = append([]string(nil), item.UserIDs...)
	r.store.notifications = append(r.store.notifications, item)
	return nil
}

// List returns every log written so far, oldest first.
func (r *NotificationLogRepository) List() []notification.Log {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return append([]notification.Log(nil), r.store.notifications...)
}
