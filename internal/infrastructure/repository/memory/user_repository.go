package memory

import (
	"context"
	"strings"

	"github.com/riskibarqy/matchday/internal/domain/user"
)

type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store, users []user.User) *UserRepository {
	store.mu.Lock()
	for _, item := range users {
		store.users[item.ID] = item
	}
	store.mu.Unlock()

	return &UserRepository{store: store}
}

func (r *UserRepository) GetByID(_ context.Context, userID string) (user.User, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.users[strings.TrimSpace(userID)]
	return item, ok, nil
}
