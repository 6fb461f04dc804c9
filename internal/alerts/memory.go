package alerts

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository backs the notification endpoints in tests.
type InMemoryRepository struct {
	mu    sync.Mutex
	items []Notification
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) Insert(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
	return nil
}

func (r *InMemoryRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Notification{}
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].UserID == userID {
			out = append(out, r.items[i])
		}
	}
	return out, nil
}

func (r *InMemoryRepository) MarkRead(_ context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].UserID == userID && r.items[i].ReadAt == nil {
			now := time.Now().UTC()
			r.items[i].ReadAt = &now
			return nil
		}
	}
	return ErrNotificationNotFound
}
