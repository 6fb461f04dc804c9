package user

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type edge struct {
	follower uuid.UUID
	followed uuid.UUID
}

// InMemoryRepository keeps users and follow edges in process memory.
// It backs the handler tests and local development without Postgres.
type InMemoryRepository struct {
	mu    sync.RWMutex
	users []User
	edges []edge
}

func NewInMemoryRepository(seed []User) *InMemoryRepository {
	repo := &InMemoryRepository{users: make([]User, 0, len(seed))}
	repo.users = append(repo.users, seed...)
	return repo
}

func (r *InMemoryRepository) Create(_ context.Context, u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == u.Email {
			return User{}, ErrEmailTaken
		}
	}
	r.users = append(r.users, u)
	return u, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id uuid.UUID) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *InMemoryRepository) GetByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, u := range r.users {
		if u.ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			kept := r.edges[:0]
			for _, e := range r.edges {
				if e.follower != id && e.followed != id {
					kept = append(kept, e)
				}
			}
			r.edges = kept
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) Follow(_ context.Context, followerID, followedID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.edges {
		if e.follower == followerID && e.followed == followedID {
			return ErrAlreadyFollowing
		}
	}
	r.edges = append(r.edges, edge{follower: followerID, followed: followedID})
	return nil
}

func (r *InMemoryRepository) Unfollow(_ context.Context, followerID, followedID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.edges {
		if e.follower == followerID && e.followed == followedID {
			r.edges = append(r.edges[:i], r.edges[i+1:]...)
			return nil
		}
	}
	return ErrNotFollowing
}

func (r *InMemoryRepository) Following(_ context.Context, id uuid.UUID) ([]Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := []Summary{}
	// Newest edge first, matching the Postgres ordering.
	for i := len(r.edges) - 1; i >= 0; i-- {
		if r.edges[i].follower == id {
			summaries = append(summaries, r.summary(r.edges[i].followed))
		}
	}
	return summaries, nil
}

func (r *InMemoryRepository) Followers(_ context.Context, id uuid.UUID) ([]Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := []Summary{}
	for i := len(r.edges) - 1; i >= 0; i-- {
		if r.edges[i].followed == id {
			summaries = append(summaries, r.summary(r.edges[i].follower))
		}
	}
	return summaries, nil
}

func (r *InMemoryRepository) summary(id uuid.UUID) Summary {
	for _, u := range r.users {
		if u.ID == id {
			return Summary{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
		}
	}
	return Summary{ID: id}
}
