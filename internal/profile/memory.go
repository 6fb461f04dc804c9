package profile

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type InMemoryRepository struct {
	mu       sync.RWMutex
	profiles []Profile
	resolve  func(userID uuid.UUID) (name, avatar string)
}

// NewInMemoryRepository builds a test repository. resolve supplies the owner
// name/avatar the Postgres implementation gets from its JOIN; nil leaves
// them blank.
func NewInMemoryRepository(resolve func(userID uuid.UUID) (string, string)) *InMemoryRepository {
	return &InMemoryRepository{resolve: resolve}
}

func (r *InMemoryRepository) Upsert(_ context.Context, p Profile) (Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.profiles {
		if existing.UserID == p.UserID {
			p.ID = existing.ID
			p.Experience = existing.Experience
			p.Education = existing.Education
			p.CreatedAt = existing.CreatedAt
			r.profiles[i] = p
			return r.hydrate(p), nil
		}
	}
	if p.Experience == nil {
		p.Experience = []Experience{}
	}
	if p.Education == nil {
		p.Education = []Education{}
	}
	r.profiles = append(r.profiles, p)
	return r.hydrate(p), nil
}

func (r *InMemoryRepository) GetByUser(_ context.Context, userID uuid.UUID) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.profiles {
		if p.UserID == userID {
			return r.hydrate(p), nil
		}
	}
	return Profile{}, ErrNotFound
}

func (r *InMemoryRepository) List(_ context.Context) ([]Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Profile{}
	for i := len(r.profiles) - 1; i >= 0; i-- {
		out = append(out, r.hydrate(r.profiles[i]))
	}
	return out, nil
}

func (r *InMemoryRepository) AddExperience(_ context.Context, profileID uuid.UUID, exp Experience) (Experience, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.profiles {
		if p.ID == profileID {
			// Newest entry first, matching the Postgres ordering closely enough
			// for handler behavior.
			r.profiles[i].Experience = append([]Experience{exp}, p.Experience...)
			return exp, nil
		}
	}
	return Experience{}, ErrNotFound
}

func (r *InMemoryRepository) DeleteExperience(_ context.Context, profileID, expID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.profiles {
		if p.ID != profileID {
			continue
		}
		for j, e := range p.Experience {
			if e.ID == expID {
				r.profiles[i].Experience = append(p.Experience[:j], p.Experience[j+1:]...)
				return nil
			}
		}
	}
	return ErrItemNotFound
}

func (r *InMemoryRepository) AddEducation(_ context.Context, profileID uuid.UUID, edu Education) (Education, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.profiles {
		if p.ID == profileID {
			r.profiles[i].Education = append([]Education{edu}, p.Education...)
			return edu, nil
		}
	}
	return Education{}, ErrNotFound
}

func (r *InMemoryRepository) DeleteEducation(_ context.Context, profileID, eduID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.profiles {
		if p.ID != profileID {
			continue
		}
		for j, e := range p.Education {
			if e.ID == eduID {
				r.profiles[i].Education = append(p.Education[:j], p.Education[j+1:]...)
				return nil
			}
		}
	}
	return ErrItemNotFound
}

func (r *InMemoryRepository) hydrate(p Profile) Profile {
	p.User.ID = p.UserID
	if r.resolve != nil {
		p.User.Name, p.User.Avatar = r.resolve(p.UserID)
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	return p
}
