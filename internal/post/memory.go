package post

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository mirrors the Postgres ordering rules (newest first) for
// tests and local development.
type InMemoryRepository struct {
	mu       sync.RWMutex
	posts    []Post
	likes    []struct {
		postID uuid.UUID
		like   Like
	}
	comments []Comment
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) Create(_ context.Context, p Post) (Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.Likes = []Like{}
	p.Comments = []Comment{}
	r.posts = append(r.posts, p)
	return p, nil
}

func (r *InMemoryRepository) List(_ context.Context) ([]Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Post{}
	for i := len(r.posts) - 1; i >= 0; i-- {
		out = append(out, r.hydrate(r.posts[i]))
	}
	return out, nil
}

func (r *InMemoryRepository) Get(_ context.Context, id uuid.UUID) (Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.posts {
		if p.ID == id {
			return r.hydrate(p), nil
		}
	}
	return Post{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.posts {
		if p.ID == id {
			r.posts = append(r.posts[:i], r.posts[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) Like(_ context.Context, postID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.postExists(postID) {
		return ErrNotFound
	}
	for _, l := range r.likes {
		if l.postID == postID && l.like.UserID == userID {
			return ErrAlreadyLiked
		}
	}
	r.likes = append(r.likes, struct {
		postID uuid.UUID
		like   Like
	}{postID: postID, like: Like{UserID: userID, CreatedAt: time.Now().UTC()}})
	return nil
}

func (r *InMemoryRepository) Unlike(_ context.Context, postID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, l := range r.likes {
		if l.postID == postID && l.like.UserID == userID {
			r.likes = append(r.likes[:i], r.likes[i+1:]...)
			return nil
		}
	}
	return ErrNotLiked
}

func (r *InMemoryRepository) Likes(_ context.Context, postID uuid.UUID) ([]Like, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.likesLocked(postID), nil
}

func (r *InMemoryRepository) AddComment(_ context.Context, cm Comment) (Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.postExists(cm.PostID) {
		return Comment{}, ErrNotFound
	}
	r.comments = append(r.comments, cm)
	return cm, nil
}

func (r *InMemoryRepository) GetComment(_ context.Context, postID, commentID uuid.UUID) (Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, cm := range r.comments {
		if cm.ID == commentID && cm.PostID == postID {
			return cm, nil
		}
	}
	return Comment{}, ErrCommentNotFound
}

func (r *InMemoryRepository) DeleteComment(_ context.Context, commentID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, cm := range r.comments {
		if cm.ID == commentID {
			r.comments = append(r.comments[:i], r.comments[i+1:]...)
			return nil
		}
	}
	return ErrCommentNotFound
}

func (r *InMemoryRepository) Comments(_ context.Context, postID uuid.UUID) ([]Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.commentsLocked(postID), nil
}

func (r *InMemoryRepository) postExists(id uuid.UUID) bool {
	for _, p := range r.posts {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (r *InMemoryRepository) likesLocked(postID uuid.UUID) []Like {
	likes := []Like{}
	for i := len(r.likes) - 1; i >= 0; i-- {
		if r.likes[i].postID == postID {
			likes = append(likes, r.likes[i].like)
		}
	}
	return likes
}

func (r *InMemoryRepository) commentsLocked(postID uuid.UUID) []Comment {
	comments := []Comment{}
	for i := len(r.comments) - 1; i >= 0; i-- {
		if r.comments[i].PostID == postID {
			comments = append(comments, r.comments[i])
		}
	}
	return comments
}

func (r *InMemoryRepository) hydrate(p Post) Post {
	p.Likes = r.likesLocked(p.ID)
	p.Comments = r.commentsLocked(p.ID)
	return p
}
