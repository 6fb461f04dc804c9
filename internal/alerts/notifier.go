package alerts

import "github.com/google/uuid"

// Notifier is the surface handlers use to fire background notifications.
// Delivery is best effort; callers log failures and carry on.
type Notifier interface {
	Welcome(userID uuid.UUID, name, email string) error
	NewFollower(targetID, followerID uuid.UUID, followerName string) error
	NewComment(authorID uuid.UUID, commenterName string, postID uuid.UUID) error
}

// Nop discards every notification. Used in tests and when the queue is
// not configured.
type Nop struct{}

func (Nop) Welcome(uuid.UUID, string, string) error                { return nil }
func (Nop) NewFollower(uuid.UUID, uuid.UUID, string) error         { return nil }
func (Nop) NewComment(uuid.UUID, string, uuid.UUID) error          { return nil }
