package alerts

import (
	"time"

	"github.com/google/uuid"
)

// Task type constants
const (
	TaskWelcomeEmail = "email:welcome"
	TaskNewFollower  = "notify:new_follower"
	TaskNewComment   = "notify:new_comment"
)

// Common envelope for email-like notifications
type EmailEnvelope struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type WelcomeEmailPayload struct {
	UserID   uuid.UUID     `json:"user_id"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}

type NewFollowerPayload struct {
	UserID       uuid.UUID `json:"user_id"`
	FollowerID   uuid.UUID `json:"follower_id"`
	FollowerName string    `json:"follower_name"`
	SentAt       time.Time `json:"sent_at"`
}

type NewCommentPayload struct {
	UserID        uuid.UUID `json:"user_id"`
	PostID        uuid.UUID `json:"post_id"`
	CommenterName string    `json:"commenter_name"`
	SentAt        time.Time `json:"sent_at"`
}
