package alerts

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Queue enqueues notification tasks onto Redis. It is the production
// Notifier implementation.
type Queue struct {
	client *asynq.Client
}

func NewQueue(redisAddr string) *Queue {
	return &Queue{client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})}
}

func (q *Queue) Close() error {
	return q.client.Close()
}

// Welcome schedules the signup email for a new account.
func (q *Queue) Welcome(userID uuid.UUID, name, email string) error {
	env := EmailEnvelope{
		To:      email,
		Subject: fmt.Sprintf("Welcome to DevConnect, %s!", name),
		Body:    fmt.Sprintf("Hi %s, thanks for joining DevConnect. Set up your developer profile to get started.", name),
	}
	payload := WelcomeEmailPayload{UserID: userID, Name: name, Email: email, Envelope: env, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	_, err := q.client.Enqueue(asynq.NewTask(TaskWelcomeEmail, b), asynq.Queue("emails"))
	return err
}

// NewFollower schedules an in-app notification for the followed user.
func (q *Queue) NewFollower(targetID, followerID uuid.UUID, followerName string) error {
	payload := NewFollowerPayload{UserID: targetID, FollowerID: followerID, FollowerName: followerName, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	_, err := q.client.Enqueue(asynq.NewTask(TaskNewFollower, b), asynq.Queue("notifications"))
	return err
}

// NewComment schedules an in-app notification for the post author.
func (q *Queue) NewComment(authorID uuid.UUID, commenterName string, postID uuid.UUID) error {
	payload := NewCommentPayload{UserID: authorID, PostID: postID, CommenterName: commenterName, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	_, err := q.client.Enqueue(asynq.NewTask(TaskNewComment, b), asynq.Queue("notifications"))
	return err
}
