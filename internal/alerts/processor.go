package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Processor consumes queued tasks: it sends signup email and writes
// in-app notification rows.
type Processor struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	repo   Repository
	mailer *Mailer
}

// NewProcessor wires the task handlers. mailer may be nil, in which case
// email tasks are logged and dropped instead of retried forever.
func NewProcessor(redisAddr string, repo Repository, mailer *Mailer) *Processor {
	p := &Processor{
		server: asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"emails":        10,
				"notifications": 5,
			},
		}),
		mux:    asynq.NewServeMux(),
		repo:   repo,
		mailer: mailer,
	}
	p.mux.HandleFunc(TaskWelcomeEmail, p.handleWelcomeEmail)
	p.mux.HandleFunc(TaskNewFollower, p.handleNewFollower)
	p.mux.HandleFunc(TaskNewComment, p.handleNewComment)
	return p
}

// Start runs the worker in the background.
func (p *Processor) Start() {
	go func() {
		if err := p.server.Run(p.mux); err != nil {
			log.Printf("alerts worker stopped: %v", err)
		}
	}()
}

func (p *Processor) Shutdown() {
	p.server.Shutdown()
}

func (p *Processor) handleWelcomeEmail(_ context.Context, t *asynq.Task) error {
	var payload WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	if p.mailer == nil {
		log.Printf("[alerts] mailer not configured, dropping welcome email for %s", payload.Email)
		return nil
	}
	if err := p.mailer.Send(payload.Email, payload.Envelope.Subject, payload.Envelope.Body); err != nil {
		log.Printf("[alerts] welcome email to %s failed: %v", payload.Email, err)
		return err
	}
	log.Printf("[alerts] welcome email sent to=%s user=%s", payload.Email, payload.UserID)
	return nil
}

func (p *Processor) handleNewFollower(ctx context.Context, t *asynq.Task) error {
	var payload NewFollowerPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	ref := payload.FollowerID
	return p.repo.Insert(ctx, Notification{
		ID:        uuid.New(),
		UserID:    payload.UserID,
		Type:      "new_follower",
		Title:     "New follower",
		Body:      fmt.Sprintf("%s started following you", payload.FollowerName),
		Reference: &ref,
		CreatedAt: time.Now().UTC(),
	})
}

func (p *Processor) handleNewComment(ctx context.Context, t *asynq.Task) error {
	var payload NewCommentPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	ref := payload.PostID
	return p.repo.Insert(ctx, Notification{
		ID:        uuid.New(),
		UserID:    payload.UserID,
		Type:      "new_comment",
		Title:     "New comment",
		Body:      fmt.Sprintf("%s commented on your post", payload.CommenterName),
		Reference: &ref,
		CreatedAt: time.Now().UTC(),
	})
}
