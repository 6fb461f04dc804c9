package alerts

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

func TestProcessorWritesFollowerNotification(t *testing.T) {
	repo := NewInMemoryRepository()
	p := &Processor{repo: repo}

	target := uuid.New()
	follower := uuid.New()
	b, _ := json.Marshal(NewFollowerPayload{
		UserID: target, FollowerID: follower, FollowerName: "Bob", SentAt: time.Now(),
	})

	if err := p.handleNewFollower(context.Background(), asynq.NewTask(TaskNewFollower, b)); err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	items, _ := repo.ListByUser(context.Background(), target)
	if len(items) != 1 || items[0].Type != "new_follower" {
		t.Fatalf("unexpected notifications: %+v", items)
	}
	if items[0].Body != "Bob started following you" {
		t.Fatalf("unexpected body: %s", items[0].Body)
	}
	if items[0].Reference == nil || *items[0].Reference != follower {
		t.Fatalf("expected follower reference, got %+v", items[0].Reference)
	}
}

func TestProcessorWritesCommentNotification(t *testing.T) {
	repo := NewInMemoryRepository()
	p := &Processor{repo: repo}

	author := uuid.New()
	postID := uuid.New()
	b, _ := json.Marshal(NewCommentPayload{
		UserID: author, PostID: postID, CommenterName: "Alice", SentAt: time.Now(),
	})

	if err := p.handleNewComment(context.Background(), asynq.NewTask(TaskNewComment, b)); err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	items, _ := repo.ListByUser(context.Background(), author)
	if len(items) != 1 || items[0].Type != "new_comment" {
		t.Fatalf("unexpected notifications: %+v", items)
	}
}

func TestProcessorRejectsMalformedPayload(t *testing.T) {
	p := &Processor{repo: NewInMemoryRepository()}
	if err := p.handleNewComment(context.Background(), asynq.NewTask(TaskNewComment, []byte("{"))); err == nil {
		t.Fatal("expected unmarshal error")
	}
}
