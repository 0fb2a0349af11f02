package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"portfolio/internal/tasks"
)

type fakePublisher struct {
	channel string
	message []byte
	err     error
}

func (p *fakePublisher) Publish(_ context.Context, channel string, message any) *redis.IntCmd {
	p.channel = channel
	p.message, _ = message.([]byte)
	return redis.NewIntResult(1, p.err)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestContactNotifyHandler_PublishesToFeed(t *testing.T) {
	pub := &fakePublisher{}
	h := NewContactNotifyHandler(pub, discardLogger())

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	task, err := tasks.NewContactNotifyTask(tasks.ContactNotifyPayload{
		MessageID: 9,
		Name:      "Grace",
		Email:     "grace@example.com",
		Subject:   "Hello",
		CreatedAt: created,
	})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}

	if err := h.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("process: %v", err)
	}
	if pub.channel != tasks.ContactFeedChannel {
		t.Fatalf("channel = %q", pub.channel)
	}

	var msg ContactFeedMessage
	if err := json.Unmarshal(pub.message, &msg); err != nil {
		t.Fatalf("decode published message: %v", err)
	}
	if msg.Type != "contact_message" || msg.MessageID != 9 || msg.Name != "Grace" || !msg.CreatedAt.Equal(created) {
		t.Fatalf("message = %+v", msg)
	}
}

func TestContactNotifyHandler_BadPayloadSkipsRetry(t *testing.T) {
	h := NewContactNotifyHandler(&fakePublisher{}, discardLogger())

	err := h.ProcessTask(context.Background(), asynq.NewTask(tasks.TypeContactNotify, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("err = %v, want SkipRetry", err)
	}
}

func TestContactNotifyHandler_PublishErrorIsRetried(t *testing.T) {
	boom := errors.New("redis down")
	h := NewContactNotifyHandler(&fakePublisher{err: boom}, discardLogger())

	task, _ := tasks.NewContactNotifyTask(tasks.ContactNotifyPayload{MessageID: 1})
	if err := h.ProcessTask(context.Background(), task); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}
