package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"portfolio/internal/tasks"
)

// ContactFeedMessage 是通过 Redis Pub/Sub 转发给后台 WebSocket 的消息。
// 注意：这里的字段名与前端解析保持一致。
type ContactFeedMessage struct {
	Type          string    `json:"type"`
	MessageID     uint      `json:"message_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Subject       string    `json:"subject"`
	CreatedAt     time.Time `json:"created_at"`
	CorrelationID string    `json:"correlation_id"`
}

// Publisher 是处理器用到的 Redis 客户端子集。
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// ContactNotifyHandler 消费 contact:notify 任务并广播到后台频道。
type ContactNotifyHandler struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewContactNotifyHandler 构造留言通知处理器。
func NewContactNotifyHandler(publisher Publisher, logger *slog.Logger) *ContactNotifyHandler {
	return &ContactNotifyHandler{publisher: publisher, logger: logger}
}

// ProcessTask 实现 asynq.Handler。
func (h *ContactNotifyHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload tasks.ContactNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("unmarshal task payload failed", slog.Any("error", err))
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}

	log := h.logger.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Uint64("message_id", uint64(payload.MessageID)),
	)

	body, err := json.Marshal(ContactFeedMessage{
		Type:          "contact_message",
		MessageID:     payload.MessageID,
		Name:          payload.Name,
		Email:         payload.Email,
		Subject:       payload.Subject,
		CreatedAt:     payload.CreatedAt,
		CorrelationID: payload.CorrelationID,
	})
	if err != nil {
		return fmt.Errorf("encode feed message: %w", err)
	}

	receivers, err := h.publisher.Publish(ctx, tasks.ContactFeedChannel, body).Result()
	if err != nil {
		log.Error("publish contact notification failed", slog.Any("error", err))
		return err
	}

	log.Info("contact notification published", slog.Int64("receivers", receivers))
	return nil
}
