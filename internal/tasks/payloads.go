package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypeContactNotify = "contact:notify"
)

// ContactFeedChannel 是后台实时推送订阅的 Redis 频道。
const ContactFeedChannel = "contact_feed"

// ContactNotifyPayload 描述一条新留言通知所需的最小信息，不含正文。
type ContactNotifyPayload struct {
	MessageID     uint      `json:"message_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Subject       string    `json:"subject"`
	CreatedAt     time.Time `json:"created_at"`
	CorrelationID string    `json:"correlation_id"`
}

// NewContactNotifyTask 构造一个新留言通知任务。
func NewContactNotifyTask(p ContactNotifyPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeContactNotify, payload, asynq.MaxRetry(3), asynq.Timeout(30*time.Second)), nil
}
