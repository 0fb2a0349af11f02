package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"portfolio/internal/api/middleware"
	"portfolio/internal/repository"
	"portfolio/internal/tasks"
)

// TaskEnqueuer 是处理器用到的 *asynq.Client 子集。
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ContactHandler 处理访客留言。提交是唯一无需登录的写操作。
type ContactHandler struct {
	messages *repository.ContactMessages
	tasks    TaskEnqueuer
}

// NewContactHandler 构造留言处理器。enqueuer 为 nil 时不发送通知。
func NewContactHandler(messages *repository.ContactMessages, enqueuer TaskEnqueuer) *ContactHandler {
	return &ContactHandler{messages: messages, tasks: enqueuer}
}

type contactRequest struct {
	Name    string `json:"name" binding:"required,max=255"`
	Email   string `json:"email" binding:"required,email,max=255"`
	Subject string `json:"subject" binding:"max=255"`
	Message string `json:"message" binding:"required,max=10000"`
}

// Create 保存留言并投递通知任务，响应中不回显留言内容。
func (h *ContactHandler) Create(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	ctx := c.Request.Context()
	msg, err := h.messages.Create(ctx, repository.ContactFields{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.notify(c, tasks.ContactNotifyPayload{
		MessageID:     msg.ID,
		Name:          msg.Name,
		Email:         msg.Email,
		Subject:       msg.Subject,
		CreatedAt:     msg.CreatedAt,
		CorrelationID: middleware.GetCorrelationID(c),
	})

	message(c, http.StatusCreated, "Message sent successfully")
}

// List 按时间倒序返回全部留言。
func (h *ContactHandler) List(c *gin.Context) {
	msgs, err := h.messages.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// notify 投递通知任务；失败只记录日志，留言本身已保存。
func (h *ContactHandler) notify(c *gin.Context, payload tasks.ContactNotifyPayload) {
	if h.tasks == nil {
		return
	}
	log := middleware.LoggerFromContext(c).With(slog.Uint64("message_id", uint64(payload.MessageID)))

	task, err := tasks.NewContactNotifyTask(payload)
	if err != nil {
		log.Error("build notify task failed", slog.Any("error", err))
		return
	}
	info, err := h.tasks.EnqueueContext(c.Request.Context(), task)
	if err != nil {
		log.Warn("enqueue notify task failed", slog.Any("error", err))
		return
	}
	log.Info("notify task enqueued", slog.String("task_id", info.ID))
}
