package repository

import (
	"context"

	"gorm.io/gorm"

	"portfolio/internal/database"
)

// ContactFields 是访客提交的留言字段。
type ContactFields struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// ContactMessages 只追加，不提供更新与删除。
type ContactMessages struct {
	db *gorm.DB
}

// NewContactMessages 构造留言仓储。
func NewContactMessages(db *gorm.DB) *ContactMessages {
	return &ContactMessages{db: db}
}

// Create 保存一条留言。
func (r *ContactMessages) Create(ctx context.Context, f ContactFields) (*database.ContactMessage, error) {
	msg := database.ContactMessage{
		Name:    f.Name,
		Email:   f.Email,
		Subject: f.Subject,
		Message: f.Message,
	}
	if err := r.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// List 按时间倒序返回全部留言。
func (r *ContactMessages) List(ctx context.Context) ([]database.ContactMessage, error) {
	msgs := []database.ContactMessage{}
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}
