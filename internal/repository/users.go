package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"portfolio/internal/database"
	"portfolio/internal/errcode"
)

// Users 持久化登录账号。
type Users struct {
	db *gorm.DB
}

// NewUsers 构造账号仓储。
func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// ExistsByUsernameOrEmail 判断用户名或邮箱是否已被占用。
func (r *Users) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&database.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create 保存账号，唯一约束冲突时返回 Conflict。
func (r *Users) Create(ctx context.Context, user *database.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errcode.Conflict("Username or email already exists")
		}
		return err
	}
	return nil
}

// FindByUsername 按用户名读取账号。
func (r *Users) FindByUsername(ctx context.Context, username string) (*database.User, error) {
	var user database.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err, "User not found")
	}
	return &user, nil
}
