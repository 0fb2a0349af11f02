package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"portfolio/internal/database"
	"portfolio/internal/errcode"
)

// UserStore 是凭据存储依赖的持久化接口。
type UserStore interface {
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	Create(ctx context.Context, user *database.User) error
	FindByUsername(ctx context.Context, username string) (*database.User, error)
}

// Credentials 负责注册账号与校验登录。
type Credentials struct {
	users UserStore

	decoyOnce sync.Once
	decoy     string
}

// NewCredentials 基于用户仓储构造凭据存储。
func NewCredentials(users UserStore) *Credentials {
	return &Credentials{users: users}
}

// Register 保存新账号，只存储密码的加盐哈希。
func (c *Credentials) Register(ctx context.Context, username, email, password string) (*database.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	switch {
	case username == "":
		return nil, errcode.Validation("username is required")
	case email == "":
		return nil, errcode.Validation("email is required")
	case password == "":
		return nil, errcode.Validation("password is required")
	case len(password) > MaxPasswordBytes:
		return nil, errcode.Validation("password must be at most %d bytes", MaxPasswordBytes)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, errcode.Validation("email is invalid")
	}

	exists, err := c.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return nil, errcode.Conflict("Username or email already exists")
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &database.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
	}
	if err := c.users.Create(ctx, user); err != nil {
		if errors.Is(err, errcode.ErrConflict) {
			return nil, errcode.Conflict("Username or email already exists")
		}
		return nil, err
	}
	return user, nil
}

// Verify 校验用户名与密码，未知用户与错误密码返回同一个错误。
func (c *Credentials) Verify(ctx context.Context, username, password string) (*database.User, error) {
	user, err := c.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, errcode.ErrNotFound) {
			// 用户不存在时也做一次比较，避免通过响应时间区分
			CheckPasswordHash(password, c.decoyHash())
			return nil, errcode.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !CheckPasswordHash(password, user.PasswordHash) {
		return nil, errcode.ErrInvalidCredentials
	}
	return user, nil
}

func (c *Credentials) decoyHash() string {
	c.decoyOnce.Do(func() {
		c.decoy, _ = HashPassword("decoy-password-for-missing-users")
	})
	return c.decoy
}
