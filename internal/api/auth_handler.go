package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio/internal/api/middleware"
	"portfolio/internal/auth"
	"portfolio/internal/errcode"
)

// AuthHandler 处理注册与登录。
type AuthHandler struct {
	credentials *auth.Credentials
	tokens      *auth.TokenService
	guard       *LoginGuard
}

// NewAuthHandler 构造认证处理器。guard 可以为 nil。
func NewAuthHandler(credentials *auth.Credentials, tokens *auth.TokenService, guard *LoginGuard) *AuthHandler {
	return &AuthHandler{credentials: credentials, tokens: tokens, guard: guard}
}

type registerRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,max=72"`
}

type userResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Register 创建新用户账号，响应中不包含密码。
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	logger := middleware.LoggerFromContext(c).With(slog.String("username", req.Username))

	user, err := h.credentials.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, errcode.ErrConflict) {
			logger.Info("register conflict: user already exists")
		}
		respondError(c, err)
		return
	}

	logger.Info("user registered", slog.Uint64("user_id", uint64(user.ID)))
	c.JSON(http.StatusCreated, userResponse{ID: user.ID, Username: user.Username, Email: user.Email})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expires_in"`
	User      userResponse `json:"user"`
}

// Login 校验口令并返回 Token。未知用户与错误密码返回同一个 401。
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c).With(slog.String("username", req.Username))

	if err := h.guard.Allow(ctx, c.ClientIP(), req.Username); err != nil {
		logger.Warn("login throttled", slog.Any("error", err))
		respondError(c, err)
		return
	}

	user, err := h.credentials.Verify(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, errcode.ErrInvalidCredentials) {
			logger.Info("login failed")
			h.guard.Failed(ctx, req.Username)
		}
		respondError(c, err)
		return
	}
	h.guard.Succeeded(ctx, req.Username)

	token, err := h.tokens.Issue(user.ID, user.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("user logged in", slog.Uint64("user_id", uint64(user.ID)))
	c.JSON(http.StatusOK, loginResponse{
		Token:     token,
		ExpiresIn: int64(h.tokens.TTL().Seconds()),
		User:      userResponse{ID: user.ID, Username: user.Username},
	})
}
