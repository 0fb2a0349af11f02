package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"portfolio/internal/api/middleware"
	"portfolio/internal/auth"
	"portfolio/internal/tasks"
)

const (
	wsAuthTimeout  = 10 * time.Second
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 5 * time.Second
)

// FeedSource 持续推送留言事件，直到 ctx 结束或调用 close。
type FeedSource interface {
	Subscribe(ctx context.Context) (messages <-chan string, close func() error, err error)
}

// RedisFeed 订阅 worker 发布的 contact_feed 频道。
type RedisFeed struct {
	Client redis.UniversalClient
}

// Subscribe 订阅留言频道。
func (f RedisFeed) Subscribe(ctx context.Context) (<-chan string, func() error, error) {
	pubsub := f.Client.Subscribe(ctx, tasks.ContactFeedChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", tasks.ContactFeedChannel, err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, pubsub.Close, nil
}

// ContactFeedHandler 负责后台留言推送的 WebSocket 鉴权与转发。
type ContactFeedHandler struct {
	feed           FeedSource
	tokens         *auth.TokenService
	upgrader       websocket.Upgrader
	allowedOrigins []string
}

// NewContactFeedHandler 构造 WebSocket 处理器。feed 为 nil 时接口返回 503。
func NewContactFeedHandler(feed FeedSource, tokens *auth.TokenService, allowedOrigins []string) *ContactFeedHandler {
	h := &ContactFeedHandler{
		feed:           feed,
		tokens:         tokens,
		allowedOrigins: allowedOrigins,
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if len(h.allowedOrigins) == 0 {
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			}
			for _, allowed := range h.allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}
	return h
}

type wsAuthMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// HandleConnection 升级连接，要求首条消息为 {"type":"auth","token":...}，之后持续转发新留言。
func (h *ContactFeedHandler) HandleConnection(c *gin.Context) {
	if h.feed == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Live feed unavailable"})
		return
	}

	log := middleware.LoggerFromContext(c)
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("upgrade websocket failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	principal, err := h.authenticate(conn)
	if err != nil {
		log.Warn("websocket authentication failed", slog.Any("error", err))
		return
	}
	log = log.With(slog.Uint64("user_id", uint64(principal.ID)))

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	messages, closeFeed, err := h.feed.Subscribe(ctx)
	if err != nil {
		writeClose(conn, websocket.CloseInternalServerErr, "feed unavailable")
		log.Error("subscribe contact feed failed", slog.Any("error", err))
		return
	}
	defer func() { _ = closeFeed() }()

	if err := conn.WriteJSON(gin.H{"type": "ready"}); err != nil {
		return
	}
	log.Info("websocket authenticated")

	go readLoop(conn, cancel)

	err = forward(ctx, conn, messages)
	log.Info("websocket connection closed", slog.Any("reason", err))
}

func (h *ContactFeedHandler) authenticate(conn *websocket.Conn) (auth.Principal, error) {
	_ = conn.SetReadDeadline(time.Now().Add(wsAuthTimeout))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		return auth.Principal{}, fmt.Errorf("read auth message: %w", err)
	}

	var msg wsAuthMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		writeClose(conn, websocket.ClosePolicyViolation, "invalid auth payload")
		return auth.Principal{}, fmt.Errorf("decode auth payload: %w", err)
	}
	if msg.Type != "auth" || msg.Token == "" {
		writeClose(conn, websocket.ClosePolicyViolation, "auth required")
		return auth.Principal{}, errors.New("invalid auth message")
	}

	principal, err := h.tokens.Validate(msg.Token)
	if err != nil {
		writeClose(conn, websocket.ClosePolicyViolation, "unauthorized")
		return auth.Principal{}, err
	}

	_ = conn.SetReadDeadline(time.Time{})
	return principal, nil
}

// readLoop 丢弃客户端消息，仅用于检测断开。
func readLoop(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func forward(ctx context.Context, conn *websocket.Conn, messages <-chan string) error {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case payload, ok := <-messages:
			if !ok {
				writeClose(conn, websocket.CloseGoingAway, "feed closed")
				return errors.New("feed closed")
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
				return fmt.Errorf("write message: %w", err)
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(wsWriteTimeout)); err != nil {
				return fmt.Errorf("write ping: %w", err)
			}
		}
	}
}

func writeClose(conn *websocket.Conn, code int, text string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(wsWriteTimeout))
}
