package api

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"portfolio/internal/config"
	"portfolio/internal/errcode"
)

type redisRateCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

func incrWithTTL(ctx context.Context, client redisRateCounter, key string, ttl time.Duration) (int64, error) {
	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		_ = client.Expire(ctx, key, ttl).Err()
	}
	return count, nil
}

// loginStore 是登录防护用到的 redis.UniversalClient 子集。
type loginStore interface {
	redisRateCounter
	TTL(ctx context.Context, key string) *redis.DurationCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// LoginGuard 限制登录频率，并在连续失败后临时锁定账号。
// Redis 故障时放行，登录本身不依赖 Redis。
type LoginGuard struct {
	store     loginStore
	perHour   int
	threshold int
	lockTTL   time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewLoginGuard 在 store 为 nil 时返回 nil；nil 防护放行所有请求。
func NewLoginGuard(store loginStore, cfg config.AuthConfig, logger *slog.Logger) *LoginGuard {
	if store == nil {
		return nil
	}
	return &LoginGuard{
		store:     store,
		perHour:   cfg.LoginRateLimitPerHour,
		threshold: cfg.LoginLockThreshold,
		lockTTL:   cfg.LoginLockTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// Allow 记录一次来自 ip 的登录尝试，并判断是否放行。
func (g *LoginGuard) Allow(ctx context.Context, ip, username string) error {
	if g == nil {
		return nil
	}
	user := strings.ToLower(strings.TrimSpace(username))

	// 速率限制：每 IP+用户名 每小时 perHour 次
	if g.perHour > 0 {
		rateKey := "rate:login:" + ip + ":" + user + ":" + g.now().UTC().Format("2006010215")
		count, err := incrWithTTL(ctx, g.store, rateKey, time.Hour)
		if err != nil {
			g.logger.Warn("login rate counter unavailable", slog.Any("error", err))
			count = 0
		}
		if count > int64(g.perHour) {
			return errcode.ErrRateLimited
		}
	}

	if ttl, _ := g.store.TTL(ctx, lockKey(user)).Result(); ttl > 0 {
		return errcode.New(errcode.ErrRateLimited, "Account temporarily locked")
	}
	return nil
}

// Failed 记录一次失败，达到阈值后锁定账号。
func (g *LoginGuard) Failed(ctx context.Context, username string) {
	if g == nil || g.threshold <= 0 {
		return
	}
	user := strings.ToLower(strings.TrimSpace(username))

	count, err := incrWithTTL(ctx, g.store, failKey(user), g.lockTTL)
	if err != nil {
		g.logger.Warn("login failure counter unavailable", slog.Any("error", err))
		return
	}
	if count >= int64(g.threshold) {
		if err := g.store.Set(ctx, lockKey(user), 1, g.lockTTL).Err(); err != nil {
			g.logger.Warn("lock account failed", slog.Any("error", err))
			return
		}
		g.logger.Info("account locked after repeated failures", slog.String("username", user))
	}
}

// Succeeded 清空失败计数。
func (g *LoginGuard) Succeeded(ctx context.Context, username string) {
	if g == nil {
		return
	}
	_ = g.store.Del(ctx, failKey(strings.ToLower(strings.TrimSpace(username)))).Err()
}

func lockKey(user string) string { return "lock:login:" + user }
func failKey(user string) string { return "lock:login:fail:" + user }
