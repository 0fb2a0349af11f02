package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"portfolio/internal/config"
	"portfolio/internal/errcode"
)

type fakeLoginStore struct {
	counters map[string]int64
	expiries map[string]time.Duration
}

func newFakeLoginStore() *fakeLoginStore {
	return &fakeLoginStore{counters: map[string]int64{}, expiries: map[string]time.Duration{}}
}

func (f *fakeLoginStore) Incr(_ context.Context, key string) *redis.IntCmd {
	f.counters[key]++
	return redis.NewIntResult(f.counters[key], nil)
}

func (f *fakeLoginStore) Expire(_ context.Context, key string, exp time.Duration) *redis.BoolCmd {
	f.expiries[key] = exp
	return redis.NewBoolResult(true, nil)
}

func (f *fakeLoginStore) TTL(_ context.Context, key string) *redis.DurationCmd {
	if exp, ok := f.expiries[key]; ok {
		return redis.NewDurationResult(exp, nil)
	}
	return redis.NewDurationResult(-2, nil)
}

func (f *fakeLoginStore) Set(_ context.Context, key string, _ any, exp time.Duration) *redis.StatusCmd {
	f.expiries[key] = exp
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeLoginStore) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.counters, k)
		delete(f.expiries, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func newGuard(store loginStore, perHour, threshold int) *LoginGuard {
	return NewLoginGuard(store, config.AuthConfig{
		LoginRateLimitPerHour: perHour,
		LoginLockThreshold:    threshold,
		LoginLockTTL:          15 * time.Minute,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLoginGuard_RateLimitsPerHour(t *testing.T) {
	g := newGuard(newFakeLoginStore(), 2, 0)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := g.Allow(ctx, "10.0.0.1", "Ada"); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}
	if err := g.Allow(ctx, "10.0.0.1", "ada"); !errors.Is(err, errcode.ErrRateLimited) {
		t.Fatalf("third attempt err = %v", err)
	}
	if err := g.Allow(ctx, "10.0.0.2", "ada"); err != nil {
		t.Fatalf("other ip: %v", err)
	}
}

func TestLoginGuard_LocksAfterRepeatedFailures(t *testing.T) {
	store := newFakeLoginStore()
	g := newGuard(store, 100, 3)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		g.Failed(ctx, "ada")
	}
	if err := g.Allow(ctx, "10.0.0.1", "ada"); err != nil {
		t.Fatalf("locked too early: %v", err)
	}

	g.Failed(ctx, "ada")
	err := g.Allow(ctx, "10.0.0.1", "ada")
	if errcode.Status(err) != 429 || errcode.Message(err) != "Account temporarily locked" {
		t.Fatalf("err = %v", err)
	}
}

func TestLoginGuard_SuccessResetsFailures(t *testing.T) {
	store := newFakeLoginStore()
	g := newGuard(store, 100, 2)
	ctx := context.Background()

	g.Failed(ctx, "ada")
	g.Succeeded(ctx, "ada")
	g.Failed(ctx, "ada")
	if err := g.Allow(ctx, "10.0.0.1", "ada"); err != nil {
		t.Fatalf("failure count not reset: %v", err)
	}
}

func TestLoginGuard_NilAllowsEverything(t *testing.T) {
	var g *LoginGuard
	if got := NewLoginGuard(nil, config.AuthConfig{}, nil); got != nil {
		t.Fatal("guard built without a store")
	}
	g.Failed(context.Background(), "ada")
	g.Succeeded(context.Background(), "ada")
	if err := g.Allow(context.Background(), "ip", "ada"); err != nil {
		t.Fatalf("nil guard blocked: %v", err)
	}
}
