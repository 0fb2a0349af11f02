package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"portfolio/internal/config"
	"portfolio/internal/logging"
	"portfolio/internal/metrics"
	"portfolio/internal/tasks"
	"portfolio/internal/worker"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}

	cfg := config.MustLoad()

	logger := logging.New(cfg.App)
	slog.SetDefault(logger)

	if !cfg.Redis.Enabled {
		logger.Error("worker requires REDIS_ENABLED=true")
		os.Exit(1)
	}

	redisAddr := cfg.Redis.Addr()
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	if cfg.Worker.MetricsPort > 0 {
		go serveMetrics(cfg.Worker.MetricsPort, logger)
	}

	server := asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{
		Concurrency: cfg.Worker.Concurrency,
		Logger:      asynqLogger{logger},
	})

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.Handle(tasks.TypeContactNotify, worker.NewContactNotifyHandler(redisClient, logger))

	logger.Info("worker service started", slog.String("redis_addr", redisAddr))
	if err := server.Run(mux); err != nil {
		logger.Error("worker server stopped", slog.Any("error", err))
	}
}

func serveMetrics(port int, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("worker metrics listening", slog.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("worker metrics server stopped", slog.Any("error", err))
	}
}

// asynqLogger 将 asynq 的日志接入 slog。
type asynqLogger struct{ l *slog.Logger }

// Debug 输出调试日志。
func (a asynqLogger) Debug(args ...any) { a.l.Debug(fmt.Sprint(args...)) }
// Info 输出普通日志。
func (a asynqLogger) Info(args ...any)  { a.l.Info(fmt.Sprint(args...)) }
// Warn 输出警告日志。
func (a asynqLogger) Warn(args ...any)  { a.l.Warn(fmt.Sprint(args...)) }
// Error 输出错误日志。
func (a asynqLogger) Error(args ...any) { a.l.Error(fmt.Sprint(args...)) }
// Fatal 记录错误后退出进程。
func (a asynqLogger) Fatal(args ...any) {
	a.l.Error(fmt.Sprint(args...))
	os.Exit(1)
}
