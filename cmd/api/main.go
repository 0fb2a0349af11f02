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
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"portfolio/internal/api"
	"portfolio/internal/auth"
	"portfolio/internal/cache"
	"portfolio/internal/config"
	"portfolio/internal/database"
	"portfolio/internal/logging"
	"portfolio/internal/storage"
	"portfolio/internal/upload"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.New(cfg.App)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("api stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if cfg.UsesInsecureSecret() {
		logger.Warn("JWT_SECRET not set, using the insecure development key")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Error("close database failed", slog.Any("error", err))
		}
	}()
	logger.Info("database connection ready")

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info("database migrated")

	store, err := newStore(cfg)
	if err != nil {
		return err
	}
	var scanner upload.Scanner
	if cfg.Upload.ClamdAddr != "" {
		scanner = upload.NewClamdScanner(cfg.Upload.ClamdAddr)
		logger.Info("upload scanning enabled", slog.String("clamd_addr", cfg.Upload.ClamdAddr))
	}

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("init token service: %w", err)
	}

	deps := api.Deps{
		DB:      db,
		Tokens:  tokens,
		Uploads: upload.NewHandler(store, cfg.Upload.MaxBytes, scanner),
		Lists:   cache.New(cfg.Cache.TTL),
		Auth:    cfg.Auth,
		Contact: cfg.Contact,
		Origins: cfg.API.Origins(),
		Logger:  logger,
	}

	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("close redis client failed", slog.Any("error", err))
			}
		}()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}

		asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr()})
		defer asynqClient.Close()

		deps.Redis = redisClient
		deps.Tasks = asynqClient
		logger.Info("redis ready", slog.String("addr", cfg.Redis.Addr()))
	} else {
		logger.Warn("redis disabled: login throttling, contact notifications and live feed are off")
	}

	router := api.NewRouter(cfg, logger)
	api.RegisterRoutes(router, deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           api.WithCORS(router, cfg.API.Origins()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Upload.Backend {
	case "minio":
		client, err := storage.NewClient(cfg.MinIO)
		if err != nil {
			return nil, fmt.Errorf("init minio storage: %w", err)
		}
		return client, nil
	default:
		store, err := storage.NewLocalStore(cfg.Upload.Dir)
		if err != nil {
			return nil, fmt.Errorf("init upload dir: %w", err)
		}
		return store, nil
	}
}
