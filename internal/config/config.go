package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// InsecureJWTSecret is the signing key used when none is configured outside production.
// It is public knowledge and must be overridden in any real deployment.
const InsecureJWTSecret = "your-secret-key"

// Deployment modes accepted in APP_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config aggregates application settings that may be sourced from files or environment variables.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Contact  ContactConfig  `mapstructure:"contact"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Worker   WorkerConfig   `mapstructure:"worker"`
}

// AppConfig carries the deployment mode.
type AppConfig struct {
	Env string `mapstructure:"env"`
}

// IsProduction reports whether insecure fallbacks are forbidden.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(a.Env), EnvProduction)
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port           int    `mapstructure:"port"`
	AllowedOrigins string `mapstructure:"allowed_origins"`
}

// Origins splits the comma separated CORS allow-list.
func (a APIConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(a.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// DatabaseConfig contains connection options for PostgreSQL.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN returns DATABASE_URL when present, otherwise a key/value connection string.
func (d DatabaseConfig) DSN() string {
	if strings.TrimSpace(d.URL) != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// AuthConfig controls token signing and login throttling.
type AuthConfig struct {
	JWTSecret             string        `mapstructure:"jwt_secret"`
	TokenTTL              time.Duration `mapstructure:"token_ttl"`
	LoginRateLimitPerHour int           `mapstructure:"login_rate_limit_per_hour"`
	LoginLockThreshold    int           `mapstructure:"login_lock_threshold"`
	LoginLockTTL          time.Duration `mapstructure:"login_lock_ttl"`
}

// UploadConfig describes where uploaded images go and how large they may be.
type UploadConfig struct {
	Backend   string `mapstructure:"backend"`
	Dir       string `mapstructure:"dir"`
	MaxBytes  int64  `mapstructure:"max_bytes"`
	ClamdAddr string `mapstructure:"clamd_addr"`
}

// RedisConfig 包含 Redis 连接配置。
type RedisConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// Addr joins host and port.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint         string `mapstructure:"endpoint"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
	UseSSL           bool   `mapstructure:"use_ssl"`
	Region           string `mapstructure:"region"`
	Bucket           string `mapstructure:"bucket"`
	AutoCreateBucket bool   `mapstructure:"auto_create_bucket"`
}

// ContactConfig throttles the public contact form per client IP.
type ContactConfig struct {
	RatePerMinute int `mapstructure:"rate_per_minute"`
	Burst         int `mapstructure:"burst"`
}

// CacheConfig controls the in-process cache of public listings.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// WorkerConfig 控制后台任务进程。MetricsPort 为 0 时不暴露指标。
type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	MetricsPort int `mapstructure:"metrics_port"`
}

// Load reads configuration solely from environment variables (with optional defaults).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", EnvDevelopment)
	v.SetDefault("api.port", 5000)
	v.SetDefault("api.allowed_origins", "")
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "portfolio_db")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.login_rate_limit_per_hour", 10)
	v.SetDefault("auth.login_lock_threshold", 5)
	v.SetDefault("auth.login_lock_ttl", 15*time.Minute)
	v.SetDefault("upload.backend", "local")
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.max_bytes", 5*1024*1024)
	v.SetDefault("upload.clamd_addr", "")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.region", "")
	v.SetDefault("minio.bucket", "portfolio-uploads")
	v.SetDefault("minio.auto_create_bucket", true)
	v.SetDefault("contact.rate_per_minute", 5)
	v.SetDefault("contact.burst", 3)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("worker.concurrency", 10)
	v.SetDefault("worker.metrics_port", 0)
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string][]string{
		"app.env":                        {"APP_ENV"},
		"api.port":                       {"PORT", "API_PORT"},
		"api.allowed_origins":            {"CORS_ALLOWED_ORIGINS"},
		"database.url":                   {"DATABASE_URL"},
		"database.host":                  {"DB_HOST"},
		"database.port":                  {"DB_PORT"},
		"database.name":                  {"DB_NAME"},
		"database.user":                  {"DB_USER"},
		"database.password":              {"DB_PASSWORD"},
		"database.sslmode":               {"DB_SSLMODE"},
		"auth.jwt_secret":                {"JWT_SECRET"},
		"auth.token_ttl":                 {"JWT_TTL"},
		"auth.login_rate_limit_per_hour": {"LOGIN_RATE_LIMIT_PER_HOUR"},
		"auth.login_lock_threshold":      {"LOGIN_LOCK_THRESHOLD"},
		"auth.login_lock_ttl":            {"LOGIN_LOCK_TTL"},
		"upload.backend":                 {"UPLOAD_BACKEND"},
		"upload.dir":                     {"UPLOAD_DIR"},
		"upload.max_bytes":               {"UPLOAD_MAX_BYTES"},
		"upload.clamd_addr":              {"CLAMD_ADDR"},
		"redis.enabled":                  {"REDIS_ENABLED"},
		"redis.host":                     {"REDIS_HOST"},
		"redis.port":                     {"REDIS_PORT"},
		"minio.endpoint":                 {"MINIO_ENDPOINT"},
		"minio.access_key_id":            {"MINIO_ACCESS_KEY_ID"},
		"minio.secret_access_key":        {"MINIO_SECRET_ACCESS_KEY"},
		"minio.use_ssl":                  {"MINIO_USE_SSL"},
		"minio.region":                   {"MINIO_REGION"},
		"minio.bucket":                   {"MINIO_BUCKET"},
		"minio.auto_create_bucket":       {"MINIO_AUTO_CREATE_BUCKET"},
		"contact.rate_per_minute":        {"CONTACT_RATE_PER_MINUTE"},
		"contact.burst":                  {"CONTACT_BURST"},
		"cache.ttl":                      {"CACHE_TTL"},
		"worker.concurrency":             {"WORKER_CONCURRENCY"},
		"worker.metrics_port":            {"WORKER_METRICS_PORT"},
	}

	for key, envs := range mappings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("bind %s to %v: %w", key, envs, err)
		}
	}

	return nil
}

func validate(cfg *Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	if strings.TrimSpace(cfg.Database.URL) == "" {
		if cfg.Database.Host == "" {
			return errors.New("database host is required")
		}
		if cfg.Database.Port <= 0 {
			return errors.New("database port must be positive")
		}
		if cfg.Database.Name == "" {
			return errors.New("database name is required")
		}
		if cfg.Database.User == "" {
			return errors.New("database user is required")
		}
	}
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		if cfg.App.IsProduction() {
			return errors.New("jwt secret is required in production (JWT_SECRET)")
		}
		cfg.Auth.JWTSecret = InsecureJWTSecret
	}
	if cfg.Auth.TokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}
	if cfg.Upload.MaxBytes <= 0 {
		return errors.New("upload max bytes must be positive")
	}
	cfg.Upload.Backend = strings.ToLower(strings.TrimSpace(cfg.Upload.Backend))
	switch cfg.Upload.Backend {
	case "local":
		if cfg.Upload.Dir == "" {
			return errors.New("upload dir is required")
		}
	case "minio":
		if cfg.MinIO.Endpoint == "" {
			return errors.New("minio endpoint is required")
		}
		if cfg.MinIO.AccessKeyID == "" {
			return errors.New("minio access key id is required")
		}
		if cfg.MinIO.SecretAccessKey == "" {
			return errors.New("minio secret access key is required")
		}
		if cfg.MinIO.Bucket == "" {
			return errors.New("minio bucket is required")
		}
	default:
		return fmt.Errorf("unknown upload backend %q", cfg.Upload.Backend)
	}
	if cfg.Redis.Enabled {
		if cfg.Redis.Host == "" {
			return errors.New("redis host is required")
		}
		if cfg.Redis.Port <= 0 {
			return errors.New("redis port must be positive")
		}
	}
	return nil
}

// UsesInsecureSecret reports whether the fallback signing key is active.
func (c *Config) UsesInsecureSecret() bool {
	return c.Auth.JWTSecret == InsecureJWTSecret
}
