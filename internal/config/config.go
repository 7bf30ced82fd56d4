package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config aggregates application settings that may be sourced from files or environment variables.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Oracle   OracleConfig   `mapstructure:"oracle"`
	Render   RenderConfig   `mapstructure:"render"`
	Staging  StagingConfig  `mapstructure:"staging"`
	Clamd    ClamdConfig    `mapstructure:"clamd"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Worker   WorkerConfig   `mapstructure:"worker"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	VerboseErrors  bool     `mapstructure:"verbose_errors"`
	MaxUploadBytes int64    `mapstructure:"max_upload_bytes"`
	RequireToken   bool     `mapstructure:"require_token"`

	// LoginRateLimitPerHour 每 IP+用户名 每小时允许的登录次数，0 表示不限。
	LoginRateLimitPerHour int `mapstructure:"login_rate_limit_per_hour"`
}

// DatabaseConfig contains connection options for PostgreSQL.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig 包含 Redis 连接配置。
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns host:port for go-redis and asynq.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint         string `mapstructure:"endpoint"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
	UseSSL           bool   `mapstructure:"use_ssl"`
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AutoCreateBucket bool   `mapstructure:"auto_create_bucket"`
}

// AuthConfig configures password hashing and access tokens.
// Empty key paths make the api generate an ephemeral RSA key pair at startup.
type AuthConfig struct {
	PrivateKeyPath string        `mapstructure:"private_key_path"`
	PublicKeyPath  string        `mapstructure:"public_key_path"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	BcryptCost     int           `mapstructure:"bcrypt_cost"`
}

// OracleConfig points at the remote generation service and the local fallback.
type OracleConfig struct {
	GeminiAPIKey  string        `mapstructure:"gemini_api_key"`
	GeminiModel   string        `mapstructure:"gemini_model"`
	GeminiBaseURL string        `mapstructure:"gemini_base_url"`
	OllamaBaseURL string        `mapstructure:"ollama_base_url"`
	OllamaModel   string        `mapstructure:"ollama_model"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// RenderConfig selects the HTML to PDF engine.
type RenderConfig struct {
	Engine     string        `mapstructure:"engine"`
	ChromePath string        `mapstructure:"chrome_path"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// StagingConfig controls how long generated PDFs stay downloadable.
type StagingConfig struct {
	TTL       time.Duration `mapstructure:"ttl"`
	SweepSpec string        `mapstructure:"sweep_spec"`
	Prefix    string        `mapstructure:"prefix"`
}

// ClamdConfig 为空地址时跳过病毒扫描。
type ClamdConfig struct {
	Addr string `mapstructure:"addr"`
}

// ChatConfig configures the conversational agent.
type ChatConfig struct {
	SessionID string `mapstructure:"session_id"`
	Window    int    `mapstructure:"window"`
}

// WorkerConfig configures the staging cleanup worker.
type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	MetricsPort int `mapstructure:"metrics_port"`
}

// DSN builds a lib/pq compatible connection string.
func (d DatabaseConfig) DSN() string {
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

// Load reads configuration from environment variables (with optional defaults).
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

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
	cfg.API.AllowedOrigins = splitOrigins(cfg.API.AllowedOrigins)

	if err := validate(cfg); err != nil {
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
	v.SetDefault("api.port", 8000)
	v.SetDefault("api.allowed_origins", []string{"*"})
	v.SetDefault("api.verbose_errors", false)
	v.SetDefault("api.max_upload_bytes", 10<<20)
	v.SetDefault("api.require_token", false)
	v.SetDefault("api.login_rate_limit_per_hour", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "smartresume")
	v.SetDefault("database.user", "smartresume")
	v.SetDefault("database.password", "smartresume")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "resumes")
	v.SetDefault("minio.auto_create_bucket", true)
	v.SetDefault("auth.access_token_ttl", 24*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("oracle.gemini_model", "gemini-2.5-flash")
	v.SetDefault("oracle.gemini_base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("oracle.ollama_base_url", "http://localhost:11434")
	v.SetDefault("oracle.ollama_model", "gemma3n")
	v.SetDefault("oracle.timeout", 120*time.Second)
	v.SetDefault("render.engine", "rod")
	v.SetDefault("render.timeout", 60*time.Second)
	v.SetDefault("staging.ttl", time.Hour)
	v.SetDefault("staging.sweep_spec", "@every 15m")
	v.SetDefault("staging.prefix", "staged-pdfs/")
	v.SetDefault("chat.session_id", "1")
	v.SetDefault("chat.window", 6)
	v.SetDefault("worker.concurrency", 4)
	v.SetDefault("worker.metrics_port", 9091)
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                      "API_PORT",
		"api.allowed_origins":           "API_ALLOWED_ORIGINS",
		"api.verbose_errors":            "API_VERBOSE_ERRORS",
		"api.max_upload_bytes":          "API_MAX_UPLOAD_BYTES",
		"api.require_token":             "API_REQUIRE_TOKEN",
		"api.login_rate_limit_per_hour": "LOGIN_RATE_LIMIT_PER_HOUR",
		"database.host":                 "DATABASE_HOST",
		"database.port":                 "DATABASE_PORT",
		"database.name":                 "POSTGRES_DB",
		"database.user":                 "POSTGRES_USER",
		"database.password":             "POSTGRES_PASSWORD",
		"database.sslmode":              "DATABASE_SSLMODE",
		"redis.host":                    "REDIS_HOST",
		"redis.port":                    "REDIS_PORT",
		"minio.endpoint":                "MINIO_ENDPOINT",
		"minio.access_key_id":           "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key":       "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":                 "MINIO_USE_SSL",
		"minio.bucket":                  "MINIO_BUCKET",
		"minio.region":                  "MINIO_REGION",
		"minio.auto_create_bucket":      "MINIO_AUTO_CREATE_BUCKET",
		"auth.private_key_path":         "JWT_PRIVATE_KEY_PATH",
		"auth.public_key_path":          "JWT_PUBLIC_KEY_PATH",
		"auth.access_token_ttl":         "JWT_ACCESS_TOKEN_TTL",
		"auth.bcrypt_cost":              "BCRYPT_COST",
		"oracle.gemini_api_key":         "GEMINI_API_KEY",
		"oracle.gemini_model":           "GEMINI_MODEL",
		"oracle.gemini_base_url":        "GEMINI_BASE_URL",
		"oracle.ollama_base_url":        "OLLAMA_BASE_URL",
		"oracle.ollama_model":           "OLLAMA_MODEL",
		"oracle.timeout":                "ORACLE_TIMEOUT",
		"render.engine":                 "RENDER_ENGINE",
		"render.chrome_path":            "CHROME_PATH",
		"render.timeout":                "RENDER_TIMEOUT",
		"staging.ttl":                   "STAGING_TTL",
		"staging.sweep_spec":            "STAGING_SWEEP_SPEC",
		"staging.prefix":                "STAGING_PREFIX",
		"clamd.addr":                    "CLAMD_ADDR",
		"chat.session_id":               "CHAT_SESSION_ID",
		"chat.window":                   "CHAT_WINDOW",
		"worker.concurrency":            "WORKER_CONCURRENCY",
		"worker.metrics_port":           "WORKER_METRICS_PORT",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

// splitOrigins accepts both a list and a single comma separated env value.
func splitOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, raw := range in {
		for _, part := range strings.Split(raw, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	if cfg.API.MaxUploadBytes <= 0 {
		return errors.New("api max upload bytes must be positive")
	}
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
	if cfg.Database.Password == "" {
		return errors.New("database password is required")
	}
	if cfg.Database.SSLMode == "" {
		return errors.New("database sslmode is required")
	}
	if cfg.Redis.Host == "" {
		return errors.New("redis host is required")
	}
	if cfg.Redis.Port <= 0 {
		return errors.New("redis port must be positive")
	}
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
	if cfg.Auth.AccessTokenTTL <= 0 {
		return errors.New("access token ttl must be positive")
	}
	if cfg.Oracle.Timeout <= 0 {
		return errors.New("oracle timeout must be positive")
	}
	switch cfg.Render.Engine {
	case "rod", "chromedp":
	default:
		return fmt.Errorf("unsupported render engine %q", cfg.Render.Engine)
	}
	if cfg.Staging.TTL <= 0 {
		return errors.New("staging ttl must be positive")
	}
	if strings.TrimSpace(cfg.Staging.Prefix) == "" {
		return errors.New("staging prefix is required")
	}
	if cfg.Chat.Window <= 0 {
		return errors.New("chat window must be positive")
	}
	if cfg.Worker.Concurrency <= 0 {
		return errors.New("worker concurrency must be positive")
	}
	return nil
}
