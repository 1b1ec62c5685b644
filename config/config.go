// Package config loads the server configuration from .env, an optional config
// file and environment variables. API credentials are never part of it: users
// enter them at runtime for their own session.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all service configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Search    SearchConfig    `mapstructure:"search"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Session   SessionConfig   `mapstructure:"session"`
	Upload    UploadConfig    `mapstructure:"upload"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	GinMode         string        `mapstructure:"gin_mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

// SearchConfig configures the conversational search endpoint
type SearchConfig struct {
	URL         string        `mapstructure:"url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// GeminiConfig configures the generative endpoint
type GeminiConfig struct {
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SessionConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type UploadConfig struct {
	MaxFileSize int64 `mapstructure:"max_file_size"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// AuthConfig gates the API behind a shared studio password when a bcrypt hash is set
type AuthConfig struct {
	StudioPasswordHash string `mapstructure:"studio_password_hash"`
}

// ArchiveConfig controls archiving of exported drafts
type ArchiveConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	DatabaseURL  string `mapstructure:"database_url"`
	StorageType  string `mapstructure:"storage_type"`
	LocalPath    string `mapstructure:"local_path"`
	S3Bucket     string `mapstructure:"s3_bucket"`
	S3Region     string `mapstructure:"s3_region"`
	S3Prefix     string `mapstructure:"s3_prefix"`
	AWSAccessKey string `mapstructure:"aws_access_key_id"`
	AWSSecretKey string `mapstructure:"aws_secret_access_key"`
}

var defaults = map[string]any{
	"server.port":             "8080",
	"server.gin_mode":         "release",
	"server.shutdown_timeout": "15s",
	"log.level":               "info",
	"log.format":              "json",
	"search.url":              "https://api.perplexity.ai/chat/completions",
	"search.model":            "sonar-pro",
	"search.temperature":      0.1,
	"search.timeout":          "45s",
	"gemini.model":            "gemini-2.0-flash",
	"gemini.timeout":          "120s",
	"session.ttl":             "8h",
	"session.sweep_interval":  "5m",
	"upload.max_file_size":    10 * 1024 * 1024,
	"rate_limit.rps":          5.0,
	"rate_limit.burst":        20,
	"archive.enabled":         false,
	"archive.storage_type":    "local",
	"archive.local_path":      "./storage/exports",
	"archive.s3_region":       "eu-south-1",
}

// environment variable names for each key
var envBindings = map[string]string{
	"server.port":                   "PORT",
	"server.gin_mode":               "GIN_MODE",
	"server.shutdown_timeout":       "SHUTDOWN_TIMEOUT",
	"log.level":                     "LOG_LEVEL",
	"log.format":                    "LOG_FORMAT",
	"search.url":                    "SEARCH_API_URL",
	"search.model":                  "SEARCH_MODEL",
	"search.temperature":            "SEARCH_TEMPERATURE",
	"search.timeout":                "SEARCH_TIMEOUT",
	"gemini.model":                  "GEMINI_MODEL",
	"gemini.timeout":                "GEMINI_TIMEOUT",
	"session.ttl":                   "SESSION_TTL",
	"session.sweep_interval":        "SESSION_SWEEP_INTERVAL",
	"upload.max_file_size":          "UPLOAD_MAX_FILE_SIZE",
	"rate_limit.rps":                "RATE_LIMIT_RPS",
	"rate_limit.burst":              "RATE_LIMIT_BURST",
	"auth.studio_password_hash":     "STUDIO_PASSWORD_HASH",
	"archive.enabled":               "EXPORT_ARCHIVE_ENABLED",
	"archive.database_url":          "DATABASE_URL",
	"archive.storage_type":          "STORAGE_TYPE",
	"archive.local_path":            "STORAGE_LOCAL_PATH",
	"archive.s3_bucket":             "AWS_S3_BUCKET",
	"archive.s3_region":             "AWS_REGION",
	"archive.s3_prefix":             "AWS_S3_PREFIX",
	"archive.aws_access_key_id":     "AWS_ACCESS_KEY_ID",
	"archive.aws_secret_access_key": "AWS_SECRET_ACCESS_KEY",
}

// Load reads .env (if present), config.yaml (if present) and the environment
func Load(envFiles ...string) (*Config, error) {
	// a missing .env file is normal outside development
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}
	if len(envFiles) == 0 {
		_ = godotenv.Load()
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later at runtime
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server port is required")
	}
	if c.Search.Timeout <= 0 || c.Gemini.Timeout <= 0 {
		return errors.New("remote call timeouts must be positive")
	}
	if c.Session.TTL <= 0 || c.Session.SweepInterval <= 0 {
		return errors.New("session TTL and sweep interval must be positive")
	}
	if c.Upload.MaxFileSize <= 0 {
		return errors.New("upload max file size must be positive")
	}
	if c.Archive.Enabled && c.Archive.StorageType == "s3" && c.Archive.S3Bucket == "" {
		return errors.New("AWS_S3_BUCKET is required for S3 archive storage")
	}
	return nil
}
