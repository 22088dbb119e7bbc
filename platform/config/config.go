// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// AuthServiceConfig provides settings needed by the auth service.
type AuthServiceConfig interface {
	JWTConfig
	GetAccessTokenTTL() time.Duration
}

// EmailConfig provides settings for email sending.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	GetAppBaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// SchedulerConfig provides settings for the asynq scheduler and workers.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetOutboxPollInterval() time.Duration
}

// SyncConfig provides settings for catalogue synchronization.
type SyncConfig interface {
	GetPalissyAPIURL() string
	GetPalissyRatePerSecond() float64
	GetSyncWorkerCount() int
}

// Config holds all application configuration loaded from the environment.
type Config struct {
	Env string

	HTTPAddr      string
	CORSAllowAll  bool
	CORSOrigins   []string
	DatabaseURL   string
	JWTSecret     string
	AccessTTL     time.Duration
	EmailEnabled  bool
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	FromName      string
	FromAddress   string
	AppBaseURL    string
	RedisURL      string
	RedisInsecure bool
	AsynqQueue    string
	OutboxPoll    time.Duration
	PalissyAPIURL string
	PalissyRate   float64
	SyncWorkers   int
}

// Load reads configuration from the environment, with .env support for
// local development. Missing required values return an error.
func Load() (*Config, error) {
	// .env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		Env:           getEnv("APP_ENV", "development"),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		CORSAllowAll:  getBool("CORS_ALLOW_ALL", false),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "")),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSecret:     os.Getenv("JWT_ACCESS_SECRET"),
		AccessTTL:     getDuration("JWT_ACCESS_TTL", 30*time.Minute),
		EmailEnabled:  getBool("EMAIL_ENABLED", false),
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getInt("SMTP_PORT", 587),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		FromName:      getEnv("EMAIL_FROM_NAME", "Collectif Objets"),
		FromAddress:   getEnv("EMAIL_FROM_ADDRESS", ""),
		AppBaseURL:    getEnv("APP_BASE_URL", "http://localhost:8080"),
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisInsecure: getBool("REDIS_TLS_INSECURE", false),
		AsynqQueue:    getEnv("ASYNQ_QUEUE", "default"),
		OutboxPoll:    getDuration("OUTBOX_POLL_INTERVAL", 30*time.Second),
		PalissyAPIURL: getEnv("PALISSY_API_URL", "https://api.pop.culture.gouv.fr/palissy"),
		PalissyRate:   getFloat("PALISSY_RATE_PER_SECOND", 5),
		SyncWorkers:   getInt("SYNC_WORKER_COUNT", 4),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.EmailEnabled && cfg.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP_HOST is required when EMAIL_ENABLED is set")
	}

	return cfg, nil
}

// Interface implementations.

func (c *Config) GetDatabaseURL() string                { return c.DatabaseURL }
func (c *Config) GetJWTAccessSecret() string            { return c.JWTSecret }
func (c *Config) GetAccessTokenTTL() time.Duration      { return c.AccessTTL }
func (c *Config) GetEmailEnabled() bool                 { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string                   { return c.SMTPHost }
func (c *Config) GetSMTPPort() int                      { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string               { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string               { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string              { return c.FromName }
func (c *Config) GetEmailFromAddress() string           { return c.FromAddress }
func (c *Config) GetAppBaseURL() string                 { return c.AppBaseURL }
func (c *Config) GetHTTPAddr() string                   { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool                 { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string              { return c.CORSOrigins }
func (c *Config) GetRedisURL() string                   { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool             { return c.RedisInsecure }
func (c *Config) GetAsynqQueueName() string             { return c.AsynqQueue }
func (c *Config) GetOutboxPollInterval() time.Duration  { return c.OutboxPoll }
func (c *Config) GetPalissyAPIURL() string              { return c.PalissyAPIURL }
func (c *Config) GetPalissyRatePerSecond() float64      { return c.PalissyRate }
func (c *Config) GetSyncWorkerCount() int               { return c.SyncWorkers }

// Helpers.

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
