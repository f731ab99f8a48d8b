// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

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

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// EmailConfig provides settings for SMTP email delivery.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
}

// NotificationConfig provides settings for the notification dispatcher.
type NotificationConfig interface {
	GetAppBaseURL() string
}

// FollowUpConfig provides settings for the external follow-up scheduler.
type FollowUpConfig interface {
	GetFollowUpSchedulerURL() string
	GetFollowUpSchedulerAPIKey() string
	GetFollowUpSchedulerTimeout() time.Duration
	IsFollowUpSchedulerEnabled() bool
}

// SchedulerConfig provides settings for the asynq worker and cron scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetQuoteExpirationCron() string
}

// LifecycleConfig provides settings used by the quote lifecycle itself.
type LifecycleConfig interface {
	GetLocation() *time.Location
	GetDraftRetention() time.Duration
	GetAccessLogRetention() time.Duration
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketQuoteFiles() string
	IsMinIOEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                      string
	HTTPAddr                 string
	DatabaseURL              string
	JWTAccessSecret          string
	CORSAllowAll             bool
	CORSOrigins              []string
	CORSAllowCreds           bool
	AppBaseURL               string
	Location                 *time.Location
	EmailEnabled             bool
	SMTPHost                 string
	SMTPPort                 int
	SMTPUsername             string
	SMTPPassword             string
	EmailFromName            string
	EmailFromAddress         string
	FollowUpSchedulerURL     string
	FollowUpSchedulerAPIKey  string
	FollowUpSchedulerTimeout time.Duration
	RedisURL                 string
	RedisTLSInsecure         bool
	AsynqQueueName           string
	AsynqConcurrency         int
	QuoteExpirationCron      string
	DraftRetention           time.Duration
	AccessLogRetention       time.Duration
	MinIOEndpoint            string
	MinIOAccessKey           string
	MinIOSecretKey           string
	MinIOUseSSL              bool
	MinIOMaxFileSize         int64
	MinioBucketQuoteFiles    string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// EmailConfig implementation
func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }

// NotificationConfig implementation
func (c *Config) GetAppBaseURL() string { return c.AppBaseURL }

// FollowUpConfig implementation
func (c *Config) GetFollowUpSchedulerURL() string    { return c.FollowUpSchedulerURL }
func (c *Config) GetFollowUpSchedulerAPIKey() string { return c.FollowUpSchedulerAPIKey }
func (c *Config) GetFollowUpSchedulerTimeout() time.Duration {
	return c.FollowUpSchedulerTimeout
}
func (c *Config) IsFollowUpSchedulerEnabled() bool { return c.FollowUpSchedulerURL != "" }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string           { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool     { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string     { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int      { return c.AsynqConcurrency }
func (c *Config) GetQuoteExpirationCron() string { return c.QuoteExpirationCron }

// LifecycleConfig implementation
func (c *Config) GetLocation() *time.Location     { return c.Location }
func (c *Config) GetDraftRetention() time.Duration { return c.DraftRetention }
func (c *Config) GetAccessLogRetention() time.Duration { return c.AccessLogRetention }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string         { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string        { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string        { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool             { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64       { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketQuoteFiles() string { return c.MinioBucketQuoteFiles }
func (c *Config) IsMinIOEnabled() bool             { return c.MinIOEndpoint != "" }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	location, err := loadLocation(getEnv("APP_TIMEZONE", "Local"))
	if err != nil {
		return nil, err
	}

	smtpHost := getEnv("SMTP_HOST", "")
	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true")

	cfg := &Config{
		Env:                      getEnv("APP_ENV", "development"),
		HTTPAddr:                 getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		JWTAccessSecret:          getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:             corsAllowAll,
		CORSOrigins:              corsOrigins,
		CORSAllowCreds:           strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		AppBaseURL:               strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:4200"), "/"),
		Location:                 location,
		EmailEnabled:             emailEnabled && smtpHost != "",
		SMTPHost:                 smtpHost,
		SMTPPort:                 mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:             getEnv("SMTP_USERNAME", ""),
		SMTPPassword:             getEnv("SMTP_PASSWORD", ""),
		EmailFromName:            getEnv("EMAIL_FROM_NAME", "Artisan"),
		EmailFromAddress:         getEnv("EMAIL_FROM_ADDRESS", ""),
		FollowUpSchedulerURL:     strings.TrimRight(getEnv("FOLLOWUP_SCHEDULER_URL", ""), "/"),
		FollowUpSchedulerAPIKey:  getEnv("FOLLOWUP_SCHEDULER_API_KEY", ""),
		FollowUpSchedulerTimeout: mustDuration(getEnv("FOLLOWUP_SCHEDULER_TIMEOUT", "10s")),
		RedisURL:                 getEnv("REDIS_URL", ""),
		RedisTLSInsecure:         strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:           getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:         mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		QuoteExpirationCron:      getEnv("QUOTE_EXPIRATION_CRON", "5 0 * * *"),
		DraftRetention:           time.Duration(mustInt(getEnv("QUOTE_DRAFT_RETENTION_DAYS", "90"))) * 24 * time.Hour,
		AccessLogRetention:       time.Duration(mustInt(getEnv("QUOTE_ACCESS_LOG_RETENTION_DAYS", "365"))) * 24 * time.Hour,
		MinIOEndpoint:            getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:           getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:           getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:              strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:         mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "52428800")),
		MinioBucketQuoteFiles:    getEnv("MINIO_BUCKET_QUOTE_FILES", "quote-files"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.EmailEnabled && cfg.EmailFromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when email is enabled")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.DraftRetention <= 0 {
		return nil, fmt.Errorf("QUOTE_DRAFT_RETENTION_DAYS must be a positive number of days")
	}
	if cfg.AccessLogRetention < 0 {
		return nil, fmt.Errorf("QUOTE_ACCESS_LOG_RETENTION_DAYS cannot be negative")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func loadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE %q is invalid: %w", name, err)
	}
	return loc, nil
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
