// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"net/http"
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
	GetAccessCookieName() string
}

// AuthServiceConfig provides settings needed by the auth service.
type AuthServiceConfig interface {
	GetJWTAccessSecret() string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
}

// CookieConfig provides settings for the auth cookies.
type CookieConfig interface {
	GetAccessCookieName() string
	GetRefreshCookieName() string
	GetRoleCookieName() string
	GetCookieDomain() string
	GetCookiePath() string
	GetCookieSecure() bool
	GetCookieSameSite() http.SameSite
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
}

// EmailConfig provides settings for email sending.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetEmailProvider() string
	GetBrevoAPIKey() string
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	GetEmailReplyTo() string
	GetEmailArchiveBcc() string
}

// NotificationConfig provides settings for the notification module.
type NotificationConfig interface {
	GetAppBaseURL() string
	GetFormulaireURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetPublicRateLimitPerMinute() int
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinIOBucket() string
	GetPresignTTL() time.Duration
	IsMinIOEnabled() bool
}

// SchedulerConfig provides settings for the asynq queue and periodic jobs.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetReminderCron() string
	GetAbsenceCron() string
	GetTimezone() string
}

// BookingConfig provides settings for slot booking and reminders.
type BookingConfig interface {
	GetSlotDefaultCapacity() int
	GetReminderDaysAhead() int
	GetTimezone() string
}

// SMSConfig provides settings for the OVH SMS gateway.
type SMSConfig interface {
	GetOVHEndpoint() string
	GetOVHApplicationKey() string
	GetOVHApplicationSecret() string
	GetOVHConsumerKey() string
	GetOVHSMSServiceName() string
	GetOVHSMSSender() string
	IsSMSEnabled() bool
}

// TelephonyConfig provides settings for OVH click2call.
type TelephonyConfig interface {
	GetOVHEndpoint() string
	GetOVHApplicationKey() string
	GetOVHApplicationSecret() string
	GetOVHConsumerKey() string
	GetOVHBillingAccount() string
	GetOVHLineNumber() string
	IsTelephonyEnabled() bool
}

// BrandingConfig points at an optional company profile override.
type BrandingConfig interface {
	GetBrandingFile() string
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
	AccessTokenTTL           time.Duration
	RefreshTokenTTL          time.Duration
	CORSAllowAll             bool
	CORSOrigins              []string
	CORSAllowCreds           bool
	PublicRateLimitPerMinute int
	AppBaseURL               string
	FormulaireURL            string
	EmailEnabled             bool
	EmailProvider            string
	BrevoAPIKey              string
	SMTPHost                 string
	SMTPPort                 int
	SMTPUsername             string
	SMTPPassword             string
	EmailFromName            string
	EmailFromAddress         string
	EmailReplyTo             string
	EmailArchiveBcc          string
	AccessCookieName         string
	RefreshCookieName        string
	RoleCookieName           string
	CookieDomain             string
	CookiePath               string
	CookieSecure             bool
	CookieSameSite           http.SameSite
	MinIOEndpoint            string
	MinIOAccessKey           string
	MinIOSecretKey           string
	MinIOUseSSL              bool
	MinIOMaxFileSize         int64
	MinIOBucket              string
	PresignTTL               time.Duration
	RedisURL                 string
	RedisTLSInsecure         bool
	AsynqQueueName           string
	AsynqConcurrency         int
	ReminderCron             string
	AbsenceCron              string
	Timezone                 string
	SlotDefaultCapacity      int
	ReminderDaysAhead        int
	OVHEndpoint              string
	OVHApplicationKey        string
	OVHApplicationSecret     string
	OVHConsumerKey           string
	OVHSMSServiceName        string
	OVHSMSSender             string
	OVHBillingAccount        string
	OVHLineNumber            string
	BrandingFile             string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig / AuthServiceConfig implementation
func (c *Config) GetJWTAccessSecret() string       { return c.JWTAccessSecret }
func (c *Config) GetAccessTokenTTL() time.Duration  { return c.AccessTokenTTL }
func (c *Config) GetRefreshTokenTTL() time.Duration { return c.RefreshTokenTTL }

// CookieConfig implementation
func (c *Config) GetAccessCookieName() string      { return c.AccessCookieName }
func (c *Config) GetRefreshCookieName() string     { return c.RefreshCookieName }
func (c *Config) GetRoleCookieName() string        { return c.RoleCookieName }
func (c *Config) GetCookieDomain() string          { return c.CookieDomain }
func (c *Config) GetCookiePath() string            { return c.CookiePath }
func (c *Config) GetCookieSecure() bool            { return c.CookieSecure }
func (c *Config) GetCookieSameSite() http.SameSite { return c.CookieSameSite }

// EmailConfig implementation
func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetEmailProvider() string    { return c.EmailProvider }
func (c *Config) GetBrevoAPIKey() string      { return c.BrevoAPIKey }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }
func (c *Config) GetEmailReplyTo() string     { return c.EmailReplyTo }
func (c *Config) GetEmailArchiveBcc() string  { return c.EmailArchiveBcc }

// NotificationConfig implementation
func (c *Config) GetAppBaseURL() string    { return c.AppBaseURL }
func (c *Config) GetFormulaireURL() string { return c.FormulaireURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string              { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool            { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string         { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool          { return c.CORSAllowCreds }
func (c *Config) GetPublicRateLimitPerMinute() int { return c.PublicRateLimitPerMinute }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string     { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string    { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string    { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool         { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64   { return c.MinIOMaxFileSize }
func (c *Config) GetMinIOBucket() string       { return c.MinIOBucket }
func (c *Config) GetPresignTTL() time.Duration { return c.PresignTTL }
func (c *Config) IsMinIOEnabled() bool         { return c.MinIOEndpoint != "" }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string        { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool  { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string  { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int   { return c.AsynqConcurrency }
func (c *Config) GetReminderCron() string    { return c.ReminderCron }
func (c *Config) GetAbsenceCron() string     { return c.AbsenceCron }
func (c *Config) GetTimezone() string        { return c.Timezone }
func (c *Config) GetSlotDefaultCapacity() int { return c.SlotDefaultCapacity }
func (c *Config) GetReminderDaysAhead() int  { return c.ReminderDaysAhead }

// SMSConfig / TelephonyConfig implementation
func (c *Config) GetOVHEndpoint() string          { return c.OVHEndpoint }
func (c *Config) GetOVHApplicationKey() string    { return c.OVHApplicationKey }
func (c *Config) GetOVHApplicationSecret() string { return c.OVHApplicationSecret }
func (c *Config) GetOVHConsumerKey() string       { return c.OVHConsumerKey }
func (c *Config) GetOVHSMSServiceName() string    { return c.OVHSMSServiceName }
func (c *Config) GetOVHSMSSender() string         { return c.OVHSMSSender }
func (c *Config) GetOVHBillingAccount() string    { return c.OVHBillingAccount }
func (c *Config) GetOVHLineNumber() string        { return c.OVHLineNumber }

func (c *Config) hasOVHCredentials() bool {
	return c.OVHApplicationKey != "" && c.OVHApplicationSecret != "" && c.OVHConsumerKey != ""
}

func (c *Config) IsSMSEnabled() bool {
	return c.hasOVHCredentials() && c.OVHSMSServiceName != ""
}

func (c *Config) IsTelephonyEnabled() bool {
	return c.hasOVHCredentials() && c.OVHBillingAccount != "" && c.OVHLineNumber != ""
}

// BrandingConfig implementation
func (c *Config) GetBrandingFile() string { return c.BrandingFile }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	env := getEnv("APP_ENV", "development")
	production := strings.EqualFold(env, "production")

	cookieSecure := production
	if raw := getEnv("COOKIE_SECURE", ""); raw != "" {
		cookieSecure = strings.EqualFold(raw, "true")
	}
	defaultSameSite := "Lax"
	if production {
		defaultSameSite = "None"
	}

	emailProvider := strings.ToLower(getEnv("EMAIL_PROVIDER", "smtp"))
	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true")

	cfg := &Config{
		Env:                      env,
		HTTPAddr:                 getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		JWTAccessSecret:          getEnv("JWT_ACCESS_SECRET", ""),
		AccessTokenTTL:           mustDuration(getEnv("JWT_ACCESS_TTL", "30m")),
		RefreshTokenTTL:          mustDuration(getEnv("JWT_REFRESH_TTL", "168h")),
		CORSAllowAll:             corsAllowAll,
		CORSOrigins:              corsOrigins,
		CORSAllowCreds:           strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		PublicRateLimitPerMinute: mustInt(getEnv("PUBLIC_RATE_LIMIT_PER_MINUTE", "20")),
		AppBaseURL:               getEnv("APP_BASE_URL", "http://localhost:3000"),
		FormulaireURL:            getEnv("FORMULAIRE_URL", "https://www.papiers-express.fr/formulaire"),
		EmailProvider:            emailProvider,
		BrevoAPIKey:              getEnv("BREVO_API_KEY", ""),
		SMTPHost:                 getEnv("SMTP_HOST", ""),
		SMTPPort:                 mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:             getEnv("SMTP_USERNAME", ""),
		SMTPPassword:             getEnv("SMTP_PASSWORD", ""),
		EmailFromName:            getEnv("EMAIL_FROM_NAME", "Papiers Express"),
		EmailFromAddress:         getEnv("EMAIL_FROM_ADDRESS", ""),
		EmailReplyTo:             getEnv("EMAIL_REPLY_TO", ""),
		EmailArchiveBcc:          getEnv("EMAIL_ARCHIVE_BCC", ""),
		AccessCookieName:         getEnv("ACCESS_COOKIE_NAME", "access_token"),
		RefreshCookieName:        getEnv("REFRESH_COOKIE_NAME", "refresh_token"),
		RoleCookieName:           getEnv("ROLE_COOKIE_NAME", "user_role"),
		CookieDomain:             getEnv("COOKIE_DOMAIN", ""),
		CookiePath:               getEnv("COOKIE_PATH", "/"),
		CookieSecure:             cookieSecure,
		CookieSameSite:           parseSameSite(getEnv("COOKIE_SAMESITE", defaultSameSite)),
		MinIOEndpoint:            getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:           getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:           getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:              strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:         mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "10485760")),
		MinIOBucket:              getEnv("MINIO_BUCKET", "papex"),
		PresignTTL:               mustDuration(getEnv("PRESIGN_TTL", "15m")),
		RedisURL:                 getEnv("REDIS_URL", ""),
		RedisTLSInsecure:         strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:           getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:         mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		ReminderCron:             getEnv("REMINDER_CRON", "0 9 * * *"),
		AbsenceCron:              getEnv("ABSENCE_CRON", "*/30 * * * *"),
		Timezone:                 getEnv("APP_TIMEZONE", "Europe/Paris"),
		SlotDefaultCapacity:      mustInt(getEnv("SLOT_DEFAULT_CAPACITY", "1")),
		ReminderDaysAhead:        mustInt(getEnv("REMINDER_DAYS_AHEAD", "2")),
		OVHEndpoint:              getEnv("OVH_ENDPOINT", "ovh-eu"),
		OVHApplicationKey:        getEnv("OVH_APPLICATION_KEY", ""),
		OVHApplicationSecret:     getEnv("OVH_APPLICATION_SECRET", ""),
		OVHConsumerKey:           getEnv("OVH_CONSUMER_KEY", ""),
		OVHSMSServiceName:        getEnv("OVH_SMS_SERVICE_NAME", ""),
		OVHSMSSender:             getEnv("OVH_SMS_SENDER", "PAPEX"),
		OVHBillingAccount:        getEnv("OVH_BILLING_ACCOUNT", ""),
		OVHLineNumber:            getEnv("OVH_LINE_NUMBER", ""),
		BrandingFile:             getEnv("BRANDING_FILE", ""),
	}

	switch emailProvider {
	case "brevo":
		cfg.EmailEnabled = emailEnabled && cfg.BrevoAPIKey != ""
	case "smtp":
		cfg.EmailEnabled = emailEnabled && cfg.SMTPHost != ""
	default:
		return nil, fmt.Errorf("EMAIL_PROVIDER must be smtp or brevo, got %q", emailProvider)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return nil, fmt.Errorf("JWT_ACCESS_TTL and JWT_REFRESH_TTL must be positive durations")
	}
	if cfg.EmailEnabled && cfg.EmailFromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when email is enabled")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.SlotDefaultCapacity < 1 {
		return nil, fmt.Errorf("SLOT_DEFAULT_CAPACITY must be at least 1")
	}
	if cfg.ReminderDaysAhead < 0 {
		return nil, fmt.Errorf("REMINDER_DAYS_AHEAD cannot be negative")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE %q: %w", cfg.Timezone, err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
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

func parseSameSite(value string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "none":
		return http.SameSiteNoneMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		return http.SameSiteLaxMode
	}
}
