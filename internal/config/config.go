package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	// Environment
	GoEnv string
	Port  int

	// Database
	DatabaseURL string

	// Authentication
	SessionSecret string
	JWTSecret     string
	JWTExpiry     time.Duration

	// Bootstrap admin, created on first start when no admin exists
	AdminEmail    string
	AdminPassword string

	// Logging
	LogLevel  string
	LogFormat string

	SiteURL string

	// Mail
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	// Object storage
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioPublicURL string
	UploadMaxBytes int64

	// Writes (comment, reply, report, like) allowed per user per minute
	WriteRatePerMinute int
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Info("[config] no .env file found, reading env vars from system")
	}

	cfg := &Config{}
	var err error

	loadEnvString(&cfg.GoEnv, "GO_ENV", "development")
	if err = loadEnvInt(&cfg.Port, "PORT", 8080); err != nil {
		return nil, err
	}
	loadEnvString(&cfg.DatabaseURL, "DATABASE_URL", "host=localhost user=postgres password=postgres dbname=inkwell port=5432 sslmode=disable TimeZone=UTC")

	loadEnvString(&cfg.SessionSecret, "SESSION_SECRET", "secret_key_change_me")
	if err = loadEnvStringRequired(&cfg.JWTSecret, "JWT_SECRET"); err != nil {
		return nil, err
	}
	if err = loadEnvDuration(&cfg.JWTExpiry, "JWT_EXPIRY", 24*time.Hour); err != nil {
		return nil, err
	}

	loadEnvString(&cfg.AdminEmail, "ADMIN_EMAIL", "")
	loadEnvString(&cfg.AdminPassword, "ADMIN_PASSWORD", "")

	loadEnvString(&cfg.LogLevel, "LOG_LEVEL", "info")
	loadEnvString(&cfg.LogFormat, "LOG_FORMAT", "text")
	loadEnvString(&cfg.SiteURL, "SITE_URL", "http://localhost:8080")

	loadEnvString(&cfg.SMTPHost, "SMTP_HOST", "")
	loadEnvString(&cfg.SMTPPort, "SMTP_PORT", "")
	loadEnvString(&cfg.SMTPUser, "SMTP_USER", "")
	loadEnvString(&cfg.SMTPPass, "SMTP_PASS", "")
	loadEnvString(&cfg.SMTPFrom, "SMTP_FROM", "")

	loadEnvString(&cfg.MinioEndpoint, "MINIO_ENDPOINT", "")
	loadEnvString(&cfg.MinioAccessKey, "MINIO_ACCESS_KEY", "")
	loadEnvString(&cfg.MinioSecretKey, "MINIO_SECRET_KEY", "")
	loadEnvString(&cfg.MinioBucket, "MINIO_BUCKET", "inkwell")
	if err = loadEnvBool(&cfg.MinioUseSSL, "MINIO_USE_SSL", false); err != nil {
		return nil, err
	}
	loadEnvString(&cfg.MinioPublicURL, "MINIO_PUBLIC_URL", "")
	if err = loadEnvInt64(&cfg.UploadMaxBytes, "UPLOAD_MAX_BYTES", 10<<20); err != nil {
		return nil, err
	}

	if err = loadEnvInt(&cfg.WriteRatePerMinute, "WRITE_RATE_PER_MINUTE", 20); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadEnvString(target *string, key, defaultValue string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
}

func loadEnvStringRequired(target *string, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return fmt.Errorf("required environment variable %s is not set", key)
	}
	*target = value
	return nil
}

func loadEnvInt(target *int, key string, defaultValue int) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvInt64(target *int64, key string, defaultValue int64) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvBool(target *bool, key string, defaultValue bool) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvDuration(target *time.Duration, key string, defaultValue time.Duration) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

// Validate performs validation on the loaded configuration
func (c *Config) Validate() error {
	var errors []string

	if c.Port < 1 || c.Port > 65535 {
		errors = append(errors, "PORT must be between 1 and 65535")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}

	validLogFormats := []string{"text", "json"}
	if !contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: %s", strings.Join(validLogFormats, ", ")))
	}

	if len(c.JWTSecret) < 32 {
		errors = append(errors, "JWT_SECRET should be at least 32 characters long")
	}

	if c.IsProduction() && c.SessionSecret == "secret_key_change_me" {
		errors = append(errors, "SESSION_SECRET must be set in production")
	}

	if c.WriteRatePerMinute < 1 {
		errors = append(errors, "WRITE_RATE_PER_MINUTE must be positive")
	}

	if c.UploadMaxBytes < 1 {
		errors = append(errors, "UPLOAD_MAX_BYTES must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// MailEnabled reports whether every SMTP setting is present.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPPort != "" && c.SMTPUser != "" && c.SMTPPass != "" && c.SMTPFrom != ""
}

// StorageEnabled reports whether an object store is configured.
func (c *Config) StorageEnabled() bool {
	return c.MinioEndpoint != "" && c.MinioAccessKey != "" && c.MinioSecretKey != ""
}

// ConfigureLogger applies level and format to the global logrus logger.
func (c *Config) ConfigureLogger() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
