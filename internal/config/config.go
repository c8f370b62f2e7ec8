package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session persistence backends.
const (
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port string
	Env  string

	Backend  BackendConfig
	Session  SessionConfig
	DB       DatabaseConfig
	Redis    RedisConfig
	S3       S3Config
	Activity ActivityConfig
}

// BackendConfig describes the platform REST API the console drives.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig controls the admin browser session.
type SessionConfig struct {
	Backend      string
	TTL          time.Duration
	SecureCookie bool
}

// DatabaseConfig contains PostgreSQL connection parameters for the activity log.
// An empty Host disables the activity log.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// Enabled reports whether a database was configured.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// S3Config contains the bucket used for gallery uploads.
// An empty Bucket disables uploads.
type S3Config struct {
	Region          string
	Bucket          string
	Endpoint        string
	PublicBaseURL   string
	AccessKeyID     string
	SecretAccessKey string
}

// Enabled reports whether gallery uploads are configured.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// ActivityConfig contains retention settings for the activity log.
type ActivityConfig struct {
	Retention     time.Duration
	PruneInterval time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")

	// Backend API
	cfg.Backend.BaseURL = strings.TrimSuffix(getEnv("API_BASE_URL", ""), "/")

	// Session
	cfg.Session = SessionConfig{
		Backend:      strings.ToLower(getEnv("SESSION_BACKEND", SessionBackendRedis)),
		SecureCookie: getEnvBool("SESSION_SECURE_COOKIE", cfg.Env == "production"),
	}

	// Database (optional)
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// S3 (optional, gallery uploads)
	cfg.S3 = S3Config{
		Region:          getEnv("S3_REGION", "us-east-1"),
		Bucket:          getEnv("S3_BUCKET", ""),
		Endpoint:        getEnv("S3_ENDPOINT", ""),
		PublicBaseURL:   strings.TrimSuffix(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),
		AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
	}

	// Durations
	var err error
	if cfg.Backend.Timeout, err = parseDurationEnv("API_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid API_TIMEOUT: %w", err)
	}
	if cfg.Session.TTL, err = parseDurationEnv("SESSION_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if cfg.Activity.Retention, err = parseDurationEnv("ACTIVITY_RETENTION", "2160h"); err != nil {
		return nil, fmt.Errorf("invalid ACTIVITY_RETENTION: %w", err)
	}
	if cfg.Activity.PruneInterval, err = parseDurationEnv("ACTIVITY_PRUNE_INTERVAL", "1h"); err != nil {
		return nil, fmt.Errorf("invalid ACTIVITY_PRUNE_INTERVAL: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("API_BASE_URL must be set to the platform REST API address")
	}
	if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL %q is not an absolute URL", c.Backend.BaseURL)
	}

	switch c.Session.Backend {
	case SessionBackendRedis, SessionBackendMemory:
	default:
		return fmt.Errorf("SESSION_BACKEND must be %q or %q", SessionBackendRedis, SessionBackendMemory)
	}
	if c.Session.TTL == 0 {
		return errors.New("SESSION_TTL must be greater than zero")
	}

	if c.DB.Enabled() && (c.DB.User == "" || c.DB.Name == "") {
		return errors.New("database configuration incomplete: ensure DB_USER and DB_NAME are set along with DB_HOST")
	}
	if c.Activity.PruneInterval == 0 {
		return errors.New("ACTIVITY_PRUNE_INTERVAL must be greater than zero")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// getEnvBool returns the value of an environment variable as a bool or a default if empty/invalid.
func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
