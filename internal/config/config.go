// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Logging    LoggingConfig
	CORS       CORSConfig
	Mongo      MongoConfig
	JWT        JWTConfig
	Admin      AdminConfig
	Uploads    UploadsConfig
	Redis      RedisConfig
	Tasks      TasksConfig
	SMTP       SMTPConfig
	BcryptCost int
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// MongoConfig holds document store connection settings
type MongoConfig struct {
	URI            string
	Database       string
	Timeout        time.Duration
	MigrationsPath string
}

// JWTConfig holds JWT token configuration
type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// AdminConfig holds the credentials of the single admin principal
type AdminConfig struct {
	Email        string
	PasswordHash string
}

// UploadsConfig holds profile image storage settings
type UploadsConfig struct {
	Dir          string
	URLPrefix    string
	MaxSize      int64
	DefaultImage string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// TasksConfig holds background task settings
type TasksConfig struct {
	Enabled       bool
	SweepSchedule string
	SweepGrace    time.Duration
}

// SMTPConfig holds SMTP server configuration
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// DefaultProfileImage is assigned to users who never uploaded an image
const DefaultProfileImage = "default-profile.jpg"

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error

	// Server configuration
	if cfg.Server.Port, err = intEnv("SERVER_PORT", 8080); err != nil {
		return nil, err
	}

	// Logging configuration
	cfg.Logging.Level = stringEnv("LOG_LEVEL", "info")

	// CORS configuration
	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// Mongo configuration
	cfg.Mongo.URI = os.Getenv("MONGO_URI")
	if cfg.Mongo.URI == "" {
		return nil, fmt.Errorf("MONGO_URI is required")
	}
	cfg.Mongo.Database = stringEnv("MONGO_DATABASE", "users_app")
	if cfg.Mongo.Timeout, err = durationEnv("MONGO_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	cfg.Mongo.MigrationsPath = stringEnv("MIGRATIONS_PATH", "file://migrations")

	// JWT configuration
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.JWT.Expiry, err = durationEnv("JWT_EXPIRY", time.Hour); err != nil {
		return nil, err
	}

	if cfg.BcryptCost, err = intEnv("BCRYPT_COST", 10); err != nil {
		return nil, err
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("invalid BCRYPT_COST: must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	// Admin configuration
	if err := loadAdmin(&cfg.Admin, cfg.BcryptCost); err != nil {
		return nil, err
	}

	// Uploads configuration
	cfg.Uploads.Dir = stringEnv("UPLOAD_DIR", "public/uploads")
	cfg.Uploads.URLPrefix = strings.TrimRight(stringEnv("UPLOAD_URL_PREFIX", "/uploads"), "/")
	maxSize, err := intEnv("UPLOAD_MAX_SIZE", 2*1024*1024)
	if err != nil {
		return nil, err
	}
	if maxSize <= 0 {
		return nil, fmt.Errorf("invalid UPLOAD_MAX_SIZE: must be positive")
	}
	cfg.Uploads.MaxSize = int64(maxSize)
	cfg.Uploads.DefaultImage = stringEnv("DEFAULT_PROFILE_IMAGE", DefaultProfileImage)

	// Redis configuration (optional, enables token revocation and the task queue)
	if cfg.Redis.Enabled, err = boolEnv("REDIS_ENABLED", false); err != nil {
		return nil, err
	}
	cfg.Redis.Host = stringEnv("REDIS_HOST", "localhost")
	if cfg.Redis.Port, err = intEnv("REDIS_PORT", 6379); err != nil {
		return nil, err
	}
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	if cfg.Redis.DB, err = intEnv("REDIS_DB", 0); err != nil {
		return nil, err
	}

	// Tasks configuration
	if cfg.Tasks.Enabled, err = boolEnv("TASKS_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.Tasks.Enabled && !cfg.Redis.Enabled {
		return nil, fmt.Errorf("TASKS_ENABLED requires REDIS_ENABLED")
	}
	cfg.Tasks.SweepSchedule = stringEnv("SWEEP_SCHEDULE", "@every 1h")
	if cfg.Tasks.SweepGrace, err = durationEnv("SWEEP_GRACE", 24*time.Hour); err != nil {
		return nil, err
	}

	// SMTP configuration (optional, for the worker)
	cfg.SMTP.Host = stringEnv("SMTP_HOST", "localhost")
	if cfg.SMTP.Port, err = intEnv("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	cfg.SMTP.Username = os.Getenv("SMTP_USERNAME")
	cfg.SMTP.Password = os.Getenv("SMTP_PASSWORD")
	cfg.SMTP.From = stringEnv("SMTP_FROM", "noreply@userhub.local")

	return cfg, nil
}

// RedisAddr returns the Redis address in host:port form
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// loadAdmin resolves the admin credentials. A ready bcrypt hash wins over a plain password.
func loadAdmin(admin *AdminConfig, cost int) error {
	admin.Email = strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL")))
	if admin.Email == "" {
		return fmt.Errorf("ADMIN_EMAIL is required")
	}

	if hash := os.Getenv("ADMIN_PASSWORD_HASH"); hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return fmt.Errorf("invalid ADMIN_PASSWORD_HASH: %w", err)
		}
		admin.PasswordHash = hash
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH or ADMIN_PASSWORD is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return fmt.Errorf("failed to hash ADMIN_PASSWORD: %w", err)
	}
	admin.PasswordHash = string(hash)
	return nil
}

// parseOrigins splits a comma-separated origins list, defaulting to all origins
func parseOrigins(raw string) []string {
	origins := make([]string, 0)
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func stringEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func boolEnv(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func durationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
