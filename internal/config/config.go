package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	GoEnv string `env:"GO_ENV" default:"development"`

	// Service Ports
	HTTPHost string `env:"HTTP_HOST" default:"0.0.0.0"`
	HTTPPort int    `env:"HTTP_PORT" default:"8080"`
	GRPCPort int    `env:"GRPC_PORT" default:"0"` // 0 disables the gRPC health endpoint

	// WebSocket relay
	WSWriteWait      time.Duration `env:"WS_WRITE_WAIT" default:"10s"`
	WSPongWait       time.Duration `env:"WS_PONG_WAIT" default:"60s"`
	WSMaxMessageSize int64         `env:"WS_MAX_MESSAGE_SIZE" default:"1048576"`

	// Out-of-band ingress (POST /data)
	IngressMaxBodyBytes int64 `env:"INGRESS_MAX_BODY_BYTES" default:"8388608"`

	// Health store
	HealthStore   string        `env:"HEALTH_STORE" default:"memory"` // memory | redis
	HealthTTL     time.Duration `env:"HEALTH_TTL" default:"0"`
	RedisURL      string        `env:"REDIS_URL" default:"redis://localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`

	// Health history (optional)
	DatabaseURL string `env:"DATABASE_URL"`

	// Subprocess launcher
	SubprocessCommand string `env:"SUBPROCESS_COMMAND" default:"ls -la"`
	SubprocessDir     string `env:"SUBPROCESS_DIR"`

	// Development
	LogLevel    string   `env:"LOG_LEVEL" default:"info"`
	LogFormat   string   `env:"LOG_FORMAT" default:"json"`
	CORSOrigins []string `env:"CORS_ORIGINS" default:"*"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"10s"`
}

const (
	HealthStoreMemory = "memory"
	HealthStoreRedis  = "redis"
)

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// .env is optional; system env vars still apply without it
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	config := &Config{}

	if err := loadEnvString(&config.GoEnv, "GO_ENV", "development"); err != nil {
		return nil, err
	}

	// Ports
	if err := loadEnvString(&config.HTTPHost, "HTTP_HOST", "0.0.0.0"); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.HTTPPort, "HTTP_PORT", 8080); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.GRPCPort, "GRPC_PORT", 0); err != nil {
		return nil, err
	}

	// WebSocket relay
	if err := loadEnvDuration(&config.WSWriteWait, "WS_WRITE_WAIT", 10*time.Second); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.WSPongWait, "WS_PONG_WAIT", 60*time.Second); err != nil {
		return nil, err
	}
	if err := loadEnvInt64(&config.WSMaxMessageSize, "WS_MAX_MESSAGE_SIZE", 1<<20); err != nil {
		return nil, err
	}

	// Ingress
	if err := loadEnvInt64(&config.IngressMaxBodyBytes, "INGRESS_MAX_BODY_BYTES", 8<<20); err != nil {
		return nil, err
	}

	// Health store
	if err := loadEnvString(&config.HealthStore, "HEALTH_STORE", HealthStoreMemory); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.HealthTTL, "HEALTH_TTL", 0); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.RedisURL, "REDIS_URL", "redis://localhost:6379"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.RedisPassword, "REDIS_PASSWORD", ""); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.DatabaseURL, "DATABASE_URL", ""); err != nil {
		return nil, err
	}

	// Subprocess
	if err := loadEnvString(&config.SubprocessCommand, "SUBPROCESS_COMMAND", "ls -la"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.SubprocessDir, "SUBPROCESS_DIR", ""); err != nil {
		return nil, err
	}

	// Development
	if err := loadEnvString(&config.LogLevel, "LOG_LEVEL", "info"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.LogFormat, "LOG_FORMAT", "json"); err != nil {
		return nil, err
	}
	if err := loadEnvStringSlice(&config.CORSOrigins, "CORS_ORIGINS", []string{"*"}); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.ShutdownTimeout, "SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Helper functions for type conversion and validation
func loadEnvString(target *string, key, defaultValue string) error {
	if value := os.Getenv(key); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
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

func loadEnvStringSlice(target *[]string, key string, defaultValue []string) error {
	if value := os.Getenv(key); value != "" {
		*target = strings.Split(value, ",")
		// Trim whitespace from each element
		for i, v := range *target {
			(*target)[i] = strings.TrimSpace(v)
		}
	} else {
		*target = defaultValue
	}
	return nil
}

// Validate performs validation on the loaded configuration
func (c *Config) Validate() error {
	var errors []string

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errors = append(errors, "HTTP_PORT must be between 1 and 65535")
	}
	if c.GRPCPort < 0 || c.GRPCPort > 65535 {
		errors = append(errors, "GRPC_PORT must be between 0 and 65535")
	}
	if c.GRPCPort != 0 && c.GRPCPort == c.HTTPPort {
		errors = append(errors, "GRPC_PORT must differ from HTTP_PORT")
	}

	if c.WSWriteWait <= 0 {
		errors = append(errors, "WS_WRITE_WAIT must be positive")
	}
	if c.WSPongWait <= 0 {
		errors = append(errors, "WS_PONG_WAIT must be positive")
	}
	if c.WSMaxMessageSize <= 0 {
		errors = append(errors, "WS_MAX_MESSAGE_SIZE must be positive")
	}
	if c.IngressMaxBodyBytes <= 0 {
		errors = append(errors, "INGRESS_MAX_BODY_BYTES must be positive")
	}

	validStores := []string{HealthStoreMemory, HealthStoreRedis}
	if !contains(validStores, c.HealthStore) {
		errors = append(errors, fmt.Sprintf("HEALTH_STORE must be one of: %s", strings.Join(validStores, ", ")))
	}
	if c.HealthTTL < 0 {
		errors = append(errors, "HEALTH_TTL must not be negative")
	}

	if strings.TrimSpace(c.SubprocessCommand) == "" {
		errors = append(errors, "SUBPROCESS_COMMAND must not be empty")
	}

	// Validate log level
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}

	// Validate log format
	validLogFormats := []string{"text", "json"}
	if !contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: %s", strings.Join(validLogFormats, ", ")))
	}

	if c.ShutdownTimeout <= 0 {
		errors = append(errors, "SHUTDOWN_TIMEOUT must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// HTTPAddr returns the listen address of the HTTP server
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

// SlogLevel maps LogLevel onto a slog level
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Helper function to check if slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
