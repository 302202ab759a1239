// Package config provides configuration management and environment variable handling for the application
package config

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/deliverycalc/quote-gateway/utils"
)

// ProductionConfig holds all configuration for production environment
type ProductionConfig struct {
	Server   ServerConfig   `json:"server"`
	Upstream UpstreamConfig `json:"upstream"`
	Database DatabaseConfig `json:"database"`
	Cache    CacheConfig    `json:"cache"`
	Security SecurityConfig `json:"security"`
	Admin    AdminConfig    `json:"admin"`
	Logging  LoggingConfig  `json:"logging"`
	Metrics  MetricsConfig  `json:"metrics"`
}

type ServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// UpstreamConfig describes the delivery-cost service this gateway fronts.
type UpstreamConfig struct {
	BaseURL       string        `json:"base_url"`
	AdminToken    string        `json:"admin_token"`
	Timeout       time.Duration `json:"timeout"`
	SubmitTimeout time.Duration `json:"submit_timeout"`
}

// DatabaseConfig holds Postgres settings for the quote history store.
// The store is optional, the gateway runs without it when disabled.
type DatabaseConfig struct {
	Enabled         bool          `json:"enabled"`
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Name            string        `json:"name"`
	User            string        `json:"user"`
	Password        string        `json:"password"`
	SSLMode         string        `json:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
}

type CacheConfig struct {
	Enabled    bool          `json:"enabled"`
	RedisURL   string        `json:"redis_url"`
	SessionTTL time.Duration `json:"session_ttl"`
	CatalogTTL time.Duration `json:"catalog_ttl"`
}

type SecurityConfig struct {
	AllowedOrigins  []string      `json:"allowed_origins"`
	GlobalRateLimit int           `json:"global_rate_limit"` // requests per minute
	AdminRateLimit  int           `json:"admin_rate_limit"`  // requests per minute
	RateLimitWindow time.Duration `json:"rate_limit_window"`
}

type AdminConfig struct {
	// Bcrypt hash of the X-Admin-Key value. Empty disables admin routes.
	APIKeyHash string `json:"api_key_hash"`
}

type LoggingConfig struct {
	Output     string `json:"output"` // stdout, file, both
	FilePath   string `json:"file_path"`
	MaxSize    int    `json:"max_size"` // MB
	MaxBackups int    `json:"max_backups"`
	MaxAge     int    `json:"max_age"` // days
	Compress   bool   `json:"compress"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// LoadProductionConfig loads and validates configuration from environment variables
func LoadProductionConfig() (*ProductionConfig, error) {
	// Load environment variables from .env file
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &ProductionConfig{
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Upstream: UpstreamConfig{
			BaseURL:       getEnvString("UPSTREAM_BASE_URL", "http://localhost:8000"),
			AdminToken:    getEnvString("UPSTREAM_ADMIN_TOKEN", ""),
			Timeout:       getEnvDuration("UPSTREAM_TIMEOUT", utils.DefaultUpstreamTimeout),
			SubmitTimeout: getEnvDuration("UPSTREAM_SUBMIT_TIMEOUT", utils.QuoteSubmitTimeout),
		},
		Database: DatabaseConfig{
			Enabled:         getEnvBool("DB_ENABLED", false),
			Host:            getEnvString("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnvString("DB_NAME", "quote_gateway"),
			User:            getEnvString("DB_USER", "postgres"),
			Password:        getEnvString("DB_PASSWORD", ""),
			SSLMode:         getEnvString("DB_SSL_MODE", "require"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Cache: CacheConfig{
			Enabled:    getEnvBool("CACHE_ENABLED", false),
			RedisURL:   getEnvString("CACHE_REDIS_URL", "redis://localhost:6379"),
			SessionTTL: getEnvDuration("CACHE_SESSION_TTL", utils.QuoteSessionTTL),
			CatalogTTL: getEnvDuration("CACHE_CATALOG_TTL", utils.CatalogCacheTTL),
		},
		Security: SecurityConfig{
			AllowedOrigins:  getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			GlobalRateLimit: getEnvInt("GLOBAL_RATE_LIMIT", 600),
			AdminRateLimit:  getEnvInt("ADMIN_RATE_LIMIT", 10),
			RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", 1*time.Minute),
		},
		Admin: AdminConfig{
			APIKeyHash: getEnvString("ADMIN_API_KEY_HASH", ""),
		},
		Logging: LoggingConfig{
			Output:     getEnvString("LOG_OUTPUT", "stdout"),
			FilePath:   getEnvString("LOG_FILE_PATH", "/var/log/quote-gateway/app.log"),
			MaxSize:    getEnvInt("LOG_MAX_SIZE", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 10),
			MaxAge:     getEnvInt("LOG_MAX_AGE", 30),
			Compress:   getEnvBool("LOG_COMPRESS", true),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnvString("METRICS_PATH", "/metrics"),
		},
	}

	// Validate the loaded configuration
	if err := ValidateProductionConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadEnvFile loads environment variables from .env file if it exists
func loadEnvFile() error {
	envFile := ".env"

	// Check if .env file exists
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		// .env file doesn't exist, continue with environment variables
		return nil
	}

	// Open .env file
	file, err := os.Open(envFile)
	if err != nil {
		return fmt.Errorf("failed to open .env file: %w", err)
	}
	defer file.Close()

	// Read file line by line
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse key=value pairs
		if strings.Contains(line, "=") {
			parts := strings.SplitN(line, "=", 2)
			if len(parts) == 2 {
				key := strings.TrimSpace(parts[0])
				value := strings.TrimSpace(parts[1])

				// Remove quotes if present
				if (strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`)) ||
					(strings.HasPrefix(value, `'`) && strings.HasSuffix(value, `'`)) {
					value = value[1 : len(value)-1]
				}

				// Set environment variable if not already set
				if os.Getenv(key) == "" {
					os.Setenv(key, value)
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading .env file: %w", err)
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, item := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// ValidateProductionConfig validates the production configuration
func ValidateProductionConfig(cfg *ProductionConfig) error {
	var errors []string

	// Validate server configuration
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errors = append(errors, "SERVER_PORT must be between 1 and 65535")
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		errors = append(errors, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	// Validate upstream configuration
	if cfg.Upstream.BaseURL == "" {
		errors = append(errors, "UPSTREAM_BASE_URL is required")
	} else if u, err := url.Parse(cfg.Upstream.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, "UPSTREAM_BASE_URL must be an absolute URL")
	}
	if cfg.Upstream.Timeout <= 0 {
		errors = append(errors, "UPSTREAM_TIMEOUT must be positive")
	}
	if cfg.Upstream.SubmitTimeout <= 0 {
		errors = append(errors, "UPSTREAM_SUBMIT_TIMEOUT must be positive")
	}

	// Validate database configuration if enabled
	if cfg.Database.Enabled {
		if cfg.Database.Host == "" {
			errors = append(errors, "DB_HOST is required when the history store is enabled")
		}
		if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
			errors = append(errors, "DB_PORT must be between 1 and 65535")
		}
		if cfg.Database.Name == "" {
			errors = append(errors, "DB_NAME is required when the history store is enabled")
		}
		if cfg.Database.User == "" {
			errors = append(errors, "DB_USER is required when the history store is enabled")
		}
		if cfg.Database.Password == "" {
			errors = append(errors, "DB_PASSWORD is required when the history store is enabled")
		}
	}

	// Validate cache configuration if enabled
	if cfg.Cache.Enabled {
		if cfg.Cache.RedisURL == "" {
			errors = append(errors, "CACHE_REDIS_URL is required when the cache is enabled")
		}
		if cfg.Cache.SessionTTL <= 0 {
			errors = append(errors, "CACHE_SESSION_TTL must be positive")
		}
	}

	// Validate rate limit configuration
	if cfg.Security.GlobalRateLimit <= 0 {
		errors = append(errors, "GLOBAL_RATE_LIMIT must be positive")
	}
	if cfg.Security.AdminRateLimit <= 0 {
		errors = append(errors, "ADMIN_RATE_LIMIT must be positive")
	}

	// Validate logging configuration
	switch cfg.Logging.Output {
	case "stdout", "file", "both":
	default:
		errors = append(errors, "LOG_OUTPUT must be one of: stdout, file, both")
	}
	if cfg.Logging.Output != "stdout" && cfg.Logging.FilePath == "" {
		errors = append(errors, "LOG_FILE_PATH is required for file logging")
	}

	// Return validation errors if any
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}
