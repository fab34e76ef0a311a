package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries every runtime setting, loaded from the environment.
// godotenv/autoload in main fills the environment from .env in development.
type Config struct {
	DatabaseURL string
	Port        string

	// Database performance settings
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime int // minutes
	DBConnMaxIdleTime int // minutes
	DBReadTimeout     time.Duration
	DBWriteTimeout    time.Duration

	// Authorization
	RolesYAMLPath string

	// Notification gateway
	NotifyGatewayURL string
	NotifyAPIKey     string
	NotifyFromEmail  string
	NotifyFromName   string
	NotifyTimeout    time.Duration
	AdminEmail       string

	// Logging
	LogLevel  string
	LogFormat string // "json" or "text"
	LogOutput string

	// Environment
	Env string // development, staging, production
}

func Load() *Config {
	dbMaxOpenConns, _ := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "25"))
	dbMaxIdleConns, _ := strconv.Atoi(getEnv("DB_MAX_IDLE_CONNS", "10"))
	dbConnMaxLifetime, _ := strconv.Atoi(getEnv("DB_CONN_MAX_LIFETIME_MINUTES", "10"))
	dbConnMaxIdleTime, _ := strconv.Atoi(getEnv("DB_CONN_MAX_IDLE_TIME_MINUTES", "5"))
	dbReadTO, _ := time.ParseDuration(getEnv("DB_READ_TIMEOUT", "8s"))
	dbWriteTO, _ := time.ParseDuration(getEnv("DB_WRITE_TIMEOUT", "6s"))
	notifyTO, _ := time.ParseDuration(getEnv("NOTIFY_TIMEOUT", "10s"))

	return &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Port:        getEnv("PORT", "8080"),

		DBMaxOpenConns:    dbMaxOpenConns,
		DBMaxIdleConns:    dbMaxIdleConns,
		DBConnMaxLifetime: dbConnMaxLifetime,
		DBConnMaxIdleTime: dbConnMaxIdleTime,
		DBReadTimeout:     dbReadTO,
		DBWriteTimeout:    dbWriteTO,

		RolesYAMLPath: getEnv("ROLES_YAML_PATH", ""),

		NotifyGatewayURL: getEnv("NOTIFY_GATEWAY_URL", ""),
		NotifyAPIKey:     getEnv("NOTIFY_API_KEY", ""),
		NotifyFromEmail:  getEnv("NOTIFY_FROM_EMAIL", "bookings@example.org"),
		NotifyFromName:   getEnv("NOTIFY_FROM_NAME", "Workshop Bookings"),
		NotifyTimeout:    notifyTO,
		AdminEmail:       getEnv("ADMIN_EMAIL", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		LogOutput: getEnv("LOG_OUTPUT", "stdout"),

		Env: getEnv("ENV", "development"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
