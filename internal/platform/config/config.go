package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr        string
	DatabaseURL string
	CachePath   string
	FrontendDir string
	Environment string

	JWTSecret  string
	SessionTTL time.Duration

	SuperAdminEmail        string
	MasterPassword         string
	DefaultManagerPassword string

	GeminiAPIKey string
	GeminiModel  string

	RunMigrations bool
	MaxBodyBytes  int64
}

func Load() Config {
	return Config{
		Addr:                   getEnv("APP_ADDR", ":8080"),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		CachePath:              getEnv("CACHE_PATH", "storage/appraisal-cache.db"),
		FrontendDir:            getEnv("FRONTEND_DIR", "frontend/dist"),
		Environment:            getEnv("APP_ENV", "development"),
		JWTSecret:              getEnv("JWT_SECRET", ""),
		SessionTTL:             getEnvDuration("SESSION_TTL", 8*time.Hour),
		SuperAdminEmail:        getEnv("SUPER_ADMIN_EMAIL", "admin@metabev.com"),
		MasterPassword:         getEnv("MASTER_PASSWORD", ""),
		DefaultManagerPassword: getEnv("DEFAULT_MANAGER_PASSWORD", ""),
		GeminiAPIKey:           getEnv("GEMINI_API_KEY", ""),
		GeminiModel:            getEnv("GEMINI_MODEL", "gemini-3-flash-preview"),
		RunMigrations:          getEnvBool("RUN_MIGRATIONS", true),
		MaxBodyBytes:           int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if strings.TrimSpace(c.MasterPassword) == "" {
		return fmt.Errorf("MASTER_PASSWORD is required")
	}
	if strings.TrimSpace(c.SuperAdminEmail) == "" {
		return fmt.Errorf("SUPER_ADMIN_EMAIL is required")
	}
	if c.Environment == "production" {
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
		}
		if !strings.HasPrefix(c.MasterPassword, "$2") {
			return fmt.Errorf("MASTER_PASSWORD must be a bcrypt hash in production")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.SessionTTL < time.Minute {
		return fmt.Errorf("SESSION_TTL must be at least one minute")
	}
	return nil
}
