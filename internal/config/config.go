package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	DatabaseURL string
	AutoMigrate bool

	// Firebase
	FirebaseProjectID string

	// AI backend
	AIProvider    string // claude, openai, gemini
	AIModel       string
	AITimeout     time.Duration
	ClaudeAPIKey  string
	ClaudeBaseURL string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	GeminiAPIKey  string

	// Redis job-record cache
	RedisAddr     string
	RedisPassword string
	JobCacheTTL   time.Duration

	// Cloud Storage
	StorageBucket string

	// Quota
	DailyAnalysisLimit int

	// Rate Limiting
	RateLimitRPS int

	// CORS
	AllowedOrigins []string

	// Tracing
	OTelEnabled  bool
	OTelEndpoint string
}

func Load() (*Config, error) {
	// .env is optional; real env vars take precedence
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		AutoMigrate:        getEnvBool("AUTO_MIGRATE", false),
		FirebaseProjectID:  getEnv("FIREBASE_PROJECT_ID", ""),
		AIProvider:         strings.ToLower(getEnv("AI_PROVIDER", "claude")),
		AIModel:            getEnv("AI_MODEL", ""),
		AITimeout:          getEnvDuration("AI_TIMEOUT", 60*time.Second),
		ClaudeAPIKey:       getEnv("CLAUDE_API_KEY", ""),
		ClaudeBaseURL:      getEnv("CLAUDE_BASE_URL", "https://api.anthropic.com"),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", ""),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		JobCacheTTL:        getEnvDuration("JOB_CACHE_TTL", 24*time.Hour),
		StorageBucket:      getEnv("STORAGE_BUCKET", ""),
		DailyAnalysisLimit: getEnvInt("DAILY_ANALYSIS_LIMIT", 3),
		RateLimitRPS:       getEnvInt("RATE_LIMIT_RPS", 10),
		AllowedOrigins:     getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		OTelEnabled:        getEnvBool("OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.DailyAnalysisLimit <= 0 {
		return nil, fmt.Errorf("DAILY_ANALYSIS_LIMIT must be positive, got %d", cfg.DailyAnalysisLimit)
	}
	switch cfg.AIProvider {
	case "claude", "openai", "gemini":
	default:
		return nil, fmt.Errorf("unknown AI_PROVIDER %q", cfg.AIProvider)
	}

	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
