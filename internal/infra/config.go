package infra

import (
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	GeminiAPIKey     string
	GeminiModel      string
	GeminiBaseURL    string
	APIAccessKey     string
	SanityProjectID  string
	SanityDataset    string
	SanityToken      string
	SanityAPIVersion string
	DatabaseURL      string
	SessionStorePath string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. GEMINI_API_KEY is deliberately not required at
// load time: when it is absent the generate endpoint answers every request
// with a "not configured" error instead of refusing to boot.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.5-flash-image"),
		GeminiBaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		APIAccessKey:     os.Getenv("API_ACCESS_KEY"),
		SanityProjectID:  os.Getenv("SANITY_PROJECT_ID"),
		SanityDataset:    getEnv("SANITY_DATASET", "production"),
		SanityToken:      os.Getenv("SANITY_TOKEN"),
		SanityAPIVersion: getEnv("SANITY_API_VERSION", "v2024-01-01"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SessionStorePath: getEnv("SESSION_STORE_PATH", "data/sessions.json"),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 150)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
