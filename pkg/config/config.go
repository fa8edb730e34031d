package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	DatabaseDSN        string
	JWTSecret          string
	GoogleClientID     string
	GoogleClientSecret string

	// Classifier model options. AIProvider picks the strategy ("ollama" or
	// "gemini"); when the chosen provider is unconfigured classification
	// runs on rules alone.
	AIProvider            string
	GeminiAPIKey          string
	GeminiModel           string
	GeminiTimeout         time.Duration
	OllamaBaseURL         string
	OllamaModel           string
	OllamaTimeout         time.Duration
	OllamaTemperature     float64
	OllamaMaxOutputTokens int

	SyncInterval   time.Duration
	SyncLookback   time.Duration
	SyncRunTimeout time.Duration
	SyncMaxUsers   int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseDSN:        getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=jobtrail port=5432 sslmode=disable"),
		JWTSecret:          getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),

		AIProvider:            getEnv("AI_PROVIDER", "ollama"),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiModel:           getEnv("GEMINI_MODEL", ""),
		GeminiTimeout:         getDuration("GEMINI_TIMEOUT", 30*time.Second),
		OllamaBaseURL:         getEnv("OLLAMA_BASE_URL", ""),
		OllamaModel:           getEnv("OLLAMA_MODEL", ""),
		OllamaTimeout:         getDuration("OLLAMA_TIMEOUT", 30*time.Second),
		OllamaTemperature:     getFloat("OLLAMA_TEMPERATURE", 0.0),
		OllamaMaxOutputTokens: getInt("OLLAMA_MAX_OUTPUT_TOKENS", 256),

		SyncInterval:   getDuration("SYNC_INTERVAL", 5*time.Minute),
		SyncLookback:   getDuration("SYNC_LOOKBACK", time.Hour),
		SyncRunTimeout: getDuration("SYNC_RUN_TIMEOUT", 10*time.Minute),
		SyncMaxUsers:   getInt("SYNC_MAX_CONCURRENT_USERS", 4),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
