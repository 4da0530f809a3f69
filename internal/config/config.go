package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// API access
	APIKey string

	// Detection
	ConfidenceThreshold float64
	SafeBrowsingAPIKey  string
	SafeBrowsingBaseURL string

	// Engagement
	GeminiAPIKey         string
	GeminiModel          string
	MaxConversationTurns int
	MinResponseDelay     time.Duration
	MaxResponseDelay     time.Duration
	GenerationTimeout    time.Duration

	// Sessions
	SessionTimeout       time.Duration
	SessionSweepInterval time.Duration

	// Callback delivery
	CallbackEndpoint    string
	CallbackAPIKey      string
	CallbackTimeout     time.Duration
	CallbackMaxAttempts int
	CallbackBaseDelay   time.Duration

	// Completed-session archive
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	ArchiveTTL    time.Duration

	// Request layer
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		APIKey: getEnv("API_KEY", ""),

		ConfidenceThreshold: getEnvAsFloat("CONFIDENCE_THRESHOLD", 0.75),
		SafeBrowsingAPIKey:  getEnv("SAFE_BROWSING_API_KEY", ""),
		SafeBrowsingBaseURL: getEnv("SAFE_BROWSING_BASE_URL", "https://safebrowsing.googleapis.com/v4/threatMatches:find"),

		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		MaxConversationTurns: getEnvAsInt("MAX_CONVERSATION_TURNS", 20),
		MinResponseDelay:     getEnvAsDuration("MIN_RESPONSE_DELAY", 10*time.Second),
		MaxResponseDelay:     getEnvAsDuration("MAX_RESPONSE_DELAY", 90*time.Second),
		GenerationTimeout:    getEnvAsDuration("GENERATION_TIMEOUT", 20*time.Second),

		SessionTimeout:       getEnvAsDuration("SESSION_TIMEOUT", 30*time.Minute),
		SessionSweepInterval: getEnvAsDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),

		CallbackEndpoint:    getEnv("CALLBACK_ENDPOINT", "https://hackathon.guvi.in/api/updateHoneyPotFinalResult"),
		CallbackAPIKey:      getEnv("CALLBACK_API_KEY", ""),
		CallbackTimeout:     getEnvAsDuration("CALLBACK_TIMEOUT", 30*time.Second),
		CallbackMaxAttempts: getEnvAsInt("CALLBACK_MAX_ATTEMPTS", 3),
		CallbackBaseDelay:   getEnvAsDuration("CALLBACK_BASE_DELAY", time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		ArchiveTTL:    getEnvAsDuration("ARCHIVE_TTL", 7*24*time.Hour),

		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 20),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
