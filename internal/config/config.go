package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	InteractionLogPath string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	SampleRatio float64 // fraction of root spans kept, parent decisions are always honoured
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	DefaultProvider string // "gemini", "openai", "ollama"
	DefaultModel    string
	OllamaBaseURL   string
	OpenAIBaseURL   string

	TemplateCacheTTL      time.Duration
	HistoryCharLimit      int
	MinResponseLength     int
	ShortResponseCooldown time.Duration
	RateLimitCooldown     time.Duration
	ResponseCacheTTL      time.Duration
	KeyRequestsPerMinute  int

	CacheableMessageTypes []string
	StrictNoDataIntents   []string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			InteractionLogPath: getEnv("INTERACTION_LOG_PATH", "logs/ai_interactions.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			DefaultProvider: getEnv("AI_DEFAULT_PROVIDER", "gemini"),
			DefaultModel:    getEnv("AI_DEFAULT_MODEL", "gemini-2.0-flash"),
			OllamaBaseURL:   getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),

			TemplateCacheTTL:      getEnvAsDuration("TEMPLATE_CACHE_TTL", 5*time.Minute),
			HistoryCharLimit:      getEnvAsInt("HISTORY_CHAR_LIMIT", 2000),
			MinResponseLength:     getEnvAsInt("MIN_RESPONSE_LENGTH", 2),
			ShortResponseCooldown: getEnvAsDuration("SHORT_RESPONSE_COOLDOWN", 30*time.Second),
			RateLimitCooldown:     getEnvAsDuration("RATE_LIMIT_COOLDOWN", 60*time.Second),
			ResponseCacheTTL:      getEnvAsDuration("RESPONSE_CACHE_TTL", time.Hour),
			KeyRequestsPerMinute:  getEnvAsInt("KEY_REQUESTS_PER_MINUTE", 0),

			CacheableMessageTypes: getEnvAsList("CACHEABLE_MESSAGE_TYPES", []string{"general", "faq", "product_inquiry", "greeting"}),
			StrictNoDataIntents:   getEnvAsList("STRICT_NO_DATA_INTENTS", []string{"price_inquiry", "shipping_inquiry", "order_status", "product_inquiry"}),
		},
		Tracing: TracingConfig{
			Enabled:     getEnv("OTEL_ENABLED", "false") == "true",
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			SampleRatio: getEnvAsFloat("OTEL_SAMPLE_RATIO", 1),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	parts := strings.Split(strValue, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
