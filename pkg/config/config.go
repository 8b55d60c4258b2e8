package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server struct {
		Port    string
		Env     string
		Timeout time.Duration
		BaseURL string
	}

	// Database configuration
	Database struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
		MaxConns int
		Timeout  time.Duration
	}

	// Redis configuration
	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	// JWT configuration
	JWT struct {
		Secret string
		Expiry time.Duration
	}

	// Security configuration
	Security struct {
		RateLimit      float64
		RateLimitBurst int
		AllowedOrigins []string
		MaxBodySize    int64
	}

	// Logging configuration
	Logging struct {
		Level  string
		Format string
	}

	// LLM (reply generator) configuration
	LLM struct {
		APIKey       string
		BaseURL      string
		ChatModel    string
		IntroModel   string
		Timeout      time.Duration
		MaxIntroLen  int
		HistoryLimit int
	}

	// Image generation configuration
	Image struct {
		APIKey   string
		Endpoint string
		ModelID  string
		Timeout  time.Duration
	}

	// Billing configuration
	Billing struct {
		WebhookSecret  string
		EntitlementTTL time.Duration
	}

	// Chat feature limits
	Chat struct {
		MaxMessagesPerConversation int
		MaxConversationsPerUser    int
		TitleLength                int
		SessionTTL                 time.Duration
		EphemeralEnabled           bool
	}

	// Cache settings
	Cache struct {
		Enabled     bool
		TTL         time.Duration
		MaxSize     int
		PurgeWindow time.Duration
	}
}

var (
	instance *Config
	once     sync.Once
)

// New creates a new Config instance with values from environment variables.
// Uses singleton pattern to ensure only one instance exists.
func New() *Config {
	once.Do(func() {
		// Load .env file if exists
		godotenv.Load()

		instance = &Config{}

		// Server config
		instance.Server.Port = getEnvString("PORT", "8080")
		instance.Server.Env = getEnvString("APP_ENV", "development")
		instance.Server.Timeout = getEnvDuration("SERVER_TIMEOUT", 30*time.Second)
		instance.Server.BaseURL = getEnvString("BASE_URL", "http://localhost:"+instance.Server.Port)

		// Database config
		instance.Database.Host = getEnvString("DB_HOST", "localhost")
		instance.Database.Port = getEnvString("DB_PORT", "5432")
		instance.Database.User = getEnvString("DB_USER", "postgres")
		instance.Database.Password = getEnvString("DB_PASSWORD", "postgres")
		instance.Database.Name = getEnvString("DB_NAME", "companion-chat")
		instance.Database.SSLMode = getEnvString("DB_SSL_MODE", "disable")
		instance.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 20)
		instance.Database.Timeout = getEnvDuration("DB_TIMEOUT", 5*time.Second)

		// Redis config
		instance.Redis.Addr = getEnvString("REDIS_URL", "localhost:6379")
		instance.Redis.Password = getEnvString("REDIS_PASSWORD", "")
		instance.Redis.DB = getEnvInt("REDIS_DB", 0)

		// JWT config
		instance.JWT.Secret = getEnvString("JWT_SECRET", "default-jwt-secret-do-not-use-in-production")
		instance.JWT.Expiry = getEnvDuration("JWT_EXPIRY", 24*time.Hour)

		// Security config
		instance.Security.RateLimit = float64(getEnvInt("RATE_LIMIT", 5))
		instance.Security.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", 10)
		instance.Security.AllowedOrigins = getEnvStringSlice("ALLOWED_ORIGINS", []string{"*"})
		instance.Security.MaxBodySize = getEnvInt64("MAX_BODY_SIZE", 1<<20) // 1MB

		// Logging config
		instance.Logging.Level = getEnvString("LOG_LEVEL", "info")
		instance.Logging.Format = getEnvString("LOG_FORMAT", "json")

		// LLM config
		instance.LLM.APIKey = getEnvString("LLM_API_KEY", "")
		instance.LLM.BaseURL = getEnvString("LLM_BASE_URL", "")
		instance.LLM.ChatModel = getEnvString("LLM_CHAT_MODEL", "gpt-4o")
		instance.LLM.IntroModel = getEnvString("LLM_INTRO_MODEL", "gpt-4o-mini")
		instance.LLM.Timeout = getEnvDuration("LLM_TIMEOUT", 30*time.Second)
		instance.LLM.MaxIntroLen = getEnvInt("LLM_MAX_INTRO_TOKENS", 150)
		instance.LLM.HistoryLimit = getEnvInt("LLM_HISTORY_LIMIT", 40)

		// Image config
		instance.Image.APIKey = getEnvString("IMAGE_API_KEY", "")
		instance.Image.Endpoint = getEnvString("IMAGE_API_ENDPOINT", "https://sinkin.ai/api/inference")
		instance.Image.ModelID = getEnvString("IMAGE_MODEL_ID", "")
		instance.Image.Timeout = getEnvDuration("IMAGE_TIMEOUT", 60*time.Second)

		// Billing config
		instance.Billing.WebhookSecret = getEnvString("BILLING_WEBHOOK_SECRET", "")
		instance.Billing.EntitlementTTL = getEnvDuration("ENTITLEMENT_CACHE_TTL", 5*time.Minute)

		// Chat limits
		instance.Chat.MaxMessagesPerConversation = getEnvInt("MAX_MESSAGES_PER_CONVERSATION", 1000)
		instance.Chat.MaxConversationsPerUser = getEnvInt("MAX_CONVERSATIONS_PER_USER", 50)
		instance.Chat.TitleLength = getEnvInt("CONVERSATION_TITLE_LENGTH", 50)
		instance.Chat.SessionTTL = getEnvDuration("CHAT_SESSION_TTL", 30*time.Minute)
		instance.Chat.EphemeralEnabled = getEnvBool("EPHEMERAL_SESSIONS_ENABLED", true)

		// Cache settings
		instance.Cache.Enabled = getEnvBool("CACHE_ENABLED", true)
		instance.Cache.TTL = getEnvDuration("CACHE_TTL", 5*time.Minute)
		instance.Cache.MaxSize = getEnvInt("CACHE_MAX_SIZE", 1000)
		instance.Cache.PurgeWindow = getEnvDuration("CACHE_PURGE_WINDOW", 10*time.Minute)
	})

	return instance
}

// Get returns the singleton Config instance
func Get() *Config {
	if instance == nil {
		return New()
	}
	return instance
}

// Helper functions to read environment variables with default values

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
