package config

import (
	"os"
	"strconv"
	"time"

	"taskflow/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	AppVersion  string
	DatabaseURL string
	FrontendDir string
	LogLevel    string
	LogJSON     bool

	// AllowedOrigin restricts websocket upgrades; empty accepts any origin.
	AllowedOrigin string

	// TraceExporter selects where spans go: "stdout" or "none".
	TraceExporter string

	// Sessions
	JWTSecret    string
	SessionTTL   time.Duration
	CookieSecure bool

	// Redis is optional: rate limits fall back to in-process limiters,
	// the board cache and session revocation are disabled.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	BoardCacheTTL time.Duration

	// Completion API. An empty key disables every AI endpoint.
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	AITimeout     time.Duration

	APIRateLimit   int
	APIRateWindow  time.Duration
	AuthRateLimit  int
	AuthRateWindow time.Duration
	AIRateLimit    int
	AIRateWindow   time.Duration
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	logLevel := envString("LOG_LEVEL", "info")
	traceDefault := "none"
	if logLevel == "debug" {
		traceDefault = "stdout"
	}

	return &Config{
		AppPort:     envString("APP_PORT", "8080"),
		AppVersion:  envString("APP_VERSION", "dev"),
		DatabaseURL: dbURL,
		FrontendDir: envString("FRONTEND_DIR", "../frontend"),
		LogLevel:    logLevel,
		LogJSON:     os.Getenv("LOG_JSON") == "true",

		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),
		TraceExporter: envString("TRACE_EXPORTER", traceDefault),

		JWTSecret:    jwtSecret,
		SessionTTL:   time.Duration(envInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		CookieSecure: os.Getenv("COOKIE_SECURE") == "true",

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		BoardCacheTTL: envSeconds("BOARD_CACHE_TTL_SECONDS", 60),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: envString("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:   envString("OPENAI_MODEL", "gpt-3.5-turbo"),
		AITimeout:     envSeconds("AI_TIMEOUT_SECONDS", 30),

		APIRateLimit:   envInt("API_RATE_LIMIT", 120),
		APIRateWindow:  envSeconds("API_RATE_WINDOW_SECONDS", 60),
		AuthRateLimit:  envInt("AUTH_RATE_LIMIT", 10),
		AuthRateWindow: envSeconds("AUTH_RATE_WINDOW_SECONDS", 60),
		AIRateLimit:    envInt("AI_RATE_LIMIT", 20),
		AIRateWindow:   envSeconds("AI_RATE_WINDOW_SECONDS", 60),
	}
}

// AIEnabled reports whether a completion API key is configured.
func (c *Config) AIEnabled() bool {
	return c.OpenAIAPIKey != ""
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envInt returns def for missing, malformed or negative values.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
		logger.Warn("ignoring invalid integer env value", "key", key, "value", v)
	}
	return def
}

func envSeconds(key string, def int) time.Duration {
	return time.Duration(envInt(key, def)) * time.Second
}
