package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds everything read from the environment at startup
type Config struct {
	Port           string
	AllowedOrigins string

	DBType      string // "sqlite" or "postgres"
	DBPath      string // sqlite file path
	DatabaseURL string // postgres connection string

	JWTSecret string
	TokenTTL  time.Duration

	RedisURL string // optional shared rate limit store

	APIRateLimit int // general API requests per second per client
	APIBurst     int

	TelegramToken string // optional digest notifications

	OpenAIKey     string // optional hint generation
	OpenAIBaseURL string
	OpenAIModel   string

	LogLevel string
}

// Load reads .env when present, then the process environment. JWT_SECRET is
// the only hard requirement; everything else has a default.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, using process environment")
	}

	cfg := &Config{
		Port:           getEnv("SERVER_PORT", "8080"),
		AllowedOrigins: getEnv("CORS_ORIGINS", "*"),
		DBType:         getEnv("DB_TYPE", "sqlite"),
		DBPath:         getEnv("DB_PATH", "data/drillbot.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		TokenTTL:       time.Duration(getEnvInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
		RedisURL:       os.Getenv("REDIS_URL"),
		APIRateLimit:   getEnvInt("API_RATE_LIMIT", 20),
		APIBurst:       getEnvInt("API_RATE_BURST", 40),
		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
	}
	if cfg.DBType == "postgres" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when DB_TYPE=postgres")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.Warnf("invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}
