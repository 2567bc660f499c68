package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the process needs from the environment.
// It is built once in main and passed down explicitly.
type Config struct {
	Addr string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	RedisAddr     string
	RedisPassword string

	SessionSecret string
	SessionTTL    time.Duration

	QuoteBaseURL string
	QuoteAPIKey  string
	QuoteTimeout time.Duration

	StartingCash float64
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Addr:          getenv("ADDR", ":8080"),
		DBHost:        getenv("DB_HOST", "localhost"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		DBPort:        getenv("DB_PORT", "5432"),
		RedisAddr:     getenv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		QuoteBaseURL:  getenv("QUOTE_API_URL", "https://cloud.iexapis.com/stable"),
		QuoteAPIKey:   os.Getenv("QUOTE_API_KEY"),
		SessionTTL:    24 * time.Hour,
		QuoteTimeout:  5 * time.Second,
		StartingCash:  10000,
	}

	if v := os.Getenv("SESSION_TTL_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse SESSION_TTL_HOURS: %w", err)
		}
		cfg.SessionTTL = time.Duration(hours) * time.Hour
	}
	if v := os.Getenv("STARTING_CASH"); v != "" {
		cash, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("parse STARTING_CASH: %w", err)
		}
		cfg.StartingCash = cash
	}

	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET not set")
	}
	if cfg.QuoteAPIKey == "" {
		return nil, fmt.Errorf("QUOTE_API_KEY not set")
	}

	return cfg, nil
}

// DSN builds the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
