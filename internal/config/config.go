package config

import (
	"fmt"
	"os"
)

// Config is the runtime configuration for the server
type Config struct {
	HTTPAddr string

	// DBConnStr wins when set; otherwise the string is assembled from
	// the DB* parts.
	DBConnStr  string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	APIToken string

	FinnhubKey      string
	AlphaVantageKey string

	GroqKey     string
	GroqBaseURL string
	GroqModel   string
}

// DefaultConfig returns the configuration for a local run
func DefaultConfig() *Config {
	return &Config{
		HTTPAddr:   ":8080",
		DBHost:     "localhost",
		DBPort:     "5432",
		DBUser:     "postgres",
		DBPassword: "postgres",
		DBName:     "finbank",
		APIToken:   "dev-token",
	}
}

// FromEnv overlays environment variables on the defaults
func FromEnv() *Config {
	cfg := DefaultConfig()

	overlay(&cfg.HTTPAddr, "HTTP_ADDR")
	overlay(&cfg.DBConnStr, "DB_CONN_STR")
	overlay(&cfg.DBHost, "DB_HOST")
	overlay(&cfg.DBPort, "DB_PORT")
	overlay(&cfg.DBUser, "DB_USER")
	overlay(&cfg.DBPassword, "DB_PASSWORD")
	overlay(&cfg.DBName, "DB_NAME")
	overlay(&cfg.APIToken, "API_TOKEN")
	overlay(&cfg.FinnhubKey, "FINNHUB_API_KEY")
	overlay(&cfg.AlphaVantageKey, "ALPHA_VANTAGE_API_KEY")
	overlay(&cfg.GroqKey, "GROQ_API_KEY")
	overlay(&cfg.GroqBaseURL, "GROQ_BASE_URL")
	overlay(&cfg.GroqModel, "GROQ_MODEL")

	return cfg
}

// ConnectionString returns the Postgres connection string
func (c *Config) ConnectionString() string {
	if c.DBConnStr != "" {
		return c.DBConnStr
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

func overlay(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
