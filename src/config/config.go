package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port              string
	LogLevel          string
	DatasetPath       string
	RateAPIURL        string
	RatePollInterval  time.Duration
	HTTPClientTimeout time.Duration
	ChartCacheTTL     time.Duration
	AllowedOrigin     string
	StaticDir         string
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	Cfg = &AppConfig{
		Port:              getEnv("PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		DatasetPath:       getEnv("DATASET_PATH", "./data.sqlite3"),
		RateAPIURL:        getEnv("RATE_API_URL", "https://api.coingecko.com/api/v3/simple/price?ids=bitcoin&vs_currencies=usd,eur"),
		RatePollInterval:  getEnvAsDuration("RATE_POLL_INTERVAL", time.Minute),
		HTTPClientTimeout: getEnvAsDuration("HTTP_CLIENT_TIMEOUT", 20*time.Second),
		ChartCacheTTL:     getEnvAsDuration("CHART_CACHE_TTL", 15*time.Minute),
		AllowedOrigin:     getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		StaticDir:         getEnv("STATIC_DIR", "static"),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DatasetPath=%s, RatePollInterval=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatasetPath, Cfg.RatePollInterval)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Duration value for %s not set or empty, using default: %s", key, fallback.String())
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
