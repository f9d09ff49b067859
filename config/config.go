package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	ENV        string
	PORT       string
	DB_DRIVER  string
	DB_URL     string
	JWT_SECRET string
	APP_URL    string

	CORS_ORIGIN   string
	COOKIE_DOMAIN string
	COOKIE_SECURE bool

	GOOGLE_CLIENT_ID         string
	GOOGLE_CLIENT_SECRET     string
	GOOGLE_REDIRECT_URL      string
	GOOGLE_FRONTEND_REDIRECT string

	STRIPE_SECRET_KEY     string
	STRIPE_WEBHOOK_SECRET string
	STRIPE_PRODUCT_ID     string

	SMTP_URL      string
	SMTP_USER     string
	SMTP_PASSWORD string
	SMTP_FROM     string

	HASHID_SALT string
	REDIS_URL   string

	OTEL_ENDPOINT string
	OTEL_HEADERS  string
	SERVICE_NAME  string

	TRIAL_DAYS                   int
	INVITATION_TTL               time.Duration
	PUBLIC_ORDER_RATE_PER_MINUTE int
)

func init() {
	// sane defaults so packages and tests work without LoadEnv
	APP_URL = "http://localhost:5173"
	SMTP_FROM = "no-reply@localhost"
	TRIAL_DAYS = 14
	INVITATION_TTL = 7 * 24 * time.Hour
	PUBLIC_ORDER_RATE_PER_MINUTE = 20
	SERVICE_NAME = "restaurant-app"
}

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	ENV = getEnv("ENV", "development")
	PORT = getEnv("PORT", "8080")
	DB_DRIVER = getEnv("DB_DRIVER", "postgres")
	DB_URL = mustEnv("DB_URL")
	JWT_SECRET = mustEnv("JWT_SECRET")
	APP_URL = strings.TrimRight(getEnv("APP_URL", "http://localhost:5173"), "/")

	CORS_ORIGIN = getEnv("CORS_ORIGIN", APP_URL)
	COOKIE_DOMAIN = getEnv("COOKIE_DOMAIN", "")
	COOKIE_SECURE = getBool("COOKIE_SECURE", ENV == "production")

	// Google sign-in is optional; routes are only mounted when configured.
	GOOGLE_CLIENT_ID = getEnv("GOOGLE_CLIENT_ID", "")
	GOOGLE_CLIENT_SECRET = getEnv("GOOGLE_CLIENT_SECRET", "")
	GOOGLE_REDIRECT_URL = getEnv("GOOGLE_REDIRECT_URL", "")
	GOOGLE_FRONTEND_REDIRECT = getEnv("GOOGLE_FRONTEND_REDIRECT", "")

	STRIPE_SECRET_KEY = getEnv("STRIPE_SECRET_KEY", "")
	STRIPE_WEBHOOK_SECRET = getEnv("STRIPE_WEBHOOK_SECRET", "")
	STRIPE_PRODUCT_ID = getEnv("STRIPE_PRODUCT_ID", "")

	SMTP_URL = getEnv("SMTP_URL", "")
	SMTP_USER = getEnv("SMTP_USER", "")
	SMTP_PASSWORD = getEnv("SMTP_PASSWORD", "")
	SMTP_FROM = getEnv("SMTP_FROM", "no-reply@localhost")

	HASHID_SALT = getEnv("HASHID_SALT", "")
	REDIS_URL = getEnv("REDIS_URL", "")

	OTEL_ENDPOINT = getEnv("OTEL_ENDPOINT", "")
	OTEL_HEADERS = getEnv("OTEL_HEADERS", "")
	SERVICE_NAME = getEnv("SERVICE_NAME", "restaurant-app")

	TRIAL_DAYS = getInt("TRIAL_DAYS", 14)
	INVITATION_TTL = time.Duration(getInt("INVITATION_TTL_HOURS", 7*24)) * time.Hour
	PUBLIC_ORDER_RATE_PER_MINUTE = getInt("PUBLIC_ORDER_RATE_PER_MINUTE", 20)
}

func IsProduction() bool {
	return ENV == "production"
}

func GoogleEnabled() bool {
	return GOOGLE_CLIENT_ID != "" && GOOGLE_CLIENT_SECRET != "" && GOOGLE_REDIRECT_URL != ""
}

func OTelEnabled() bool {
	return OTEL_ENDPOINT != ""
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid integer for %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
