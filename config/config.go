package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

var (
	PORT       string
	DB_URL     string
	JWT_SECRET string

	SITE_URL    string
	CORS_ORIGIN string

	STRIPE_SECRET_KEY     string
	STRIPE_WEBHOOK_SECRET string

	PAYMOB_API_KEY        string
	PAYMOB_HMAC_SECRET    string
	PAYMOB_INTEGRATION_ID string
	PAYMOB_IFRAME_ID      string

	SUPABASE_URL         string
	SUPABASE_SERVICE_KEY string

	OIDC_ISSUER_URL        string
	OIDC_CLIENT_ID         string
	OIDC_CLIENT_SECRET     string
	OIDC_REDIRECT_URL      string
	OIDC_FRONTEND_REDIRECT string
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "8080")
	DB_URL = mustEnv("DB_URL")
	JWT_SECRET = mustEnv("JWT_SECRET")

	SITE_URL = getEnv("SITE_URL", "http://localhost:5173")
	CORS_ORIGIN = getEnv("CORS_ORIGIN", "http://localhost:5173")

	// Payment, storage and identity credentials are optional: a missing set
	// disables the dependent endpoints instead of refusing to boot.
	STRIPE_SECRET_KEY = getEnv("STRIPE_SECRET_KEY", "")
	STRIPE_WEBHOOK_SECRET = getEnv("STRIPE_WEBHOOK_SECRET", "")
	if STRIPE_SECRET_KEY == "" || STRIPE_WEBHOOK_SECRET == "" {
		log.Println("⚠️ Stripe not fully configured. Stripe checkout disabled.")
	}

	PAYMOB_API_KEY = getEnv("PAYMOB_API_KEY", "")
	PAYMOB_HMAC_SECRET = getEnv("PAYMOB_HMAC_SECRET", "")
	PAYMOB_INTEGRATION_ID = getEnv("PAYMOB_INTEGRATION_ID", "")
	PAYMOB_IFRAME_ID = getEnv("PAYMOB_IFRAME_ID", "")
	if PAYMOB_API_KEY == "" || PAYMOB_HMAC_SECRET == "" {
		log.Println("⚠️ Paymob not fully configured. Paymob checkout disabled.")
	}

	SUPABASE_URL = getEnv("SUPABASE_URL", "")
	SUPABASE_SERVICE_KEY = getEnv("SUPABASE_SERVICE_KEY", "")
	if SUPABASE_URL == "" || SUPABASE_SERVICE_KEY == "" {
		log.Println("⚠️ Object storage not configured. File uploads disabled.")
	}

	OIDC_ISSUER_URL = getEnv("OIDC_ISSUER_URL", "https://accounts.google.com")
	OIDC_CLIENT_ID = getEnv("OIDC_CLIENT_ID", "")
	OIDC_CLIENT_SECRET = getEnv("OIDC_CLIENT_SECRET", "")
	OIDC_REDIRECT_URL = getEnv("OIDC_REDIRECT_URL", "")
	OIDC_FRONTEND_REDIRECT = getEnv("OIDC_FRONTEND_REDIRECT", "")
	if OIDC_CLIENT_ID == "" || OIDC_CLIENT_SECRET == "" {
		log.Println("⚠️ OIDC provider not configured. Login disabled.")
	}
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
