package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	PostgresURL      string
	AuthJWTSecret    string
	InvitationSecret string
	ResendAPIKey     string
	FromEmail        string
	FrontendURL      string
	AllowedOrigins   []string
	Debug            bool
}

// Load reads configuration from the environment, picking up a local .env
// file when one exists. Missing required values fail startup outright.
func Load() (Config, error) {
	godotenv.Load()

	cfg := Config{
		Port:         getenv("PORT", "5000"),
		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		FromEmail:    os.Getenv("FROM_EMAIL"),
		FrontendURL:  getenv("FRONTEND_URL", "http://localhost:4200"),
		Debug:        os.Getenv("DEBUG") == "true",
	}

	var ok bool
	if cfg.PostgresURL, ok = os.LookupEnv("POSTGRES_URL"); !ok {
		return Config{}, fmt.Errorf("missing POSTGRES_URL")
	}
	if cfg.AuthJWTSecret, ok = os.LookupEnv("AUTH_JWT_SECRET"); !ok {
		return Config{}, fmt.Errorf("missing AUTH_JWT_SECRET")
	}

	// The invitation secret falls back to the auth secret for development
	// setups; production should set both.
	cfg.InvitationSecret = getenv("INVITATION_SECRET", cfg.AuthJWTSecret)

	origins, ok := os.LookupEnv("ALLOWED_ORIGINS")
	if !ok {
		return Config{}, fmt.Errorf("missing ALLOWED_ORIGINS")
	}
	for _, origin := range strings.Split(origins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
