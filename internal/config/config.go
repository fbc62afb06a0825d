package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config carries everything the process reads from the environment. It is
// built once in main and passed down; nothing else reads os.Getenv.
type Config struct {
	Addr         string
	DatabaseURL  string
	CookieSecret string
	GeminiAPIKey string
	StaticDir    string
}

// Load reads .env if present, then the environment, applying development
// defaults for anything unset.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:         getenv("ADDR", ":8080"),
		DatabaseURL:  getenv("DATABASE_URL", "postgres://localhost/trek?sslmode=disable"),
		CookieSecret: getenv("COOKIE_SECRET", "trek-dev-secret-key-change-in-prod"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		StaticDir:    getenv("STATIC_DIR", "./static"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
