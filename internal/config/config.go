package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	PostgresURI    string
	RedisURI       string
	Port           string
	FrontendURL    string
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL(s)
	PixabayAPIKey  string
	Environment    string // ENV: production, development, etc.

	// Per-user write budget (token bucket). Defaults match the product
	// limit of 2 journal writes per hour.
	RateLimitCapacity       int
	RateLimitRefillTokens   int
	RateLimitRefillInterval int // seconds
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	// CORS: allow multiple origins so production and preview frontends work
	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:3000"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	return &Config{
		PostgresURI:             getEnv("POSTGRES_URI", "postgres://localhost:5432/reverie?sslmode=disable"),
		RedisURI:                getEnv("REDIS_URI", "redis://localhost:6379/0"),
		Port:                    getEnv("PORT", "8080"),
		FrontendURL:             getEnv("FRONTEND_URL", "http://localhost:3000"),
		AllowedOrigins:          allowedOrigins,
		PixabayAPIKey:           getEnv("PIXABAY_API_KEY", ""),
		Environment:             env,
		RateLimitCapacity:       getEnvInt("RATE_LIMIT_CAPACITY", 2),
		RateLimitRefillTokens:   getEnvInt("RATE_LIMIT_REFILL_TOKENS", 2),
		RateLimitRefillInterval: getEnvInt("RATE_LIMIT_REFILL_INTERVAL_SECONDS", 3600),
	}
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
