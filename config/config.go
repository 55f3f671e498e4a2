package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	Port            string
	StoreAPIURL     string
	StorageBackend  string
	DatabaseURL     string
	RedisURL        string
	GuestCartTTL    time.Duration
	UpstreamTimeout time.Duration
	FrontendURL     string
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

func LoadEnv() error {
	// A missing .env is fine; deployed environments set variables directly
	if err := godotenv.Load(); err != nil {
		return nil
	}
	return nil
}

// ValidateEnv checks that critical environment variables are set.
func ValidateEnv() error {
	var missing []string

	if os.Getenv("GUEST_TOKEN_SECRET") == "" {
		missing = append(missing, "GUEST_TOKEN_SECRET")
	}
	if os.Getenv("STORE_API_URL") == "" {
		missing = append(missing, "STORE_API_URL")
	}

	switch backend := GetEnv("STORAGE_BACKEND", BackendMemory); backend {
	case BackendMemory:
		log.Println("WARNING: STORAGE_BACKEND is memory - guest carts are lost on restart")
	case BackendPostgres:
		if os.Getenv("DATABASE_URL") == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case BackendRedis:
		if os.Getenv("REDIS_URL") == "" {
			missing = append(missing, "REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", backend)
	}

	if len(missing) > 0 {
		return fmt.Errorf("critical environment variables not set: %v", missing)
	}

	if os.Getenv("FRONTEND_URL") == "" {
		log.Println("WARNING: FRONTEND_URL not set - CORS may not work correctly")
	}

	return nil
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetDuration parses key as a time.Duration, falling back on a missing or bad value.
func GetDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("WARNING: %s=%q is not a duration, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func GetInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var n int
	if _, err := fmt.Sscanf(value, "%d", &n); err != nil || n <= 0 {
		log.Printf("WARNING: %s=%q is not a positive integer, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

// Load reads the environment into a Config. Call ValidateEnv first.
func Load() Config {
	return Config{
		Port:            GetEnv("PORT", "8080"),
		StoreAPIURL:     os.Getenv("STORE_API_URL"),
		StorageBackend:  GetEnv("STORAGE_BACKEND", BackendMemory),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		GuestCartTTL:    GetDuration("GUEST_CART_TTL", 30*24*time.Hour),
		UpstreamTimeout: GetDuration("UPSTREAM_TIMEOUT", 10*time.Second),
		FrontendURL:     os.Getenv("FRONTEND_URL"),
		LoginRateLimit:  GetInt("LOGIN_RATE_LIMIT", 10),
		LoginRateWindow: GetDuration("LOGIN_RATE_WINDOW", time.Minute),
	}
}
