// Package config loads service configuration from the environment so main
// stays lean. A local .env file is honored when present; real deployments
// provide variables through the environment directly.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Server captures everything the HTTP service needs at startup.
type Server struct {
	Addr            string
	DatabaseURL     string
	MigrationsPath  string
	RedisURL        string
	JWTSigningKey   string
	AccessTokenTTL  time.Duration
	ShutdownTimeout time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	// .env is optional; variables from the environment win.
	_ = godotenv.Load()

	return Server{
		Addr:            getEnv("CAMPUSPASS_ADDR", ":8080"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "migrations"),
		RedisURL:        getEnv("REDIS_URL", ""),
		JWTSigningKey:   getEnv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		AccessTokenTTL:  getDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
