package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings loaded from the environment.
type Config struct {
	Port            string
	AllowedOrigins  []string
	AbandonTimeout  time.Duration
	SweepInterval   time.Duration
	RoomTTL         time.Duration
	DefaultGameMode string
}

// LoadConfig reads a .env file if present, then the environment.
// Missing values fall back to defaults suitable for local development.
func LoadConfig() *Config {
	// Best effort: a missing .env is fine in production.
	_ = godotenv.Load()

	return &Config{
		Port:            getEnv("PORT", "8090"),
		AllowedOrigins:  []string{getEnv("ALLOWED_ORIGINS", "*")},
		AbandonTimeout:  getDuration("ABANDON_TIMEOUT", 60*time.Second),
		SweepInterval:   getDuration("SWEEP_INTERVAL", time.Minute),
		RoomTTL:         getDuration("ROOM_TTL", 30*time.Minute),
		DefaultGameMode: getEnv("DEFAULT_GAME_MODE", "classic"),
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
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
