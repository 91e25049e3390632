package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Auth
	JWTSecret     string
	JWTExpiration time.Duration

	// External collaborators
	UserStoreURL string
	RedisURL     string

	// CORS
	CORSAllowedOrigins []string

	// Matchmaking
	SearchTimeout       time.Duration
	SweepInterval       time.Duration
	MaxRatingDifference int

	// Match lifecycle
	AcceptanceTimeout time.Duration
	CompletionDelay   time.Duration

	// Rooms
	RoomStartDelay time.Duration
}

func Load() (*Config, error) {
	// .env 파일 로드 (있는 경우)
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		Env:                 getEnv("ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		JWTSecret:           getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiration:       getDuration("JWT_EXPIRATION", 24*time.Hour),
		UserStoreURL:        getEnv("USER_STORE_URL", "http://localhost:8081"),
		RedisURL:            getEnv("REDIS_URL", ""),
		CORSAllowedOrigins:  getList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		SearchTimeout:       getDuration("MATCHMAKING_SEARCH_TIMEOUT", 30*time.Second),
		SweepInterval:       getDuration("MATCHMAKING_SWEEP_INTERVAL", 5*time.Second),
		MaxRatingDifference: getInt("MATCHMAKING_MAX_RATING_DIFF", 200),
		AcceptanceTimeout:   getDuration("MATCH_ACCEPTANCE_TIMEOUT", 10*time.Second),
		CompletionDelay:     getDuration("MATCH_COMPLETION_DELAY", 3*time.Second),
		RoomStartDelay:      getDuration("ROOM_START_DELAY", 3*time.Second),
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
