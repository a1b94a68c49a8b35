package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Identity provider. JWKSURL wins over JWTSecret when both are set.
	JWKSURL   string
	JWTSecret string

	// IGDB (game metadata provider)
	IGDBClientID     string
	IGDBClientSecret string
	IGDBBaseURL      string
	IGDBTokenURL     string
	IGDBTimeout      time.Duration
	GameCacheTTL     time.Duration
	GameSweepBatch   int
	GameSweepEvery   time.Duration

	// File storage (S3-compatible)
	StorageEndpoint  string
	StorageRegion    string
	StorageBucket    string
	StorageAccessKey string
	StorageSecretKey string

	// Admin
	AdminUserIDs string

	// Logs
	LogRetention time.Duration

	// Server
	Port        string
	CORSOrigins string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded .env file")
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "questlog"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWKSURL:   getEnv("AUTH_JWKS_URL", ""),
		JWTSecret: getEnv("JWT_SECRET", ""),

		IGDBClientID:     getEnv("IGDB_CLIENT_ID", ""),
		IGDBClientSecret: getEnv("IGDB_CLIENT_SECRET", ""),
		IGDBBaseURL:      getEnv("IGDB_BASE_URL", "https://api.igdb.com/v4"),
		IGDBTokenURL:     getEnv("IGDB_TOKEN_URL", "https://id.twitch.tv/oauth2/token"),
		IGDBTimeout:      parseDuration(getEnv("IGDB_TIMEOUT", "10s"), 10*time.Second),
		GameCacheTTL:     parseDuration(getEnv("GAME_CACHE_TTL", "168h"), 7*24*time.Hour),
		GameSweepBatch:   parseInt(getEnv("GAME_SWEEP_BATCH", "25"), 25),
		GameSweepEvery:   parseDuration(getEnv("GAME_SWEEP_EVERY", "1h"), time.Hour),

		StorageEndpoint:  getEnv("STORAGE_ENDPOINT", ""),
		StorageRegion:    getEnv("STORAGE_REGION", "auto"),
		StorageBucket:    getEnv("STORAGE_BUCKET", ""),
		StorageAccessKey: getEnv("STORAGE_ACCESS_KEY_ID", ""),
		StorageSecretKey: getEnv("STORAGE_SECRET_ACCESS_KEY", ""),

		AdminUserIDs: getEnv("ADMIN_USER_IDS", ""),

		LogRetention: parseDuration(getEnv("LOG_RETENTION", "720h"), 30*24*time.Hour),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// IGDBEnabled reports whether provider credentials are configured.
func (c *Config) IGDBEnabled() bool {
	return c.IGDBClientID != "" && c.IGDBClientSecret != ""
}

func (c *Config) StorageEnabled() bool {
	return c.StorageBucket != "" && c.StorageAccessKey != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
