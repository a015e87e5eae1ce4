package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	PostgresUrl    string
	DBMaxOpenConns int
	DBMaxIdleConns int
	AutoMigrate    bool

	MongoURI      string
	MongoDatabase string

	RedisURL      string
	CountCacheTTL time.Duration

	JWTSecret string
	JWTExpiry time.Duration

	FirebaseCredentialsPath string

	GeminiAPIKey           string
	GeminiModel            string
	ContentAnalysisTimeout time.Duration

	CORSOrigins string
}

// Load reads the environment, after merging a .env file when one exists.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		PostgresUrl:    getEnv("DATABASE_URL", postgresDSNFromParts()),
		DBMaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 50),
		DBMaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 10),
		AutoMigrate:    getBoolEnv("DB_AUTO_MIGRATE", true),

		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDatabase: getEnv("MONGO_DATABASE", "nano_social"),

		RedisURL:      getEnv("REDIS_URL", ""),
		CountCacheTTL: getDurationEnv("COUNT_CACHE_TTL", 5*time.Minute),

		JWTSecret: getEnv("JWT_SECRET", "secret"),
		JWTExpiry: getDurationEnv("JWT_EXPIRY", 72*time.Hour),

		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS", ""),

		GeminiAPIKey:           getEnv("GEMINI_API_KEY", ""),
		GeminiModel:            getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		ContentAnalysisTimeout: getDurationEnv("CONTENT_ANALYSIS_TIMEOUT", 15*time.Second),

		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func postgresDSNFromParts() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "nano_social"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_SSLMODE", "disable"),
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
