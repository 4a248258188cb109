package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage drivers accepted in STORAGE_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port           string
	StorageDriver  string
	DatabaseURL    string
	MongoURI       string
	MongoDatabase  string
	JWTSecret      string
	JWTIssuer      string
	JWTTTLMinutes  int
	MaxPageLimit   int
	LogLevel       string
	CORSOrigins    string
	SwaggerEnabled bool
}

// Load reads environment variables, optionally from a .env file if present.
func Load() Config {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	cfg := Config{
		Port:           getEnv("PORT", "5000"),
		StorageDriver:  strings.ToLower(getEnv("STORAGE_DRIVER", DriverMongo)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MongoURI:       getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:  getEnv("MONGODB_DATABASE", "task_tracker"),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change"),
		JWTIssuer:      getEnv("JWT_ISSUER", "task-tracker"),
		JWTTTLMinutes:  getEnvPositiveInt("JWT_TTL_MINUTES", 24*60),
		MaxPageLimit:   getEnvInt("MAX_PAGE_LIMIT", 100),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		CORSOrigins:    getEnv("CORS_ORIGINS", "*"),
		SwaggerEnabled: getEnvBool("SWAGGER_ENABLED", true),
	}
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// getEnvPositiveInt is getEnvInt for values where zero or less makes no sense.
func getEnvPositiveInt(key string, def int) int {
	if n := getEnvInt(key, def); n > 0 {
		return n
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
