package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	ServerPort  string
	GRPCPort    string
	Environment string
	LogLevel    string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisAddress string
	ListCacheTTL time.Duration

	// JWT configuration
	JWTSecret string

	// internal secret used for scheduler triggers between services
	InternalSecret string

	// Background jobs
	StatusSweepCron   string
	DocumentPurgeCron string
	CronUseUTC        bool
	WorkerPoolSize    int
	SweepLockTTL      time.Duration

	FrontendAddress string
}

// Global application configuration
var AppConfig Config

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	// Find .env file
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		// Try to find .env in parent directories
		envPath = filepath.Join("..", ".env")
		if _, err := os.Stat(envPath); os.IsNotExist(err) {
			envPath = filepath.Join("..", "..", ".env")
		}
	}

	// Load .env file if it exists
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			log.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = generateRandomSecret()
		log.Println("Generated random JWT secret")
	}

	AppConfig = Config{
		ServerPort:        getEnv("PORT", "8080"),
		GRPCPort:          getEnv("GRPC_PORT", "9090"),
		Environment:       getEnv("ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getEnv("DB_PASSWORD", "postgres"),
		DBName:            getEnv("DB_NAME", "maintenance"),
		DBSSLMode:         getEnv("DB_SSLMODE", "disable"),
		RedisAddress:      getEnv("REDIS_ADDRESS", "localhost:6379"),
		ListCacheTTL:      getEnvDuration("LIST_CACHE_TTL", 5*time.Minute),
		JWTSecret:         jwtSecret,
		InternalSecret:    getEnv("INTERNAL_SECRET", "maintenance-internal-secret"),
		StatusSweepCron:   getEnv("STATUS_SWEEP_CRON", "0 2 * * *"),
		DocumentPurgeCron: getEnv("DOCUMENT_PURGE_CRON", "30 2 * * *"),
		CronUseUTC:        getEnvBool("CRON_USE_UTC", true),
		WorkerPoolSize:    getEnvInt("WORKER_POOL_SIZE", 4),
		SweepLockTTL:      getEnvDuration("SWEEP_LOCK_TTL", 10*time.Minute),
		FrontendAddress:   getEnv("FRONTEND_ADDRESS", "https://production-frontend.com"),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		lower := strings.ToLower(value)
		return lower == "true" || lower == "1" || lower == "yes"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// generateRandomSecret returns a 64 hex character secret built from two random UUIDs
func generateRandomSecret() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}
