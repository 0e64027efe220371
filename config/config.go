package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	ServerPort  string
	CORSOrigin  string
	StoreDriver string
	DBHost      string
	DBPort      int
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	DBLogLevel  string
	DBReset     bool
	SeedData    bool
	JWTSecret   string
	JWTExpiry   int // в часах
}

// Load читает конфигурацию из окружения; .env подхватывается, если он есть
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment")
	} else {
		log.Println("✅ .env file loaded")
	}

	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		CORSOrigin:  getEnv("CORS_ORIGIN", "*"),
		StoreDriver: getEnv("STORE_DRIVER", StoreDriverPostgres),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnvAsInt("DB_PORT", 5432),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", "postgres"),
		DBName:      getEnv("DB_NAME", "academic_records"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),
		DBLogLevel:  getEnv("DB_LOG_LEVEL", "warn"),
		DBReset:     getEnvAsBool("DB_RESET", false),
		SeedData:    getEnvAsBool("SEED_DATA", true),
		JWTSecret:   getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTExpiry:   getEnvAsInt("JWT_EXPIRY", 24),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
