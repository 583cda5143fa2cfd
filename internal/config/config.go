package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv        string
	Port          string
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBLogLevel    string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	SessionSecret string
	GinMode       string
	OpenAIAPIKey  string
	OpenAIModel   string
}

// Load reads configuration from the environment. Outside production a
// .env file in the working directory is loaded first when present.
func Load() *Config {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Printf("Failed to load .env file: %v", err)
		}
	}

	return &Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		Port:          getEnv("PORT", "8080"),
		DBDriver:      getEnv("DB_DRIVER", "mysql"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "3306"),
		DBUser:        getEnv("DB_USER", "taskuser"),
		DBPassword:    getEnv("DB_PASSWORD", "taskpassword"),
		DBName:        getEnv("DB_NAME", "task_management"),
		DBSSLMode:     getEnv("DB_SSLMODE", "disable"),
		DBLogLevel:    getEnv("DB_LOG_LEVEL", "warn"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SessionSecret: getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:       getEnv("GIN_MODE", "debug"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o"),
	}
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production" || c.GinMode == "release"
}

// RedisAddr returns host:port for the Redis server.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
