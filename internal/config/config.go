package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort    string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	MigrationsDir string
	RedisURL      string
	JWTSecret     string
	KafkaBrokers  string
	ProgressTopic string
}

func Load() *Config {
	// Missing .env is fine, env vars may come from the environment itself.
	_ = godotenv.Load()

	return &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "sportcomm"),
		DBPassword:    getEnv("DB_PASSWORD", "sportcomm_dev_password"),
		DBName:        getEnv("DB_NAME", "sportcomm"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change-me"),
		KafkaBrokers:  getEnv("KAFKA_BROKERS", ""),
		ProgressTopic: getEnv("PROGRESS_TOPIC", "progress.chat-events"),
	}
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}
