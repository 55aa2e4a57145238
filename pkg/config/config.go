package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL     string
	WSBaseURL      string // optional; derived from APIBaseURL when empty
	Environment    string
	ActiveConvFile string
	HistoryLimit   int

	// relay only
	RelayPort      string
	DevTokenSecret string
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		APIBaseURL:     getEnv("API_BASE_URL", "http://127.0.0.1:8000"),
		WSBaseURL:      getEnv("WS_BASE_URL", ""),
		Environment:    getEnv("ENVIRONMENT", "development"),
		ActiveConvFile: getEnv("ACTIVE_CONVERSATION_FILE", ".pairchat_active"),
		HistoryLimit:   getEnvAsInt("HISTORY_LIMIT", 50),
		RelayPort:      getEnv("RELAY_PORT", "8000"),
		DevTokenSecret: getEnv("DEV_TOKEN_SECRET", "dev-only-secret"),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
