package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                 string
	DatabaseURL          string
	GoogleClientID       string
	GoogleClientSecret   string
	GoogleProjectID      string
	GooglePubSubTopic    string
	GoogleCredentials    string
	GeminiApiKey         string
	AutomationWebhookURL string
	ServiceAPIKey        string
	CompanyName          string
	BlockedSenderDomains []string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:                 getEnv("PORT", "8080"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleProjectID:      getEnv("GOOGLE_PROJECT_ID", ""),
		GooglePubSubTopic:    getEnv("GOOGLE_PUBSUB_TOPIC", "gmail-updates"),
		GoogleCredentials:    getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		GeminiApiKey:         getEnv("GEMINI_API_KEY", ""),
		AutomationWebhookURL: getEnv("AUTOMATION_WEBHOOK_URL", ""),
		ServiceAPIKey:        getEnv("SERVICE_API_KEY", ""),
		CompanyName:          getEnv("COMPANY_NAME", ""),
		BlockedSenderDomains: splitCSV(getEnv("BLOCKED_SENDER_DOMAINS", "")),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.ToLower(p))
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
