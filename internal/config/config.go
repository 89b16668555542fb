package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              int
	DatabaseURL       string
	NatsURL           string
	NatsToken         string
	LogLevel          string
	AnthropicAPIKey   string
	AnthropicModel    string
	VapiAPIKey        string
	VapiBaseURL       string
	VapiWebhookSecret string
	VapiAssistantID   string
	VapiPhoneNumberID string
	VoiceID           string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first if present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:              envInt("ETERNO_PORT", 8760),
		DatabaseURL:       envStr("DATABASE_URL", ""),
		NatsURL:           envStr("NATS_URL", "nats://localhost:4222"),
		NatsToken:         envStr("NATS_TOKEN", ""),
		LogLevel:          envStr("LOG_LEVEL", "info"),
		AnthropicAPIKey:   envStr("ANTHROPIC_API_KEY", ""),
		AnthropicModel:    envStr("ETERNO_MODEL", "claude-sonnet-4-20250514"),
		VapiAPIKey:        envStr("VAPI_API_KEY", ""),
		VapiBaseURL:       envStr("VAPI_BASE_URL", "https://api.vapi.ai"),
		VapiWebhookSecret: envStr("VAPI_WEBHOOK_SECRET", ""),
		VapiAssistantID:   envStr("VAPI_ASSISTANT_ID", ""),
		VapiPhoneNumberID: envStr("VAPI_PHONE_NUMBER_ID", ""),
		VoiceID:           envStr("ETERNO_VOICE_ID", "pFZP5JQG7iQjIQuC4Bku"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
