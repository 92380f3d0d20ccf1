package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port           int
	LogLevel       string
	GeminiEndpoint string
	GeminiAPIKey   string
	AppID          string
	DatabaseURL    string
	NatsURL        string
	NatsToken      string
	EmailDomain    string
}

func Load() Config {
	return Config{
		Port:           envInt("VOYAGER_PORT", 8760),
		LogLevel:       envStr("LOG_LEVEL", "info"),
		GeminiEndpoint: envStr("GEMINI_ENDPOINT", ""),
		GeminiAPIKey:   envStr("GEMINI_API_KEY", ""),
		AppID:          envStr("VOYAGER_APP_ID", ""),
		DatabaseURL:    envStr("DATABASE_URL", ""),
		NatsURL:        envStr("NATS_URL", ""),
		NatsToken:      envStr("NATS_TOKEN", ""),
		EmailDomain:    envStr("VOYAGER_EMAIL_DOMAIN", "miaoda.com"),
	}
}

// AccountsEnabled reports whether a database is configured for sign in.
func (c Config) AccountsEnabled() bool {
	return c.DatabaseURL != ""
}

// EventsEnabled reports whether plan notifications should be published.
func (c Config) EventsEnabled() bool {
	return c.NatsURL != ""
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
