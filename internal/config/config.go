package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config keeps runtime settings for the service.
type Config struct {
	DatabaseURL string
	HTTPAddr    string
	BaseURL     string

	JWTSecret  string
	SessionTTL time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string

	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubscriber string

	AnthropicAPIKey string
	AnthropicModel  string

	QuoteURL string

	// ReminderInterval drives the in-process push reminder job while
	// serving. Zero disables it (run the CLI commands from cron
	// instead).
	ReminderInterval time.Duration

	// EmailReminderTime is the local HH:MM at which the daily email
	// reminder job runs while serving. Empty disables it.
	EmailReminderTime string

	TrustedOrigins []string
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		HTTPAddr:    strings.TrimSpace(os.Getenv("HTTP_ADDR")),
		BaseURL:     strings.TrimSpace(os.Getenv("BASE_URL")),

		JWTSecret:  strings.TrimSpace(os.Getenv("JWT_SECRET")),
		SessionTTL: parseDuration(os.Getenv("SESSION_TTL"), 24*time.Hour),

		SMTPHost:     strings.TrimSpace(os.Getenv("SMTP_HOST")),
		SMTPPort:     parseInt(os.Getenv("SMTP_PORT"), 587),
		SMTPUsername: strings.TrimSpace(os.Getenv("SMTP_USERNAME")),
		SMTPPassword: strings.TrimSpace(os.Getenv("SMTP_PASSWORD")),
		FromEmail:    strings.TrimSpace(os.Getenv("FROM_EMAIL")),

		VAPIDPublicKey:  strings.TrimSpace(os.Getenv("VAPID_PUBLIC_KEY")),
		VAPIDPrivateKey: strings.TrimSpace(os.Getenv("VAPID_PRIVATE_KEY")),
		VAPIDSubscriber: strings.TrimSpace(os.Getenv("VAPID_SUBSCRIBER")),

		AnthropicAPIKey: strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")),
		AnthropicModel:  strings.TrimSpace(os.Getenv("ANTHROPIC_MODEL")),

		QuoteURL: strings.TrimSpace(os.Getenv("QUOTE_URL")),

		ReminderInterval:  parseDuration(os.Getenv("REMINDER_INTERVAL"), 0),
		EmailReminderTime: strings.TrimSpace(os.Getenv("EMAIL_REMINDER_TIME")),

		TrustedOrigins: splitList(os.Getenv("TRUSTED_ORIGINS")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "todoapp.db"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.FromEmail == "" {
		cfg.FromEmail = "team1todo@gmail.com"
	}
	if cfg.AnthropicModel == "" {
		cfg.AnthropicModel = "claude-sonnet-4-5"
	}
	if cfg.QuoteURL == "" {
		cfg.QuoteURL = "https://zenquotes.io/api/today/"
	}

	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

func parseInt(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
