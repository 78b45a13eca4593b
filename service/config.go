package service

import (
	"fmt"
	"os"
	"time"
)

const (
	defaultHTTPAddr       = ":8080"
	defaultTicketValidity = 365 * 24 * time.Hour
)

type Config struct {
	PostgresURL    string
	RedisAddr      string
	GatewayAddr    string
	HTTPAddr       string
	WebhookSecret  string
	TicketValidity time.Duration
}

// ConfigFromEnv reads the service configuration from the environment.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		PostgresURL:    os.Getenv("POSTGRES_URL"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		GatewayAddr:    os.Getenv("GATEWAY_ADDR"),
		HTTPAddr:       getEnvOrDefault("HTTP_ADDR", defaultHTTPAddr),
		WebhookSecret:  os.Getenv("STRIPE_WEBHOOK_SECRET"),
		TicketValidity: defaultTicketValidity,
	}

	if v := os.Getenv("TICKET_VALIDITY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parsing TICKET_VALIDITY: %w", err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("TICKET_VALIDITY must be positive, got %s", d)
		}
		cfg.TicketValidity = d
	}

	if cfg.PostgresURL == "" {
		return Config{}, fmt.Errorf("POSTGRES_URL is required")
	}
	if cfg.RedisAddr == "" {
		return Config{}, fmt.Errorf("REDIS_ADDR is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
