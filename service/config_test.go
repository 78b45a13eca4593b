package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("POSTGRES_URL", "postgres://localhost/db")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("TICKET_VALIDITY", "")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 365*24*time.Hour, cfg.TicketValidity)
}

func TestConfigFromEnv_ticket_validity(t *testing.T) {
	t.Setenv("POSTGRES_URL", "postgres://localhost/db")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	t.Setenv("TICKET_VALIDITY", "720h")
	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 720*time.Hour, cfg.TicketValidity)

	for _, v := range []string{"soon", "-1h", "0s"} {
		t.Setenv("TICKET_VALIDITY", v)
		_, err := ConfigFromEnv()
		assert.Error(t, err, v)
	}
}

func TestConfigFromEnv_required(t *testing.T) {
	t.Setenv("POSTGRES_URL", "")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	_, err := ConfigFromEnv()
	assert.ErrorContains(t, err, "POSTGRES_URL")

	t.Setenv("POSTGRES_URL", "postgres://localhost/db")
	t.Setenv("REDIS_ADDR", "")

	_, err = ConfigFromEnv()
	assert.ErrorContains(t, err, "REDIS_ADDR")
}
