package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var recognizedVars = []string{
	"BUS_BROKERS", "BUS_GROUP_ID", "BUS_TOPIC",
	"TRANSPORT_LISTEN", "TRANSPORT_MAX_SESSIONS", "TRANSPORT_SEND_QUEUE",
	"OUTBOUND_TIMEOUT_MS", "OUTBOUND_AMQP_URL",
	"HTTP_LISTEN", "DATABASE_URL",
}

// clearEnv detaches the test from the developer's real environment.
// t.Setenv registers the restore; Unsetenv makes the variable truly absent.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range recognizedVars {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, []string{"localhost:9092"}, cfg.Bus.Brokers)
	require.Equal(t, "notification-service", cfg.Bus.GroupID)
	require.Equal(t, "order-events", cfg.Bus.Topic)
	require.Equal(t, ":8084", cfg.Transport.Listen)
	require.Equal(t, 10000, cfg.Transport.MaxSessions)
	require.Equal(t, 128, cfg.Transport.SendQueue)
	require.Equal(t, 250*time.Millisecond, cfg.Outbound.Timeout())
	require.Empty(t, cfg.Outbound.AMQPURL)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BUS_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("BUS_TOPIC", "order-events-staging")
	t.Setenv("TRANSPORT_SEND_QUEUE", "64")
	t.Setenv("OUTBOUND_TIMEOUT_MS", "500")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Bus.Brokers)
	require.Equal(t, "order-events-staging", cfg.Bus.Topic)
	require.Equal(t, 64, cfg.Transport.SendQueue)
	require.Equal(t, 500*time.Millisecond, cfg.Outbound.Timeout())
}

func TestLoadValidation(t *testing.T) {
	t.Run("rejects non-positive send queue", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("TRANSPORT_SEND_QUEUE", "0")
		_, err := Load()
		require.Error(t, err)
		require.Contains(t, err.Error(), "TRANSPORT_SEND_QUEUE")
	})

	t.Run("rejects non-positive outbound budget", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OUTBOUND_TIMEOUT_MS", "-5")
		_, err := Load()
		require.Error(t, err)
		require.Contains(t, err.Error(), "OUTBOUND_TIMEOUT_MS")
	})
}
