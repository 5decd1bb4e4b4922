package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds settings for all service modes. Values come from the
// environment (optionally seeded from a .env file); defaults match the
// documented configuration surface.
type Config struct {
	Bus       Bus
	Transport Transport
	Outbound  Outbound
	HTTP      HTTP
	Database  Database
}

// Bus configures the Kafka consumer/producer side.
type Bus struct {
	Brokers []string `envconfig:"BUS_BROKERS" default:"localhost:9092"`
	GroupID string   `envconfig:"BUS_GROUP_ID" default:"notification-service"`
	Topic   string   `envconfig:"BUS_TOPIC" default:"order-events"`
}

// Transport configures the live channel endpoint.
type Transport struct {
	Listen      string `envconfig:"TRANSPORT_LISTEN" default:":8084"`
	MaxSessions int    `envconfig:"TRANSPORT_MAX_SESSIONS" default:"10000"`
	SendQueue   int    `envconfig:"TRANSPORT_SEND_QUEUE" default:"128"`
}

// Outbound configures the email/SMS side channel.
type Outbound struct {
	TimeoutMs int    `envconfig:"OUTBOUND_TIMEOUT_MS" default:"250"`
	AMQPURL   string `envconfig:"OUTBOUND_AMQP_URL"` // empty means log-only outbound
}

// Timeout returns the outbound budget as a duration.
func (o Outbound) Timeout() time.Duration {
	return time.Duration(o.TimeoutMs) * time.Millisecond
}

// HTTP configures the order-service API listener.
type HTTP struct {
	Listen string `envconfig:"HTTP_LISTEN" default:":8081"`
}

// Database configures the order store.
type Database struct {
	URL string `envconfig:"DATABASE_URL"`
}

// Load reads a .env file if present, then the environment, applies defaults,
// and validates ranges.
func Load() (*Config, error) {
	_ = godotenv.Load() // best-effort; real env always wins

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate checks required fields and basic ranges.
func (c *Config) validate() error {
	var problems []string

	if len(c.Bus.Brokers) == 0 {
		problems = append(problems, "BUS_BROKERS must list at least one broker")
	}
	if c.Bus.GroupID == "" {
		problems = append(problems, "BUS_GROUP_ID is required")
	}
	if c.Bus.Topic == "" {
		problems = append(problems, "BUS_TOPIC is required")
	}
	if c.Transport.MaxSessions <= 0 {
		problems = append(problems, "TRANSPORT_MAX_SESSIONS must be > 0")
	}
	if c.Transport.SendQueue <= 0 {
		problems = append(problems, "TRANSPORT_SEND_QUEUE must be > 0")
	}
	if c.Outbound.TimeoutMs <= 0 {
		problems = append(problems, "OUTBOUND_TIMEOUT_MS must be > 0")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
