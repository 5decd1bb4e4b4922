package logger

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// New creates a structured JSON logger for the given service.
// Every entry carries the service name and hostname; callers attach an
// "action" field (e.g. "event_decode_failed") so log lines stay greppable.
func New(service string) *logrus.Entry {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	log.SetLevel(levelFromEnv())

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	return log.WithFields(logrus.Fields{
		"service":  service,
		"hostname": hostname,
	})
}

// levelFromEnv reads LOG_LEVEL; unknown or empty values fall back to info.
func levelFromEnv() logrus.Level {
	lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
