package kafka

import (
	"context"

	"github.com/pkg/errors"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"quickeats/internal/domain/events"
	"quickeats/internal/shared/config"
)

// Producer publishes order events keyed by user id, so one user's events keep
// partition affinity and arrive in order.
type Producer struct {
	writer *kafkago.Writer
	log    *logrus.Entry
}

// NewProducer builds a producer for the configured topic.
func NewProducer(cfg config.Bus, log *logrus.Entry) *Producer {
	writer := &kafkago.Writer{
		Addr:     kafkago.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafkago.Hash{},
	}
	return &Producer{writer: writer, log: log}
}

// PublishOrderEvent encodes and writes one event.
func (p *Producer) PublishOrderEvent(ctx context.Context, e events.OrderEvent) error {
	value, err := events.Encode(e)
	if err != nil {
		return err
	}

	err = p.writer.WriteMessages(ctx, kafkago.Message{Key: e.Key(), Value: value})
	if err != nil {
		return errors.Wrap(err, "publish order event")
	}

	p.log.WithFields(map[string]any{
		"action":     "event_published",
		"order_id":   e.OrderID,
		"user_id":    e.UserID,
		"event_type": string(e.EventType),
	}).Info("order event published")
	return nil
}

// Close flushes and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
