package kafka

import (
	"context"
	"io"

	"github.com/pkg/errors"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"quickeats/internal/domain/events"
	"quickeats/internal/shared/config"
)

// defaultBuffer bounds how many fetched-but-undispatched messages the
// consumer holds per run; further polling pauses until the dispatcher drains.
const defaultBuffer = 256

// Handler receives decoded events synchronously, in per-partition order.
type Handler func(ctx context.Context, e events.OrderEvent) error

// fetcher is the slice of kafka.Reader the consumer uses; tests inject fakes.
type fetcher interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Consumer pulls order events from the bus with consumer-group semantics and
// hands them to the handler one at a time. Delivery to clients is
// at-most-once: poison messages and handler errors are logged and the offset
// advances either way, so one bad event never stalls a partition.
type Consumer struct {
	reader fetcher
	handle Handler
	log    *logrus.Entry
	buffer int
}

// NewConsumer builds a consumer for the configured topic and group.
func NewConsumer(cfg config.Bus, handle Handler, log *logrus.Entry) *Consumer {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: reader, handle: handle, log: log, buffer: defaultBuffer}
}

// Run fetches and dispatches until ctx is cancelled, then drains in-flight
// messages, commits their offsets, and closes the reader. Fetching and
// dispatching are decoupled by a bounded buffer so a slow fan-out
// back-pressures the poll loop instead of growing memory.
func (c *Consumer) Run(ctx context.Context) error {
	buffered := make(chan kafkago.Message, c.buffer)

	go func() {
		defer close(buffered)
		for {
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
					return
				}
				c.log.WithField("action", "bus_fetch_failed").WithError(err).Error("fetch from bus failed")
				return
			}
			select {
			case buffered <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	// commits must survive ctx cancellation so the drain is not lost
	commitCtx := context.WithoutCancel(ctx)

	for msg := range buffered {
		c.dispatch(ctx, msg)
		if err := c.reader.CommitMessages(commitCtx, msg); err != nil {
			c.log.WithField("action", "offset_commit_failed").WithError(err).Error("failed to commit offset")
		}
	}

	if err := c.reader.Close(); err != nil {
		return errors.Wrap(err, "close bus reader")
	}
	c.log.WithField("action", "consumer_stopped").Info("consumer drained and stopped")
	return nil
}

// dispatch decodes and hands off one message. Never returns an error: the
// offset advances regardless of the outcome.
func (c *Consumer) dispatch(ctx context.Context, msg kafkago.Message) {
	e, err := events.Decode(msg.Value)
	if err != nil {
		c.log.WithFields(map[string]any{
			"action":    "event_decode_failed",
			"partition": msg.Partition,
			"offset":    msg.Offset,
			"raw":       string(msg.Value),
		}).WithError(err).Warn("dropping undecodable event")
		return
	}

	if err := c.handle(ctx, e); err != nil {
		c.log.WithFields(map[string]any{
			"action":   "dispatch_failed",
			"order_id": e.OrderID,
			"user_id":  e.UserID,
		}).WithError(err).Error("dispatcher failed, offset advances anyway")
	}
}
