package notificationservice

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"quickeats/internal/domain/notify"
	"quickeats/internal/shared/rabbitmq"
)

// OutboundChannel is the abstract email/SMS/push side effect invoked after the
// live-channel frames for an event have been enqueued. Implementations must
// honour ctx cancellation; the dispatcher abandons calls that exceed its
// budget.
type OutboundChannel interface {
	Send(ctx context.Context, userID int64, subject, body string) error
}

// LogOutbound is the default outbound channel: it only logs what a real
// gateway integration would send.
type LogOutbound struct {
	log *logrus.Entry
}

// NewLogOutbound creates the logging outbound channel.
func NewLogOutbound(log *logrus.Entry) *LogOutbound {
	return &LogOutbound{log: log}
}

// Send logs the would-be notification and returns immediately.
func (o *LogOutbound) Send(_ context.Context, userID int64, subject, body string) error {
	o.log.WithFields(map[string]any{
		"action":  "outbound_sent",
		"user_id": userID,
		"subject": subject,
		"body":    body,
	}).Info("outbound notification sent")
	return nil
}

// AMQPOutbound publishes outbound notifications to a fanout exchange so
// gateway workers (email, SMS, push) can each consume their own copy.
type AMQPOutbound struct {
	client *rabbitmq.Client
	clock  notify.Clock
}

// NewAMQPOutbound creates the AMQP-backed outbound channel.
func NewAMQPOutbound(client *rabbitmq.Client, clock notify.Clock) *AMQPOutbound {
	return &AMQPOutbound{client: client, clock: clock}
}

type outboundMessage struct {
	UserID    int64  `json:"userId"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"`
}

// Send publishes the notification to the fanout exchange.
func (o *AMQPOutbound) Send(ctx context.Context, userID int64, subject, body string) error {
	msg, err := json.Marshal(outboundMessage{
		UserID:    userID,
		Subject:   subject,
		Body:      body,
		Timestamp: notify.FormatTimestamp(o.clock.Now()),
	})
	if err != nil {
		return errors.Wrap(err, "encode outbound message")
	}
	return o.client.Publish(ctx, msg)
}
