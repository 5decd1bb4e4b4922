package notificationservice

import (
	"context"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"quickeats/internal/domain/events"
	"quickeats/internal/domain/notify"
	"quickeats/internal/ws"
)

// Publisher is the live-channel surface the dispatcher needs. *ws.Transport
// implements it.
type Publisher interface {
	SendToUser(userID, queue string, payload any) int
	Broadcast(payload any)
}

// Dispatcher turns consumed order events into live frames and an outbound
// side effect. It is stateless with respect to the order lifecycle: it reacts
// to whatever event it sees, in arrival order, even if the producer emitted
// out of order.
type Dispatcher struct {
	transport       Publisher
	outbound        OutboundChannel
	clock           notify.Clock
	log             *logrus.Entry
	outboundTimeout time.Duration
}

// NewDispatcher wires a dispatcher. A non-positive timeout takes the 250 ms
// default.
func NewDispatcher(transport Publisher, outbound OutboundChannel, clock notify.Clock, log *logrus.Entry, outboundTimeout time.Duration) *Dispatcher {
	if clock == nil {
		clock = notify.UTC()
	}
	if outboundTimeout <= 0 {
		outboundTimeout = 250 * time.Millisecond
	}
	return &Dispatcher{
		transport:       transport,
		outbound:        outbound,
		clock:           clock,
		log:             log,
		outboundTimeout: outboundTimeout,
	}
}

// Handle dispatches one event. Ordering is fixed: headline notification, then
// tracking update, then the outbound side channel, so clients always observe
// the headline before the detail. Errors never abort the live-channel path.
func (d *Dispatcher) Handle(ctx context.Context, e events.OrderEvent) error {
	if !e.EventType.Known() {
		d.log.WithFields(map[string]any{
			"action":     "event_type_unknown",
			"event_type": string(e.EventType),
			"order_id":   e.OrderID,
		}).Info("dropping event with unknown type")
		return nil
	}

	rendered := notify.Render(e)
	userID := strconv.FormatInt(e.UserID, 10)

	if rendered.Title != "" {
		payload := notify.NewOrderNotification(d.clock, e, rendered.Title, rendered.Body, rendered.Priority)
		delivered := d.transport.SendToUser(userID, ws.QueueNotifications, payload)
		d.log.WithFields(map[string]any{
			"action":    "notification_sent",
			"user_id":   e.UserID,
			"order_id":  e.OrderID,
			"title":     rendered.Title,
			"delivered": delivered,
		}).Info("live notification fanned out")
	}

	if rendered.TrackingMessage != "" {
		payload := notify.NewDeliveryTracking(d.clock, e, rendered.TrackingMessage, rendered.EstimatedDelivery, rendered.Priority)
		delivered := d.transport.SendToUser(userID, ws.QueueDeliveryTracking, payload)
		d.log.WithFields(map[string]any{
			"action":    "tracking_sent",
			"user_id":   e.UserID,
			"order_id":  e.OrderID,
			"delivered": delivered,
		}).Info("delivery tracking fanned out")
	}

	if rendered.Title != "" {
		d.sendOutbound(ctx, e.UserID, rendered.Title, rendered.Body)
	}

	return nil
}

// Broadcast sends an announcement to every connected client.
func (d *Dispatcher) Broadcast(title, message string) {
	d.transport.Broadcast(notify.NewBroadcast(d.clock, title, message))
	d.log.WithFields(map[string]any{
		"action": "broadcast_sent",
		"title":  title,
	}).Info("broadcast announcement sent")
}

// sendOutbound invokes the side channel with the configured budget. On
// timeout the call is abandoned - the goroutine finishes in the background
// once the implementation notices the cancelled context.
func (d *Dispatcher) sendOutbound(ctx context.Context, userID int64, subject, body string) {
	cctx, cancel := context.WithTimeout(ctx, d.outboundTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- d.outbound.Send(cctx, userID, subject, body)
	}()

	select {
	case err := <-done:
		if err != nil {
			d.log.WithFields(map[string]any{
				"action":  "outbound_failed",
				"user_id": userID,
				"subject": subject,
			}).WithError(err).Warn("outbound channel failed")
		}
	case <-cctx.Done():
		d.log.WithFields(map[string]any{
			"action":  "outbound_timeout",
			"user_id": userID,
			"subject": subject,
			"budget":  d.outboundTimeout.String(),
		}).Warn("outbound channel exceeded budget, abandoned")
	}
}
