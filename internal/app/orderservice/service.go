package orderservice

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"quickeats/internal/domain/events"
	"quickeats/internal/domain/notify"
	"quickeats/internal/shared/postgres"
)

// Validation and lifecycle errors callers branch on.
var (
	ErrInvalidOrder      = errors.New("invalid order")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConcurrentUpdate  = errors.New("order was updated concurrently")
)

// OrderStore is the persistence surface the service needs.
type OrderStore interface {
	Create(ctx context.Context, order *postgres.Order) error
	Get(ctx context.Context, id int64) (*postgres.Order, error)
	UpdateStatus(ctx context.Context, id int64, expected, next string) (bool, error)
}

// EventPublisher emits lifecycle events to the bus.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, e events.OrderEvent) error
}

// Service persists orders and publishes a lifecycle event for every change.
// Event publication is fire-and-forget: a bus hiccup never rolls back the
// store, it is logged and the order stands.
type Service struct {
	store     OrderStore
	publisher EventPublisher
	clock     notify.Clock
	log       *logrus.Entry
}

// New wires the order service.
func New(store OrderStore, publisher EventPublisher, clock notify.Clock, log *logrus.Entry) *Service {
	if clock == nil {
		clock = notify.UTC()
	}
	return &Service{store: store, publisher: publisher, clock: clock, log: log}
}

// PlaceOrderCommand carries the validated request body.
type PlaceOrderCommand struct {
	UserID          int64
	RestaurantID    int64
	TotalAmount     decimal.Decimal
	DeliveryAddress string
}

// PlaceOrder validates, stores a NEW order, and emits ORDER_CREATED.
func (s *Service) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (*postgres.Order, error) {
	if cmd.UserID <= 0 {
		return nil, errors.Wrap(ErrInvalidOrder, "userId must be positive")
	}
	if cmd.RestaurantID <= 0 {
		return nil, errors.Wrap(ErrInvalidOrder, "restaurantId must be positive")
	}
	if cmd.TotalAmount.IsNegative() {
		return nil, errors.Wrap(ErrInvalidOrder, "totalAmount must be >= 0")
	}
	cmd.DeliveryAddress = strings.TrimSpace(cmd.DeliveryAddress)
	if cmd.DeliveryAddress == "" {
		return nil, errors.Wrap(ErrInvalidOrder, "deliveryAddress is required")
	}

	order := &postgres.Order{
		UserID:          cmd.UserID,
		RestaurantID:    cmd.RestaurantID,
		TotalAmount:     cmd.TotalAmount,
		Status:          StatusNew,
		DeliveryAddress: cmd.DeliveryAddress,
	}
	if err := s.store.Create(ctx, order); err != nil {
		s.log.WithField("action", "order_create_failed").WithError(err).Error("failed to store order")
		return nil, err
	}

	s.publish(ctx, order, StatusNew)
	return order, nil
}

// GetOrder fetches an order by id.
func (s *Service) GetOrder(ctx context.Context, id int64) (*postgres.Order, error) {
	return s.store.Get(ctx, id)
}

// UpdateStatus moves an order along its lifecycle and emits the matching
// event. Concurrent updates lose the compare-and-swap and get
// ErrConcurrentUpdate.
func (s *Service) UpdateStatus(ctx context.Context, id int64, next string) (*postgres.Order, error) {
	order, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanTransition(order.Status, next) {
		return nil, errors.Wrapf(ErrInvalidTransition, "%s -> %s", order.Status, next)
	}

	ok, err := s.store.UpdateStatus(ctx, id, order.Status, next)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConcurrentUpdate
	}

	order.Status = next
	s.publish(ctx, order, next)
	return order, nil
}

func (s *Service) publish(ctx context.Context, order *postgres.Order, status string) {
	e := events.OrderEvent{
		OrderID:         order.ID,
		UserID:          order.UserID,
		RestaurantID:    order.RestaurantID,
		TotalAmount:     order.TotalAmount,
		Status:          status,
		DeliveryAddress: order.DeliveryAddress,
		CreatedAt:       events.Timestamp{Time: s.clock.Now()},
		EventType:       eventForStatus[status],
	}
	if err := s.publisher.PublishOrderEvent(ctx, e); err != nil {
		s.log.WithFields(map[string]any{
			"action":   "event_publish_failed",
			"order_id": order.ID,
			"status":   status,
		}).WithError(err).Warn("lifecycle event not published")
	}
}
