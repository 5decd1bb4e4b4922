package events

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Type tags an order lifecycle event.
type Type string

const (
	TypeOrderCreated        Type = "ORDER_CREATED"
	TypeOrderConfirmed      Type = "ORDER_CONFIRMED"
	TypeOrderPrepared       Type = "ORDER_PREPARED"
	TypeOrderOutForDelivery Type = "ORDER_OUT_FOR_DELIVERY"
	TypeOrderDelivered      Type = "ORDER_DELIVERED"
	TypeOrderCancelled      Type = "ORDER_CANCELLED"
)

// Known reports whether the type is part of the order lifecycle. Events with
// unknown types are logged and dropped, never dispatched.
func (t Type) Known() bool {
	switch t {
	case TypeOrderCreated, TypeOrderConfirmed, TypeOrderPrepared,
		TypeOrderOutForDelivery, TypeOrderDelivered, TypeOrderCancelled:
		return true
	}
	return false
}

// OrderEvent is the record the order service emits on every lifecycle change.
// It is immutable once decoded.
type OrderEvent struct {
	OrderID         int64           `json:"orderId"`
	UserID          int64           `json:"userId"`
	RestaurantID    int64           `json:"restaurantId"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Status          string          `json:"status"`
	DeliveryAddress string          `json:"deliveryAddress"`
	CreatedAt       Timestamp       `json:"createdAt"`
	EventType       Type            `json:"eventType"`
}

// Key returns the bus message key: the user id in string form, so all events
// for one user land on the same partition.
func (e OrderEvent) Key() []byte {
	return []byte(strconv.FormatInt(e.UserID, 10))
}

// Timestamp marshals as ISO-8601 local date-time without an offset
// ("2006-01-02T15:04:05"); the process runs in UTC so no drift is possible.
// Unmarshalling also accepts RFC 3339 for producers that include an offset.
type Timestamp struct {
	time.Time
}

const timestampLayout = "2006-01-02T15:04:05"

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.UTC().Format(timestampLayout))), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return err
	}
	if parsed, err := time.Parse(timestampLayout, s); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	t.Time = parsed.UTC()
	return nil
}
