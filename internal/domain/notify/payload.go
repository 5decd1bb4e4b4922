package notify

import (
	"github.com/shopspring/decimal"

	"quickeats/internal/domain/events"
)

// Priority ranks a notification for the client UI.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// PayloadKind is the discriminator on every server-to-client payload.
type PayloadKind string

const (
	KindOrderNotification PayloadKind = "ORDER_NOTIFICATION"
	KindDeliveryTracking  PayloadKind = "DELIVERY_TRACKING"
	KindBroadcast         PayloadKind = "BROADCAST"
	KindWelcome           PayloadKind = "WELCOME"
)

// Payload is one variant of the tagged union sent over the live channel.
type Payload interface {
	Kind() PayloadKind
}

// OrderNotification is the headline message for a lifecycle event.
type OrderNotification struct {
	Type         PayloadKind     `json:"type"`
	Title        string          `json:"title"`
	Message      string          `json:"message"`
	EventType    events.Type     `json:"eventType"`
	OrderID      int64           `json:"orderId"`
	RestaurantID int64           `json:"restaurantId"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Status       string          `json:"status"`
	Priority     Priority        `json:"priority"`
	Timestamp    string          `json:"timestamp"`
}

func (OrderNotification) Kind() PayloadKind { return KindOrderNotification }

// DeliveryTracking is the courier-style progress message for an event.
type DeliveryTracking struct {
	Type            PayloadKind `json:"type"`
	OrderID         int64       `json:"orderId"`
	Status          string      `json:"status"`
	EventType       events.Type `json:"eventType"`
	Message         string      `json:"message"`
	DeliveryAddress string      `json:"deliveryAddress"`
	EstimatedTime   string      `json:"estimatedTime"`
	Priority        Priority    `json:"priority"`
	Timestamp       string      `json:"timestamp"`
}

func (DeliveryTracking) Kind() PayloadKind { return KindDeliveryTracking }

// Broadcast goes to every connected client.
type Broadcast struct {
	Type      PayloadKind `json:"type"`
	Title     string      `json:"title"`
	Message   string      `json:"message"`
	Priority  Priority    `json:"priority"`
	Timestamp string      `json:"timestamp"`
}

func (Broadcast) Kind() PayloadKind { return KindBroadcast }

// Welcome greets a session right after an app/connect control frame.
type Welcome struct {
	Type      PayloadKind `json:"type"`
	Message   string      `json:"message"`
	Timestamp string      `json:"timestamp"`
}

func (Welcome) Kind() PayloadKind { return KindWelcome }

// NewOrderNotification builds the headline payload for an event.
func NewOrderNotification(clock Clock, e events.OrderEvent, title, message string, priority Priority) OrderNotification {
	return OrderNotification{
		Type:         KindOrderNotification,
		Title:        title,
		Message:      message,
		EventType:    e.EventType,
		OrderID:      e.OrderID,
		RestaurantID: e.RestaurantID,
		TotalAmount:  e.TotalAmount,
		Status:       e.Status,
		Priority:     priority,
		Timestamp:    FormatTimestamp(clock.Now()),
	}
}

// NewDeliveryTracking builds the tracking payload for an event.
func NewDeliveryTracking(clock Clock, e events.OrderEvent, message, estimatedTime string, priority Priority) DeliveryTracking {
	return DeliveryTracking{
		Type:            KindDeliveryTracking,
		OrderID:         e.OrderID,
		Status:          e.Status,
		EventType:       e.EventType,
		Message:         message,
		DeliveryAddress: e.DeliveryAddress,
		EstimatedTime:   estimatedTime,
		Priority:        priority,
		Timestamp:       FormatTimestamp(clock.Now()),
	}
}

// NewBroadcast builds an announcement for all clients.
func NewBroadcast(clock Clock, title, message string) Broadcast {
	return Broadcast{
		Type:      KindBroadcast,
		Title:     title,
		Message:   message,
		Priority:  PriorityLow,
		Timestamp: FormatTimestamp(clock.Now()),
	}
}

// NewWelcome builds the connect greeting.
func NewWelcome(clock Clock) Welcome {
	return Welcome{
		Type:      KindWelcome,
		Message:   "Connected to live notifications",
		Timestamp: FormatTimestamp(clock.Now()),
	}
}
