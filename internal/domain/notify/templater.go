package notify

import (
	"fmt"

	"quickeats/internal/domain/events"
)

// Rendered is the templater output for one event. Empty Title means no
// headline notification; empty TrackingMessage means no tracking frame.
type Rendered struct {
	Title             string
	Body              string
	Priority          Priority
	TrackingMessage   string
	EstimatedDelivery string
}

// Render maps an event to user-facing copy. Pure and deterministic: the same
// event always yields the same output. Amount formatting is fixed two-decimal
// and locale-independent.
func Render(e events.OrderEvent) Rendered {
	switch e.EventType {
	case events.TypeOrderCreated:
		return Rendered{
			Title: "Order Placed Successfully!",
			Body: fmt.Sprintf(
				"Hi! Your order #%d has been placed successfully. Total amount: $%s. We'll notify you once it's confirmed!",
				e.OrderID, e.TotalAmount.StringFixed(2)),
			Priority: PriorityLow,
			TrackingMessage: fmt.Sprintf(
				"Order #%d placed successfully. Restaurant is preparing your order.", e.OrderID),
			EstimatedDelivery: "45-60 minutes",
		}

	case events.TypeOrderConfirmed:
		return Rendered{
			Title: "Order Confirmed!",
			Body: fmt.Sprintf(
				"Great news! Your order #%d has been confirmed and is being prepared. Estimated delivery time: 30-45 minutes.",
				e.OrderID),
			Priority: PriorityLow,
			TrackingMessage: fmt.Sprintf(
				"Order #%d confirmed! The restaurant is now preparing your meal.", e.OrderID),
			EstimatedDelivery: "30-45 minutes",
		}

	case events.TypeOrderPrepared:
		// tracking-only, no headline
		return Rendered{
			Priority: PriorityLow,
			TrackingMessage: fmt.Sprintf(
				"Order #%d has been prepared and is awaiting pickup by a delivery partner.", e.OrderID),
			EstimatedDelivery: "15-25 minutes",
		}

	case events.TypeOrderOutForDelivery:
		return Rendered{
			Title: "Out for Delivery!",
			Body: fmt.Sprintf(
				"Your order #%d is out for delivery! Your food will arrive soon at %s",
				e.OrderID, e.DeliveryAddress),
			Priority: PriorityMedium,
			TrackingMessage: fmt.Sprintf(
				"Your order is on the way! Delivery partner has picked up order #%d and is heading to %s",
				e.OrderID, e.DeliveryAddress),
			EstimatedDelivery: "10-15 minutes",
		}

	case events.TypeOrderDelivered:
		return Rendered{
			Title: "Order Delivered!",
			Body: fmt.Sprintf(
				"Your order #%d has been delivered! Thank you for ordering with us. Enjoy your meal!",
				e.OrderID),
			Priority: PriorityMedium,
			TrackingMessage: fmt.Sprintf(
				"Order #%d delivered successfully! Hope you enjoy your meal. Please rate your experience!",
				e.OrderID),
			EstimatedDelivery: "Delivered",
		}

	case events.TypeOrderCancelled:
		// No tracking frame for a cancelled order; the headline carries the refund note.
		return Rendered{
			Title: "Order Cancelled",
			Body: fmt.Sprintf(
				"Unfortunately, your order #%d has been cancelled. If you were charged, the refund will be processed within 3-5 business days.",
				e.OrderID),
			Priority: PriorityHigh,
		}

	default:
		return Rendered{EstimatedDelivery: "Unknown"}
	}
}
