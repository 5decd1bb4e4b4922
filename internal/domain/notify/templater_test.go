package notify

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"quickeats/internal/domain/events"
)

func sampleEvent(typ events.Type) events.OrderEvent {
	return events.OrderEvent{
		OrderID:         42,
		UserID:          7,
		RestaurantID:    3,
		TotalAmount:     decimal.RequireFromString("18.5"),
		Status:          "NEW",
		DeliveryAddress: "1 Main St",
		EventType:       typ,
	}
}

func TestRender(t *testing.T) {
	t.Run("order created", func(t *testing.T) {
		r := Render(sampleEvent(events.TypeOrderCreated))
		require.Equal(t, "Order Placed Successfully!", r.Title)
		require.Contains(t, r.Body, "#42")
		require.Contains(t, r.Body, "$18.50")
		require.Equal(t, PriorityLow, r.Priority)
		require.Contains(t, r.TrackingMessage, "Order #42 placed successfully")
		require.Equal(t, "45-60 minutes", r.EstimatedDelivery)
	})

	t.Run("order confirmed", func(t *testing.T) {
		r := Render(sampleEvent(events.TypeOrderConfirmed))
		require.Equal(t, "Order Confirmed!", r.Title)
		require.Contains(t, r.Body, "30-45 minutes")
		require.Equal(t, PriorityLow, r.Priority)
		require.Equal(t, "30-45 minutes", r.EstimatedDelivery)
	})

	t.Run("order prepared is tracking-only", func(t *testing.T) {
		r := Render(sampleEvent(events.TypeOrderPrepared))
		require.Empty(t, r.Title)
		require.Empty(t, r.Body)
		require.NotEmpty(t, r.TrackingMessage)
		require.Equal(t, "15-25 minutes", r.EstimatedDelivery)
	})

	t.Run("out for delivery", func(t *testing.T) {
		r := Render(sampleEvent(events.TypeOrderOutForDelivery))
		require.Equal(t, "Out for Delivery!", r.Title)
		require.Contains(t, r.Body, "1 Main St")
		require.Equal(t, PriorityMedium, r.Priority)
		require.Contains(t, r.TrackingMessage, "heading to 1 Main St")
		require.Equal(t, "10-15 minutes", r.EstimatedDelivery)
	})

	t.Run("delivered", func(t *testing.T) {
		r := Render(sampleEvent(events.TypeOrderDelivered))
		require.Equal(t, "Order Delivered!", r.Title)
		require.Equal(t, PriorityMedium, r.Priority)
		require.Equal(t, "Delivered", r.EstimatedDelivery)
	})

	t.Run("cancelled has no tracking", func(t *testing.T) {
		r := Render(sampleEvent(events.TypeOrderCancelled))
		require.Equal(t, "Order Cancelled", r.Title)
		require.Contains(t, r.Body, "refund")
		require.Contains(t, r.Body, "3-5 business days")
		require.Equal(t, PriorityHigh, r.Priority)
		require.Empty(t, r.TrackingMessage)
		require.Empty(t, r.EstimatedDelivery)
	})

	t.Run("unknown renders nothing", func(t *testing.T) {
		r := Render(sampleEvent("ORDER_REFUNDED"))
		require.Empty(t, r.Title)
		require.Empty(t, r.TrackingMessage)
		require.Equal(t, "Unknown", r.EstimatedDelivery)
	})

	t.Run("deterministic", func(t *testing.T) {
		e := sampleEvent(events.TypeOrderCreated)
		first := Render(e)
		for i := 0; i < 100; i++ {
			require.Equal(t, first, Render(e))
		}
	})

	t.Run("amount formatting is fixed two-decimal", func(t *testing.T) {
		e := sampleEvent(events.TypeOrderCreated)
		e.TotalAmount = decimal.RequireFromString("7")
		require.Contains(t, Render(e).Body, "$7.00")

		e.TotalAmount = decimal.RequireFromString("1234.5")
		require.Contains(t, Render(e).Body, "$1234.50")
	})
}
