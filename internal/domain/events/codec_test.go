package events

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Run("should decode a full event", func(t *testing.T) {
		raw := []byte(`{
			"orderId": 42,
			"userId": 7,
			"restaurantId": 3,
			"totalAmount": 18.50,
			"status": "NEW",
			"deliveryAddress": "1 Main St",
			"createdAt": "2026-08-31T12:00:00",
			"eventType": "ORDER_CREATED"
		}`)

		e, err := Decode(raw)
		require.NoError(t, err)
		require.Equal(t, int64(42), e.OrderID)
		require.Equal(t, int64(7), e.UserID)
		require.Equal(t, int64(3), e.RestaurantID)
		require.True(t, e.TotalAmount.Equal(decimal.RequireFromString("18.50")))
		require.Equal(t, "NEW", e.Status)
		require.Equal(t, "1 Main St", e.DeliveryAddress)
		require.Equal(t, TypeOrderCreated, e.EventType)
		require.Equal(t, time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC), e.CreatedAt.Time)
	})

	t.Run("should ignore unknown fields", func(t *testing.T) {
		raw := []byte(`{
			"orderId": 1, "userId": 2, "restaurantId": 3,
			"totalAmount": 0, "status": "NEW", "deliveryAddress": "a",
			"eventType": "ORDER_CREATED",
			"couponCode": "WELCOME10", "extra": {"nested": true}
		}`)

		_, err := Decode(raw)
		require.NoError(t, err)
	})

	t.Run("should fail on missing required fields", func(t *testing.T) {
		raw := []byte(`{"orderId": 1, "totalAmount": 5.00, "eventType": "ORDER_CREATED"}`)

		_, err := Decode(raw)
		require.ErrorIs(t, err, ErrMissingField)
		require.Contains(t, err.Error(), "userId")
		require.Contains(t, err.Error(), "deliveryAddress")
	})

	t.Run("should fail on malformed JSON", func(t *testing.T) {
		_, err := Decode([]byte(`{"orderId": `))
		require.Error(t, err)
	})

	t.Run("should fail on negative amount", func(t *testing.T) {
		raw := []byte(`{
			"orderId": 1, "userId": 2, "restaurantId": 3,
			"totalAmount": -1.00, "status": "NEW", "deliveryAddress": "a",
			"eventType": "ORDER_CREATED"
		}`)

		_, err := Decode(raw)
		require.Error(t, err)
	})

	t.Run("should accept unknown event types", func(t *testing.T) {
		raw := []byte(`{
			"orderId": 1, "userId": 2, "restaurantId": 3,
			"totalAmount": 1.00, "status": "NEW", "deliveryAddress": "a",
			"eventType": "ORDER_REFUNDED"
		}`)

		e, err := Decode(raw)
		require.NoError(t, err)
		require.False(t, e.EventType.Known())
	})

	t.Run("should accept RFC3339 createdAt", func(t *testing.T) {
		raw := []byte(`{
			"orderId": 1, "userId": 2, "restaurantId": 3,
			"totalAmount": 1.00, "status": "NEW", "deliveryAddress": "a",
			"createdAt": "2026-08-31T12:00:00Z",
			"eventType": "ORDER_CREATED"
		}`)

		e, err := Decode(raw)
		require.NoError(t, err)
		require.Equal(t, 2026, e.CreatedAt.Year())
	})
}

func TestEncode(t *testing.T) {
	e := OrderEvent{
		OrderID:         42,
		UserID:          7,
		RestaurantID:    3,
		TotalAmount:     decimal.RequireFromString("18.50"),
		Status:          "NEW",
		DeliveryAddress: "1 Main St",
		CreatedAt:       Timestamp{Time: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)},
		EventType:       TypeOrderCreated,
	}

	b, err := Encode(e)
	require.NoError(t, err)
	require.Contains(t, string(b), `"createdAt":"2026-08-31T12:00:00"`)

	decoded, err := Decode(b)
	require.NoError(t, err)
	require.Equal(t, e.OrderID, decoded.OrderID)
	require.True(t, e.TotalAmount.Equal(decoded.TotalAmount))
}

func TestKey(t *testing.T) {
	e := OrderEvent{UserID: 7}
	require.Equal(t, []byte("7"), e.Key())
}

func TestTypeKnown(t *testing.T) {
	for _, typ := range []Type{
		TypeOrderCreated, TypeOrderConfirmed, TypeOrderPrepared,
		TypeOrderOutForDelivery, TypeOrderDelivered, TypeOrderCancelled,
	} {
		require.True(t, typ.Known(), string(typ))
	}
	require.False(t, Type("ORDER_REFUNDED").Known())
	require.False(t, Type("").Known())
}
