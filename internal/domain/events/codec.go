package events

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// ErrMissingField marks a decode failure caused by an absent required field.
var ErrMissingField = errors.New("order event: missing required field")

// Decode parses the wire form of an OrderEvent. Unknown fields are ignored;
// missing required fields fail the decode. An unrecognised eventType is NOT a
// decode failure - the dispatcher decides what to do with it.
func Decode(value []byte) (OrderEvent, error) {
	var e OrderEvent
	if err := json.Unmarshal(value, &e); err != nil {
		return OrderEvent{}, errors.Wrap(err, "decode order event")
	}

	var missing []string
	if e.OrderID == 0 {
		missing = append(missing, "orderId")
	}
	if e.UserID == 0 {
		missing = append(missing, "userId")
	}
	if e.RestaurantID == 0 {
		missing = append(missing, "restaurantId")
	}
	if e.Status == "" {
		missing = append(missing, "status")
	}
	if e.DeliveryAddress == "" {
		missing = append(missing, "deliveryAddress")
	}
	if e.EventType == "" {
		missing = append(missing, "eventType")
	}
	if len(missing) > 0 {
		return OrderEvent{}, errors.Wrap(ErrMissingField, strings.Join(missing, ", "))
	}

	if e.TotalAmount.IsNegative() {
		return OrderEvent{}, errors.New("decode order event: totalAmount must be >= 0")
	}

	return e, nil
}

// Encode serializes an OrderEvent for publication.
func Encode(e OrderEvent) ([]byte, error) {
	b, err := json.Marshal(e)
	return b, errors.Wrap(err, "encode order event")
}
