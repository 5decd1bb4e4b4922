package orderservice

import "quickeats/internal/domain/events"

// Order lifecycle statuses as stored and published.
const (
	StatusNew            = "NEW"
	StatusConfirmed      = "CONFIRMED"
	StatusPrepared       = "PREPARED"
	StatusOutForDelivery = "OUT_FOR_DELIVERY"
	StatusDelivered      = "DELIVERED"
	StatusCancelled      = "CANCELLED"
)

// Allowed state transitions. CANCELLED is reachable from every non-terminal
// state.
var allowed = map[string]map[string]bool{
	StatusNew:            {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed:      {StatusPrepared: true, StatusCancelled: true},
	StatusPrepared:       {StatusOutForDelivery: true, StatusCancelled: true},
	StatusOutForDelivery: {StatusDelivered: true, StatusCancelled: true},
	StatusDelivered:      {},
	StatusCancelled:      {},
}

// CanTransition checks whether from -> to is a legal lifecycle move.
func CanTransition(from, to string) bool {
	nexts := allowed[from]
	return nexts != nil && nexts[to]
}

// eventForStatus maps a reached status to the lifecycle event it emits.
var eventForStatus = map[string]events.Type{
	StatusNew:            events.TypeOrderCreated,
	StatusConfirmed:      events.TypeOrderConfirmed,
	StatusPrepared:       events.TypeOrderPrepared,
	StatusOutForDelivery: events.TypeOrderOutForDelivery,
	StatusDelivered:      events.TypeOrderDelivered,
	StatusCancelled:      events.TypeOrderCancelled,
}
