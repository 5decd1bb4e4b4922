package ws

// Control frame destinations (client -> server).
const (
	ControlConnect   = "app/connect"
	ControlSubscribe = "app/subscribe"
	ControlTrack     = "app/track-order"
)

// Server frame destinations. Per-user queues are addressed as
// user/{userId}/{queue}.
const (
	QueueNotifications    = "queue/notifications"
	QueueDeliveryTracking = "queue/delivery-tracking"
	TopicAnnouncements    = "topic/announcements"
	StatusSubscribeAck    = "status/subscribe-ack"
	statusWelcome         = "status/welcome"
)

// UserDestination builds the per-user form of a queue destination.
func UserDestination(userID, queue string) string {
	return "user/" + userID + "/" + queue
}

// ControlFrame is a client-to-server control message. The transport trusts
// the presented userId; it performs no authentication of its own.
type ControlFrame struct {
	Destination string `json:"destination"`
	UserID      string `json:"userId,omitempty"`
	OrderID     string `json:"orderId,omitempty"`
}

// Frame is a server-to-client message: a payload addressed to one logical
// destination.
type Frame struct {
	Destination string `json:"destination"`
	Payload     any    `json:"payload"`
}

type subscribeAck struct {
	Status  string `json:"status"`
	UserID  string `json:"userId"`
	Message string `json:"message"`
}
