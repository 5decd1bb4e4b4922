package notificationservice

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"quickeats/internal/domain/events"
	"quickeats/internal/shared/logger"
	"quickeats/internal/ws"
)

// End-to-end over the real transport: a subscribed client observes the
// headline frame, then the tracking frame, for one consumed event.
func TestDispatchOverLiveTransport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := logger.New("test")

	registry := ws.NewRegistry()
	transport := ws.NewTransport(ws.Options{Registry: registry, Log: log})
	router := gin.New()
	transport.Mount(router)
	server := httptest.NewServer(router)
	defer server.Close()

	outbound := &fakeOutbound{}
	dispatcher := NewDispatcher(transport, outbound, nil, log, 250*time.Millisecond)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(ws.ControlFrame{Destination: ws.ControlSubscribe, UserID: "7"}))

	read := func() ws.Frame {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var frame ws.Frame
		require.NoError(t, conn.ReadJSON(&frame))
		return frame
	}
	require.Equal(t, ws.StatusSubscribeAck, read().Destination)

	require.NoError(t, dispatcher.Handle(context.Background(), sampleEvent(events.TypeOrderCreated)))

	headline := read()
	require.Equal(t, "user/7/queue/notifications", headline.Destination)
	payload := headline.Payload.(map[string]any)
	require.Equal(t, "ORDER_NOTIFICATION", payload["type"])
	require.Equal(t, "Order Placed Successfully!", payload["title"])
	require.Contains(t, payload["message"], "#42")
	require.Contains(t, payload["message"], "$18.50")

	tracking := read()
	require.Equal(t, "user/7/queue/delivery-tracking", tracking.Destination)
	trackingPayload := tracking.Payload.(map[string]any)
	require.Equal(t, "DELIVERY_TRACKING", trackingPayload["type"])
	require.Equal(t, "45-60 minutes", trackingPayload["estimatedTime"])

	require.Equal(t, 1, outbound.callCount())
}
