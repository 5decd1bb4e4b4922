package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"quickeats/internal/domain/notify"
)

// ErrTooManySessions is returned when the session cap is reached.
var ErrTooManySessions = errors.New("ws: session limit reached")

// Options configures the transport. Zero values take the documented defaults.
type Options struct {
	Registry    *Registry
	Clock       notify.Clock
	Log         *logrus.Entry
	MaxSessions int
	SendQueue   int
	DropWait    time.Duration
	MaxDrops    int
}

// Transport is the session-oriented live channel: it accepts websocket
// connections on /ws (any origin, including non-browser clients), serves a
// long-poll fallback under /ws/fallback, routes control frames, and delivers
// server payloads to per-user queues or to everyone.
//
// The transport does not authenticate: the userId presented in a subscribe
// frame is taken at face value. That trust boundary is owned by the caller.
type Transport struct {
	registry *Registry
	clock    notify.Clock
	log      *logrus.Entry
	upgrader websocket.Upgrader

	maxSessions int
	sendQueue   int
	dropWait    time.Duration
	maxDrops    int

	mu       sync.RWMutex
	sessions map[string]*session

	done     chan struct{}
	doneOnce sync.Once
}

// NewTransport builds a transport and starts the fallback janitor.
func NewTransport(opts Options) *Transport {
	if opts.Clock == nil {
		opts.Clock = notify.UTC()
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = 10000
	}
	if opts.SendQueue <= 0 {
		opts.SendQueue = 128
	}
	if opts.DropWait <= 0 {
		opts.DropWait = 50 * time.Millisecond
	}
	if opts.MaxDrops <= 0 {
		opts.MaxDrops = 3
	}

	t := &Transport{
		registry: opts.Registry,
		clock:    opts.Clock,
		log:      opts.Log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// the endpoint serves native apps and dashboards besides
			// browsers; any origin is accepted
			CheckOrigin: func(*http.Request) bool { return true },
		},
		maxSessions: opts.MaxSessions,
		sendQueue:   opts.SendQueue,
		dropWait:    opts.DropWait,
		maxDrops:    opts.MaxDrops,
		sessions:    make(map[string]*session),
		done:        make(chan struct{}),
	}
	go t.janitor()
	return t
}

// Mount registers the live channel endpoints on a gin router.
func (t *Transport) Mount(router *gin.Engine) {
	router.GET("/ws", gin.WrapF(t.handleWS))
	router.POST("/ws/fallback", t.openFallback)
	router.GET("/ws/fallback/:session", t.pollFallback)
	router.POST("/ws/fallback/:session/send", t.sendFallback)
}

// handleWS upgrades the connection and runs the session pumps.
func (t *Transport) handleWS(w http.ResponseWriter, r *http.Request) {
	if t.full() {
		http.Error(w, "session limit reached", http.StatusServiceUnavailable)
		return
	}

	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		t.log.WithField("action", "ws_upgrade_failed").WithError(err).Warn("websocket upgrade failed")
		return
	}

	// the cap may have filled between the pre-check and here
	s, err := t.newSession(conn)
	if err != nil {
		_ = conn.Close()
		return
	}

	t.log.WithFields(map[string]any{
		"action":  "session_opened",
		"session": s.id,
	}).Info("websocket session opened")

	go s.writePump()
	s.readPump()
}

// SendToUser fans a payload out to every live session of the user and returns
// the number of sessions the frame was enqueued for.
func (t *Transport) SendToUser(userID, queue string, payload any) int {
	frame := Frame{Destination: UserDestination(userID, queue), Payload: payload}

	delivered := 0
	for _, id := range t.registry.SessionsFor(userID) {
		t.mu.RLock()
		s := t.sessions[id]
		t.mu.RUnlock()
		if s == nil {
			// session closed between snapshot and send; benign
			continue
		}
		if s.enqueue(frame) {
			delivered++
		}
	}
	return delivered
}

// Broadcast delivers a payload to every connected session, subscribed or not.
func (t *Transport) Broadcast(payload any) {
	frame := Frame{Destination: TopicAnnouncements, Payload: payload}

	t.mu.RLock()
	all := make([]*session, 0, len(t.sessions))
	for _, s := range t.sessions {
		all = append(all, s)
	}
	t.mu.RUnlock()

	for _, s := range all {
		s.enqueue(frame)
	}
}

// Sessions reports the number of open sessions.
func (t *Transport) Sessions() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}

// Shutdown closes every session, letting websocket write pumps emit a close
// frame first, and stops the janitor.
func (t *Transport) Shutdown(ctx context.Context) {
	t.doneOnce.Do(func() { close(t.done) })

	t.mu.RLock()
	all := make([]*session, 0, len(t.sessions))
	for _, s := range t.sessions {
		all = append(all, s)
	}
	t.mu.RUnlock()

	for _, s := range all {
		t.closeSession(s, "shutdown")
	}

	deadline := time.NewTimer(100 * time.Millisecond)
	defer deadline.Stop()
	select {
	case <-ctx.Done():
	case <-deadline.C:
	}
}

// handleControl routes one client control frame.
func (t *Transport) handleControl(s *session, frame ControlFrame) {
	switch frame.Destination {
	case ControlConnect:
		t.log.WithFields(map[string]any{
			"action":  "client_connected",
			"session": s.id,
			"user_id": frame.UserID,
		}).Info("client announced connection")
		s.enqueue(Frame{Destination: statusWelcome, Payload: notify.NewWelcome(t.clock)})

	case ControlSubscribe:
		if frame.UserID == "" {
			t.log.WithFields(map[string]any{
				"action":  "subscribe_rejected",
				"session": s.id,
			}).Warn("subscribe frame without userId")
			return
		}
		if prev := s.setUser(frame.UserID); prev != "" && prev != frame.UserID {
			// re-subscribe under a new user: detach first so the registry
			// single-owner invariant holds
			t.registry.Detach(s.id)
		}
		t.registry.Attach(frame.UserID, s.id)
		t.log.WithFields(map[string]any{
			"action":  "user_subscribed",
			"session": s.id,
			"user_id": frame.UserID,
		}).Info("user subscribed to live notifications")
		s.enqueue(Frame{Destination: StatusSubscribeAck, Payload: subscribeAck{
			Status:  "subscribed",
			UserID:  frame.UserID,
			Message: "Successfully subscribed to live notifications",
		}})

	case ControlTrack:
		t.log.WithFields(map[string]any{
			"action":   "order_tracking_started",
			"session":  s.id,
			"user_id":  frame.UserID,
			"order_id": frame.OrderID,
		}).Info("client started tracking an order")

	default:
		t.log.WithFields(map[string]any{
			"action":      "control_frame_unknown",
			"session":     s.id,
			"destination": frame.Destination,
		}).Debug("ignoring unknown control destination")
	}
}

// --- session lifecycle ---

func (t *Transport) full() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions) >= t.maxSessions
}

// newSession inserts a fully built session into the map; conn is nil for
// fallback sessions and is never written again after this point.
func (t *Transport) newSession(conn *websocket.Conn) (*session, error) {
	s := &session{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan Frame, t.sendQueue),
		closed: make(chan struct{}),
	}
	s.transport = t
	s.lastPoll = t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.sessions) >= t.maxSessions {
		return nil, ErrTooManySessions
	}
	t.sessions[s.id] = s
	return s, nil
}

func (t *Transport) removeSession(id string) {
	t.mu.Lock()
	delete(t.sessions, id)
	t.mu.Unlock()
}

// closeSession tears a session down exactly once: registry detach, map
// removal, closed signal, and for websocket sessions the underlying conn.
func (t *Transport) closeSession(s *session, reason string) {
	s.closeOnce.Do(func() {
		t.removeSession(s.id)
		t.registry.Detach(s.id)
		close(s.closed)
		if s.conn != nil {
			_ = s.conn.Close()
		}
		t.log.WithFields(map[string]any{
			"action":  "session_closed",
			"session": s.id,
			"reason":  reason,
		}).Info("session closed")
	})
}

// janitor expires fallback sessions that stopped polling.
func (t *Transport) janitor() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			cutoff := t.clock.Now().Add(-fallbackIdleTimeout)
			t.mu.RLock()
			var stale []*session
			for _, s := range t.sessions {
				if s.conn == nil && s.idleSince().Before(cutoff) {
					stale = append(stale, s)
				}
			}
			t.mu.RUnlock()
			for _, s := range stale {
				t.closeSession(s, "fallback_idle")
			}
		}
	}
}
