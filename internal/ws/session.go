package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = (pongWait * 9) / 10
	maxFrameSize = 4 * 1024
)

// session is one live client connection. The websocket conn is nil for
// long-poll fallback sessions; those drain the send queue via HTTP polls.
// The send queue is owned by exactly one draining flow (writePump or poll);
// producers only enqueue.
type session struct {
	id        string
	transport *Transport
	conn      *websocket.Conn
	send      chan Frame
	closed    chan struct{}
	closeOnce sync.Once

	mu       sync.Mutex
	userID   string
	drops    int
	lastPoll time.Time
}

func (s *session) setUser(userID string) (previous string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous = s.userID
	s.userID = userID
	return previous
}

func (s *session) user() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

func (s *session) touch(now time.Time) {
	s.mu.Lock()
	s.lastPoll = now
	s.mu.Unlock()
}

func (s *session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPoll
}

// enqueue offers a frame to the session's bounded send queue. If the queue is
// full it waits up to the transport drop-wait and then drops the frame; after
// maxDrops consecutive drops the session is considered unhealthy and closed.
func (s *session) enqueue(f Frame) bool {
	select {
	case s.send <- f:
		s.markDelivered()
		return true
	case <-s.closed:
		return false
	default:
	}

	timer := time.NewTimer(s.transport.dropWait)
	defer timer.Stop()

	select {
	case s.send <- f:
		s.markDelivered()
		return true
	case <-s.closed:
		return false
	case <-timer.C:
		s.markDropped()
		return false
	}
}

func (s *session) markDelivered() {
	s.mu.Lock()
	s.drops = 0
	s.mu.Unlock()
}

func (s *session) markDropped() {
	s.mu.Lock()
	s.drops++
	unhealthy := s.drops >= s.transport.maxDrops
	s.mu.Unlock()

	s.transport.log.WithFields(map[string]any{
		"action":  "frame_dropped",
		"session": s.id,
	}).Warn("send queue full, frame dropped")

	if unhealthy {
		s.transport.closeSession(s, "backpressure")
	}
}

// readPump reads client control frames until the connection dies. Runs on the
// handler goroutine for websocket sessions.
func (s *session) readPump() {
	defer s.transport.closeSession(s, "read_closed")

	s.conn.SetReadLimit(maxFrameSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		var frame ControlFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			s.transport.log.WithFields(map[string]any{
				"action":  "control_frame_invalid",
				"session": s.id,
			}).Debug("ignoring malformed control frame")
			continue
		}
		s.transport.handleControl(s, frame)
	}
}

// writePump owns the websocket write side: it drains the send queue, keeps
// the connection alive with pings, and emits a close frame on shutdown.
func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.transport.closeSession(s, "write_closed")
	}()

	for {
		select {
		case f := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(f); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.closed:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutting down"))
			return
		}
	}
}
