package ws

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Long-poll fallback for clients without native websocket support. A client
// opens a session with POST /ws/fallback, pushes control frames to
// POST /ws/fallback/{session}/send, and drains server frames with
// GET /ws/fallback/{session}. Sessions expire after fallbackIdleTimeout
// without a poll.
const (
	fallbackIdleTimeout = 60 * time.Second
	fallbackPollWait    = 25 * time.Second
)

// openFallback creates a fallback session and returns its id.
func (t *Transport) openFallback(c *gin.Context) {
	s, err := t.newSession(nil)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session limit reached"})
		return
	}

	t.log.WithFields(map[string]any{
		"action":  "session_opened",
		"session": s.id,
		"mode":    "fallback",
	}).Info("fallback session opened")

	c.JSON(http.StatusCreated, gin.H{"sessionId": s.id})
}

// sendFallback accepts one control frame for the session.
func (t *Transport) sendFallback(c *gin.Context) {
	s := t.lookup(c.Param("session"))
	if s == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}

	var frame ControlFrame
	if err := c.ShouldBindJSON(&frame); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed control frame"})
		return
	}

	s.touch(t.clock.Now())
	t.handleControl(s, frame)
	c.Status(http.StatusAccepted)
}

// pollFallback blocks until at least one frame is queued (or the poll window
// elapses) and returns everything currently pending.
func (t *Transport) pollFallback(c *gin.Context) {
	s := t.lookup(c.Param("session"))
	if s == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}
	s.touch(t.clock.Now())

	frames := make([]Frame, 0, 4)

	timer := time.NewTimer(fallbackPollWait)
	defer timer.Stop()

	select {
	case f := <-s.send:
		frames = append(frames, f)
	case <-timer.C:
		c.JSON(http.StatusOK, gin.H{"frames": frames})
		return
	case <-s.closed:
		c.JSON(http.StatusGone, gin.H{"error": "session closed"})
		return
	case <-c.Request.Context().Done():
		return
	}

	// drain whatever else is already queued without blocking
	for {
		select {
		case f := <-s.send:
			frames = append(frames, f)
		default:
			c.JSON(http.StatusOK, gin.H{"frames": frames})
			return
		}
	}
}

func (t *Transport) lookup(id string) *session {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sessions[id]
}
