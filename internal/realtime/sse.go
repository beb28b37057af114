package realtime

import (
	"net/http"
	"time"

	"github.com/mcoot/stationscore/internal/model"
)

const (
	// Time between keepalive comments
	pingPeriod = 30 * time.Second

	// Time allowed to write one event to the viewer
	writeWait = 10 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 16
)

// Client represents a connected SSE viewer
type Client struct {
	userID      model.UserID
	send        chan []byte
	connectedAt time.Time
}

// NewClient creates a new SSE client
func NewClient(userID model.UserID) *Client {
	return &Client{
		userID:      userID,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// Messages returns the channel of formatted events for this client. It is
// closed when the client is unregistered or the hub closes.
func (c *Client) Messages() <-chan []byte {
	return c.send
}

// ServeSSE streams hub events to one viewer until it disconnects or the hub closes.
// The viewer first receives a "connected" event.
func ServeSSE(w http.ResponseWriter, r *http.Request, hub *Hub, userID model.UserID) {
	ServeSSEWithKeepalive(w, r, hub, userID, pingPeriod)
}

// ServeSSEWithKeepalive is ServeSSE with a custom keepalive interval
func ServeSSEWithKeepalive(w http.ResponseWriter, r *http.Request, hub *Hub, userID model.UserID, keepalive time.Duration) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	client := NewClient(userID)
	if !hub.Register(client) {
		http.Error(w, "Realtime updates unavailable", http.StatusServiceUnavailable)
		return
	}
	defer hub.Unregister(client)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	// The stream outlives the server's WriteTimeout, so each write gets its own deadline.
	rc := http.NewResponseController(w)
	write := func(message []byte) error {
		_ = rc.SetWriteDeadline(time.Now().Add(writeWait))
		if _, err := w.Write(message); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	if err := write(formatSSEMessage(string(model.EventConnected), `{"status":"connected"}`)); err != nil {
		return
	}

	ticker := time.NewTicker(keepalive)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				// Hub closed the channel
				return
			}
			if err := write(message); err != nil {
				return
			}

		case <-ticker.C:
			if err := write([]byte(": keepalive\n\n")); err != nil {
				return
			}

		case <-r.Context().Done():
			return
		}
	}
}
