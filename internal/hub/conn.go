package hub

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// DefaultWriteTimeout bounds how long one slow subscriber can hold up a
// broadcast pass.
const DefaultWriteTimeout = 5 * time.Second

// Subscriber wraps a downstream WebSocket connection with an identity
// and a deadline-bounded send. It satisfies Conn.
type Subscriber struct {
	id           uuid.UUID
	ws           *websocket.Conn
	writeTimeout time.Duration

	// Write serialization
	writeMu sync.Mutex

	closeOnce sync.Once
}

// NewSubscriber wraps an upgraded WebSocket connection.
func NewSubscriber(ws *websocket.Conn, writeTimeout time.Duration) *Subscriber {
	if writeTimeout == 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &Subscriber{
		id:           uuid.New(),
		ws:           ws,
		writeTimeout: writeTimeout,
	}
}

// ID returns the subscriber's connection identity.
func (s *Subscriber) ID() string {
	return s.id.String()
}

// WriteMessage sends one text frame with a write deadline.
func (s *Subscriber) WriteMessage(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.ws.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	return s.ws.WriteMessage(websocket.TextMessage, data)
}

// Close sends a close frame and tears down the transport. Safe to call
// more than once.
func (s *Subscriber) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		err = s.ws.Close()
	})
	return err
}

// ReadUntilClosed discards inbound frames until the connection drops.
// Subscribers send nothing meaningful; reading only detects disconnect.
func (s *Subscriber) ReadUntilClosed() {
	for {
		if _, _, err := s.ws.ReadMessage(); err != nil {
			return
		}
	}
}
