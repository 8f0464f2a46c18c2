package ws

import (
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/gorilla/websocket"

	"marketplace-chat/internal/models"
)

// client wraps a websocket connection behind the session.Conn contract.
// Writes are serialized; the broadcaster may fan out from several goroutines.
type client struct {
	id   string
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn) *client {
	return &client{id: newConnID(), conn: conn}
}

func (c *client) ID() string { return c.id }

func (c *client) Send(event models.ServerEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(event)
}

func (c *client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "superseded"))
	_ = c.conn.Close()
}

func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}
