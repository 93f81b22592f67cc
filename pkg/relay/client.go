package relay

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Client is one relay connection.
type Client struct {
	ID   string
	Role Role

	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	cancel context.CancelFunc

	// observed guards the one-time embed handshake.
	observed sync.Once
}

func newClient(h *Hub, conn *websocket.Conn, role Role) *Client {
	return &Client{
		ID:   uuid.New().String(),
		Role: role,
		hub:  h,
		conn: conn,
		send: make(chan []byte, h.sendBuffer),
	}
}

// markObserved runs fn exactly once per client, the relay analog of the
// dataset flag the outer page sets on a newly detected iframe.
func (c *Client) markObserved(fn func()) {
	c.observed.Do(fn)
}

// readPump relays inbound messages to the hub until the connection drops.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.detach(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("Relay: read error", "id", c.ID, "error", err)
			}
			return
		}
		c.hub.route(ctx, c, data)
	}
}

// writePump drains the send channel and keeps the connection alive.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
