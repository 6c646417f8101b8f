package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client is one websocket subscriber in one room.
type Client struct {
	conn *websocket.Conn
	hub  *Hub
	room string
	send chan []byte

	mu     sync.Mutex
	seen   map[string]bool
	closed bool

	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(h *Hub, room string, conn *websocket.Conn) *Client {
	return &Client{
		conn: conn,
		hub:  h,
		room: room,
		send: make(chan []byte, 256),
		seen: make(map[string]bool),
		done: make(chan struct{}),
	}
}

// Enqueue queues data for delivery unless the event id was already sent to
// this client. Replay on subscribe and a live broadcast can race on the same
// message; the seen set guarantees each id is delivered at most once per
// connection.
func (c *Client) Enqueue(id string, data []byte) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if id != "" {
		if c.seen[id] {
			c.mu.Unlock()
			return
		}
		c.seen[id] = true
	}
	c.mu.Unlock()

	select {
	case c.send <- data:
	default:
		// Slow consumer: drop the connection instead of blocking the hub.
		go c.Close()
	}
}

// ReadPump discards inbound frames and keeps the connection's read deadline
// fresh via pong handling. The protocol is server-push only.
func (c *Client) ReadPump() {
	defer c.Close()
	c.conn.SetReadLimit(8 * 1024)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// WritePump drains the send channel to the connection with ping keepalives.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close leaves the room and tears the connection down exactly once. Both
// pumps and the hub's slow-consumer path may call it concurrently. The send
// channel stays open so a broadcast that snapshotted this client before it
// left the room cannot panic; Enqueue drops data once closed is set.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		c.hub.Leave(c.room, c)
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}
