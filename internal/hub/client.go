package hub

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	sendBuffer     = 64
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 64 * 1024
)

// Client is one duplex connection. Role state is guarded by mu; the send
// channel is drained by a single write pump.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	done      chan struct{}
	closeOnce sync.Once

	mu     sync.RWMutex
	role   Role
	userID string
}

func (c *Client) Role() Role {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.role
}

// UserID returns the bound account identifier, empty unless RoleClient.
func (c *Client) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

// Send marshals and enqueues a message. A full buffer drops the message
// rather than blocking a handler on a slow peer.
func (c *Client) Send(msg any) {
	b, err := json.Marshal(msg)
	if err != nil {
		log.Printf("hub: marshal: %v", err)
		return
	}
	select {
	case c.send <- b:
	default:
	}
}

// Close asks the write pump to flush queued replies, emit a close frame
// and tear the connection down. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// ReadPump consumes inbound frames and passes them to handler, refreshing
// the read deadline on every pong. A panicking handler is logged and the
// connection keeps going. Blocks until the peer goes away.
func (c *Client) ReadPump(handler func(*Client, []byte)) {
	defer c.conn.Close()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.dispatch(handler, payload)
	}
}

func (c *Client) dispatch(handler func(*Client, []byte), payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("hub: handler panic: %v", r)
		}
	}()
	handler(c, payload)
}

// WritePump writes queued messages and pings the peer on a fixed interval
// so dead connections are detected independently of traffic.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.flush()
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, ""))
			return
		}
	}
}

func (c *Client) flush() {
	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		default:
			return
		}
	}
}
