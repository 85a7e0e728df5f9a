package link

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 20 * time.Second

	// maxMessageSize bounds inbound frames; set_value is tiny.
	maxMessageSize = 4096
)

// Client is one websocket connection with its own write queue.
type Client struct {
	hub *Hub

	id         string
	conn       *websocket.Conn
	send       chan []byte
	remoteAddr string

	mu     sync.Mutex
	closed bool

	logger *slog.Logger
}

// NewClient creates a client with a fresh id and a buffered send queue.
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string, logger *slog.Logger) *Client {
	sendBuf := 32
	if hub != nil && hub.sendBuf > 0 {
		sendBuf = hub.sendBuf
	}
	id := uuid.NewString()
	return &Client{
		hub:        hub,
		id:         id,
		conn:       conn,
		send:       make(chan []byte, sendBuf),
		remoteAddr: remoteAddr,
		logger:     logger.With("client_id", id),
	}
}

// ID returns the client's unique id.
func (c *Client) ID() string {
	return c.id
}

// enqueue queues msg without blocking. It reports false when the queue
// is full.
func (c *Client) enqueue(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// close shuts the connection and ends the write pump. Safe to call twice.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.conn != nil {
		_ = c.conn.Close()
	}
	close(c.send)
}

func closeStatus(err error) (code int, text string, ok bool) {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code, ce.Text, true
	}
	return 0, "", false
}

func (c *Client) logExit(pump string, err error) {
	if errors.Is(err, websocket.ErrCloseSent) {
		return
	}
	if code, text, ok := closeStatus(err); ok {
		c.logger.Debug(pump+" exiting (close)", "code", code, "reason", text)
		return
	}
	c.logger.Debug(pump+" exiting", "error", err)
}

// writePump writes queued frames and keepalive pings. It exits on write
// error or when send is closed.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.logExit("writePump", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logExit("writePump", err)
				return
			}
		}
	}
}

// readPump decodes inbound frames and hands them to handle. It exits on
// read error, then unregisters the client.
func (c *Client) readPump(ctx context.Context, handle func(*Client, envelope)) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	defer c.leave()

	for {
		if ctx.Err() != nil {
			return
		}

		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.logExit("readPump", err)
			return
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.logger.Debug("dropping malformed frame", "error", err)
			c.reply(TypeError, errorData{Message: "malformed message"})
			continue
		}
		handle(c, env)
	}
}

// reply sends a message to this client only.
func (c *Client) reply(typ string, data any) {
	msg, err := marshalEnvelope(typ, data)
	if err != nil {
		c.logger.Warn("marshal failed", "type", typ, "error", err)
		return
	}
	if !c.enqueue(msg) {
		c.leave()
	}
}

// leave asks the hub to drop this client.
func (c *Client) leave() {
	if c.hub == nil {
		c.close()
		return
	}
	select {
	case c.hub.unregister <- c:
	default:
		c.hub.removeClient(c, "unregister")
	}
}
