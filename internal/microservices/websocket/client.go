package websocket

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Individual connection handler

const ( // ping pong(2-way heartbeat) to keep connection alive
	WriteWait      = 10 * time.Second    // max time to write a frame to the peer
	PongWait       = 60 * time.Second    // max time between frames/pongs before the peer is considered gone
	MaxMessageSize = 1 << 20             // 1MB; camera frames and SDP both fit
	pingRatio      = 9                   // ping at 90% of the pong wait to leave room for jitter
	pingDivisor    = 10
)

// Options tunes a Client. Zero fields fall back to the package defaults.
type Options struct {
	WriteWait      time.Duration
	PongWait       time.Duration
	MaxMessageSize int64
}

func (o Options) withDefaults() Options {
	if o.WriteWait <= 0 {
		o.WriteWait = WriteWait
	}
	if o.PongWait <= 0 {
		o.PongWait = PongWait
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = MaxMessageSize
	}
	return o
}

func (o Options) pingPeriod() time.Duration {
	return (o.PongWait * pingRatio) / pingDivisor
}

// Client is a Session backed by a gorilla websocket connection.
type Client struct {
	id      string          // unique client ID
	conn    *websocket.Conn // WebSocket connection
	opts    Options
	logger  *slog.Logger
	writeMu sync.Mutex // gorilla allows one concurrent writer

	open      atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// constructor new client
func NewClient(conn *websocket.Conn, opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		id:     uuid.NewString(),
		conn:   conn,
		opts:   opts.withDefaults(),
		logger: logger,
	}
	c.open.Store(true)
	return c
}

func (c *Client) ID() string { return c.id }

func (c *Client) RemoteAddr() string {
	if addr := c.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

func (c *Client) IsOpen() bool { return c.open.Load() }

func (c *Client) SendText(data []byte) error {
	return c.write(websocket.TextMessage, data)
}

func (c *Client) SendBinary(data []byte) error {
	return c.write(websocket.BinaryMessage, data)
}

// write performs one bounded write attempt.
func (c *Client) write(messageType int, data []byte) error {
	if !c.open.Load() {
		return ErrSessionClosed
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	if err := c.conn.WriteMessage(messageType, data); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

// Close sends a close frame and releases the connection. Later calls return
// the result of the first one.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.open.Store(false)
		// WriteControl may run concurrently with WriteMessage
		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(c.opts.WriteWait),
		)
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// ReadPump reads frames until the connection fails or closes, dispatching
// each one to the hub. It closes and unregisters the client on return.
func (c *Client) ReadPump(hub *Hub) {
	done := make(chan struct{})
	defer func() {
		close(done)
		_ = c.Close()
		hub.OnClose(c)
	}()

	c.conn.SetReadLimit(c.opts.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	go c.pingLoop(done)

	c.logger.Info("client_started_listening",
		"client_id", c.id,
		"remote_addr", c.RemoteAddr(),
	)

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			c.logReadError(err)
			return
		}
		// any inbound frame proves the peer is alive
		_ = c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))

		switch messageType {
		case websocket.TextMessage:
			hub.OnTextFrame(c, data)
		case websocket.BinaryMessage:
			hub.OnBinaryFrame(c, data)
		}
	}
}

func (c *Client) pingLoop(done <-chan struct{}) {
	ticker := time.NewTicker(c.opts.pingPeriod())
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.opts.WriteWait))
			if err != nil {
				c.logger.Debug("client_ping_failed",
					"client_id", c.id,
					"error", err.Error(),
				)
				_ = c.Close() // unblocks ReadPump
				return
			}
		}
	}
}

func (c *Client) logReadError(err error) {
	var netErr net.Error
	switch {
	case websocket.IsUnexpectedCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived):
		c.logger.Warn("client_closed_unexpectedly",
			"client_id", c.id,
			"error", err.Error(),
		)
	case errors.As(err, new(*websocket.CloseError)):
		c.logger.Info("client_disconnected", "client_id", c.id)
	case errors.Is(err, net.ErrClosed) || !c.open.Load():
		c.logger.Info("client_connection_closed", "client_id", c.id)
	case errors.As(err, &netErr) && netErr.Timeout():
		c.logger.Warn("client_read_timeout", "client_id", c.id)
	default:
		c.logger.Error("client_read_error",
			"client_id", c.id,
			"error", err.Error(),
		)
	}
}
