package websocket

import (
	"context"
	"sync"
	"time"

	"connectsphere/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client is one authenticated websocket connection. A user may hold several.
type Client struct {
	ID       string
	Username string

	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	once    sync.Once
	manager *Manager

	// room is guarded by manager.mu
	room string
}

func newClient(m *Manager, conn *websocket.Conn, username string) *Client {
	return &Client{
		ID:       uuid.NewString(),
		Username: username,
		conn:     conn,
		send:     make(chan []byte, m.cfg.SendBuffer),
		done:     make(chan struct{}),
		manager:  m,
	}
}

// ReadPump decodes inbound frames until the connection fails, then
// unregisters the client. Events of one connection are handled in order.
func (c *Client) ReadPump() {
	cfg := c.manager.cfg
	defer c.manager.disconnect(c)

	c.conn.SetReadLimit(cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := c.manager.tracker.Refresh(ctx, c.ID); err != nil {
			logger.Warn("refresh presence failed", zap.String("conn_id", c.ID), zap.Error(err))
		}
		return c.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket read failed", zap.String("username", c.Username), zap.Error(err))
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
		c.manager.dispatch(c, data)
	}
}

// WritePump drains the send buffer and keeps the peer alive with pings.
func (c *Client) WritePump() {
	cfg := c.manager.cfg
	ticker := time.NewTicker(cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(cfg.WriteTimeout))
			return
		}
	}
}

// enqueue never blocks. A client whose buffer is full is dropped.
func (c *Client) enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- frame:
		return true
	default:
		logger.Warn("send buffer full, dropping connection",
			zap.String("conn_id", c.ID), zap.String("username", c.Username))
		c.stop()
		return false
	}
}

func (c *Client) emit(event string, data any) {
	frame, err := encode(event, data)
	if err != nil {
		logger.Error("encode event failed", zap.String("event", event), zap.Error(err))
		return
	}
	c.enqueue(frame)
}

func (c *Client) emitError(event, message string) {
	c.emit(EventError, ErrorPayload{Event: event, Message: message})
}

// stop signals the write pump to close the connection. Safe to call repeatedly.
func (c *Client) stop() {
	c.once.Do(func() { close(c.done) })
}
