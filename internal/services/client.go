package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/Louislam09/dots-and-boxes-game-sub000/internal/config"
)

// Client owns one WebSocket connection: a buffered send channel drained by
// writePump and a readPump that feeds frames to the coordinator. It is the
// Sender behind a Session.
type Client struct {
	conn        *websocket.Conn
	send        chan []byte
	coordinator *Coordinator
	session     *Session

	ctx     context.Context
	cancel  context.CancelFunc
	closed  bool
	closeMu sync.Mutex
}

// NewClient wraps an accepted connection. The session starts unbound; it
// acquires its room and player identity on the first successful join.
func NewClient(conn *websocket.Conn, coordinator *Coordinator) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		conn:        conn,
		send:        make(chan []byte, config.ClientSendBufferSize),
		coordinator: coordinator,
		ctx:         ctx,
		cancel:      cancel,
	}
	c.session = NewSession(c)
	return c
}

// Session returns the coordinator-facing handle for this connection.
func (c *Client) Session() *Session {
	return c.session
}

// Start begins the client's read and write pumps.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// writePump drains the send channel to the connection and keeps it alive
// with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				_ = c.conn.Close(websocket.StatusNormalClosure, "")
				return
			}

			writeCtx, cancel := context.WithTimeout(c.ctx, config.WriteTimeout)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()

			if err != nil {
				log.Printf("❌ Write error: %v", err)
				c.coordinator.metrics.IncrementBroadcastErrors()
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(c.ctx, config.WriteTimeout)
			err := c.conn.Ping(pingCtx)
			cancel()

			if err != nil {
				log.Printf("❌ Ping error: %v", err)
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// readPump forwards inbound frames to the coordinator. When the read loop
// exits for any reason the disconnect protocol runs.
func (c *Client) readPump() {
	defer func() {
		c.coordinator.metrics.DecrementConnections()
		c.coordinator.HandleDisconnect(c.session)
		c.Close()
	}()

	for {
		readCtx, cancel := context.WithTimeout(c.ctx, config.PongTimeout)
		_, message, err := c.conn.Read(readCtx)
		cancel()

		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				c.coordinator.metrics.IncrementConnectionErrors()
			}
			return
		}

		c.coordinator.metrics.IncrementMessagesReceived()
		c.coordinator.Dispatch(c.session, message)
	}
}

// Send queues a frame for delivery. A full buffer means the client cannot
// keep up with the room's event rate; it is disconnected rather than
// allowed to stall the fan-out.
func (c *Client) Send(message []byte) bool {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- message:
		return true
	default:
		log.Printf("⚠️  Send buffer full, closing slow client")
		c.coordinator.metrics.IncrementBroadcastErrors()
		go c.Close()
		return false
	}
}

// Close cleanly shuts down the connection. Safe to call more than once.
func (c *Client) Close() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	c.cancel()
	close(c.send)
	_ = c.conn.Close(websocket.StatusNormalClosure, "")
}
