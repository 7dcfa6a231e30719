package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBufferSize = 64
)

// Client is one authenticated live connection. Its room set is owned by the
// hub and mutated only under the hub's lock.
type Client struct {
	id       string
	userID   string
	username string
	role     string

	hub  *Hub
	srv  *Server
	conn *websocket.Conn

	sendMu sync.Mutex
	send   chan OutboundEvent
	closed bool

	rooms map[string]bool

	log zerolog.Logger
}

func newClient(hub *Hub, srv *Server, conn *websocket.Conn, userID, username, role string, log zerolog.Logger) *Client {
	return &Client{
		id:       uuid.New().String(),
		userID:   userID,
		username: username,
		role:     role,
		hub:      hub,
		srv:      srv,
		conn:     conn,
		send:     make(chan OutboundEvent, sendBufferSize),
		rooms:    make(map[string]bool),
		log:      log.With().Str("component", "client").Str("user_id", userID).Logger(),
	}
}

// enqueue queues an event for delivery without blocking. Events to a closed
// or saturated connection are dropped.
func (c *Client) enqueue(event OutboundEvent) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		return
	}
	select {
	case c.send <- event:
	default:
		c.log.Warn().Str("event", event.Event).Msg("Send buffer full, dropping event")
	}
}

// closeSend shuts the send channel exactly once
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// readPump consumes inbound events until the connection drops. Cleanup runs
// unconditionally, even when the pump exits on a mid-operation error.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn().Err(err).Msg("Unexpected close")
			}
			return
		}

		var event InboundEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			c.enqueue(OutboundEvent{Event: EventCommentError, Data: map[string]string{"message": "malformed event"}})
			continue
		}
		c.srv.handleEvent(c, &event)
	}
}

// writePump flushes queued events and keeps the connection alive with pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
