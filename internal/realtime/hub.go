package realtime

import (
	"sync"

	"github.com/rs/zerolog"
)

// Hub owns the live connection registry and the article room index. It is
// constructed once at startup and shared by the websocket server, the
// comment service and the notification dispatcher. One mutex guards both
// maps; connect, disconnect, join and leave events interleave freely.
type Hub struct {
	mu    sync.Mutex
	users map[string]*Client          // userID -> most recent connection
	rooms map[string]map[*Client]bool // articleID -> room members
	log   zerolog.Logger
}

// NewHub creates an empty hub
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		users: make(map[string]*Client),
		rooms: make(map[string]map[*Client]bool),
		log:   log.With().Str("component", "hub").Logger(),
	}
}

// Register records an authenticated connection. A newer connection from the
// same user replaces the registry entry (last-connect-wins for delivery);
// the superseded client loses its room memberships but its transport is not
// touched.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.users[c.userID]; ok && old != c {
		h.detachLocked(old)
		h.log.Debug().Str("user_id", c.userID).Msg("Replaced existing connection")
	}
	h.users[c.userID] = c

	h.log.Info().Str("user_id", c.userID).Str("username", c.username).Msg("User connected")
}

// Unregister removes a connection and all of its room memberships. The
// registry entry is only evicted if it still points at this client, so a
// superseded connection's late disconnect cannot evict its replacement.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.detachLocked(c)
	if h.users[c.userID] == c {
		delete(h.users, c.userID)
	}
	c.closeSend()

	h.log.Info().Str("user_id", c.userID).Str("username", c.username).Msg("User disconnected")
}

// detachLocked prunes a client's room memberships. Callers hold h.mu.
func (h *Hub) detachLocked(c *Client) {
	for articleID := range c.rooms {
		if members, ok := h.rooms[articleID]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, articleID)
			}
		}
	}
	c.rooms = make(map[string]bool)
}

// Join adds the client to an article room. Joining twice has no effect.
func (h *Hub) Join(c *Client, articleID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[articleID]
	if !ok {
		members = make(map[*Client]bool)
		h.rooms[articleID] = members
	}
	members[c] = true
	c.rooms[articleID] = true
}

// Leave removes the client from an article room. Leaving a room the client
// is not in has no effect.
func (h *Hub) Leave(c *Client, articleID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[articleID]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, articleID)
		}
	}
	delete(c.rooms, articleID)
}

// BroadcastToRoom delivers an event to every current member of an article
// room. Delivery is fire-and-forget: a client whose send buffer is full is
// skipped rather than waited on.
func (h *Hub) BroadcastToRoom(articleID, event string, data interface{}) {
	h.mu.Lock()
	members := make([]*Client, 0, len(h.rooms[articleID]))
	for c := range h.rooms[articleID] {
		members = append(members, c)
	}
	h.mu.Unlock()

	for _, c := range members {
		c.enqueue(OutboundEvent{Event: event, Data: data})
	}
}

// SendToUser delivers an event to the user's active connection, if any.
// Returns whether a live connection existed.
func (h *Hub) SendToUser(userID, event string, data interface{}) bool {
	h.mu.Lock()
	c, ok := h.users[userID]
	h.mu.Unlock()

	if !ok {
		return false
	}
	c.enqueue(OutboundEvent{Event: event, Data: data})
	return true
}

// IsUserConnected reports whether the user has an active connection
func (h *Hub) IsUserConnected(userID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.users[userID]
	return ok
}

// ConnectedCount returns the number of users with an active connection
func (h *Hub) ConnectedCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.users)
}

// RoomSize returns the number of connections watching an article
func (h *Hub) RoomSize(articleID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[articleID])
}
