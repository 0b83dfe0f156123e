package ws

import (
	"sync"

	"go.uber.org/zap"

	"github.com/fathima-sithara/connect-service/internal/delivery"
	"github.com/fathima-sithara/connect-service/internal/metrics"
	"github.com/fathima-sithara/connect-service/internal/presence"
)

// Hub tracks room membership for live sessions and is the only path by which
// anything else in the process reaches a websocket connection. Presence is
// delegated to the registry; rooms are hub-local and die with the session.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]map[*Client]struct{}
	members  map[*Client]map[string]struct{}
	presence *presence.Registry
	log      *zap.SugaredLogger
}

func NewHub(reg *presence.Registry, log *zap.SugaredLogger) *Hub {
	return &Hub{
		rooms:    make(map[string]map[*Client]struct{}),
		members:  make(map[*Client]map[string]struct{}),
		presence: reg,
		log:      log,
	}
}

// Join adds the client to a room. Idempotent: joining twice is a no-op.
func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][c] = struct{}{}
	if h.members[c] == nil {
		h.members[c] = make(map[string]struct{})
	}
	h.members[c][room] = struct{}{}
}

func (h *Hub) leaveAll(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room := range h.members[c] {
		if set, ok := h.rooms[room]; ok {
			delete(set, c)
			if len(set) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	delete(h.members, c)
}

// BroadcastRoom pushes an event to every member of a room, evicting slow
// consumers the way the send path treats any full buffer: drop, not block.
func (h *Hub) BroadcastRoom(room, event string, payload any) {
	h.mu.RLock()
	set := h.rooms[room]
	targets := make([]*Client, 0, len(set))
	for c := range set {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if !c.Push(event, payload) {
			h.log.Debugw("room push dropped", "room", room, "event", event, "user", c.UserID())
		}
	}
}

// SendToUser pushes to the user's live session, if any. Returns false when
// the user is offline or the push was dropped.
func (h *Hub) SendToUser(userID, event string, payload any) bool {
	hnd, ok := h.presence.Lookup(userID)
	if !ok {
		return false
	}
	c, ok := hnd.(*Client)
	if !ok {
		return false
	}
	return c.Push(event, payload)
}

// OnConnect runs when a session reaches Authenticated: register presence
// (silently superseding any prior login), join the personal room, and
// broadcast the full online list.
func (h *Hub) OnConnect(c *Client) {
	prev := h.presence.Register(c.UserID(), c)
	if prev != nil {
		h.log.Infow("presence superseded", "user", c.UserID(), "prev_session", prev.SessionID())
	}
	h.Join(c, delivery.PersonalRoom(c.UserID()))
	metrics.ActiveConnections.Inc()
	h.broadcastAll("user:online", h.presence.Snapshot())
	h.log.Infow("session connected", "user", c.UserID(), "session", c.SessionID())
}

// OnDisconnect is idempotent and safe when the session was already superseded:
// the registry only drops a matching handle, and only a real removal emits the
// offline broadcast.
func (h *Hub) OnDisconnect(c *Client) {
	h.leaveAll(c)
	metrics.ActiveConnections.Dec()
	if h.presence.Unregister(c.UserID(), c) {
		h.broadcastAll("user:offline", map[string]string{"userId": c.UserID()})
		h.log.Infow("session disconnected", "user", c.UserID(), "session", c.SessionID())
	}
}

func (h *Hub) broadcastAll(event string, payload any) {
	for _, id := range h.presence.Snapshot() {
		h.SendToUser(id, event, payload)
	}
}

// Online reports whether the user currently has a live session.
func (h *Hub) Online(userID string) bool {
	_, ok := h.presence.Lookup(userID)
	return ok
}
