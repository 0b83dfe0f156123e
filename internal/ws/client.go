package ws

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/fathima-sithara/connect-service/internal/delivery"
	"github.com/fathima-sithara/connect-service/internal/metrics"
	"github.com/fathima-sithara/connect-service/internal/models"
)

const (
	maxMessageSize = 64 * 1024
	pingInterval   = 30 * time.Second
	writeWait      = 10 * time.Second
)

// Client is one authenticated websocket session. It is constructed only after
// the handshake credential has been verified; intents arriving on a client
// without a user are dropped, not failed.
type Client struct {
	conn    *websocket.Conn
	hub     *Hub
	router  *delivery.Router
	user    *models.User
	sid     string
	send    chan []byte
	limiter *rate.Limiter
	done    chan struct{}
	closed  int32
}

func NewClient(conn *websocket.Conn, user *models.User, hub *Hub, router *delivery.Router, rps, sendBuffer int) *Client {
	return &Client{
		conn:    conn,
		hub:     hub,
		router:  router,
		user:    user,
		sid:     uuid.NewString(),
		send:    make(chan []byte, sendBuffer),
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		done:    make(chan struct{}),
	}
}

func (c *Client) SessionID() string { return c.sid }
func (c *Client) UserID() string    { return c.user.ID }
func (c *Client) UserName() string  { return c.user.Name }

// Push queues an event for this session. Best-effort: returns false when the
// session is closed or its buffer is full (slow consumer).
func (c *Client) Push(event string, payload any) bool {
	env := Envelope{Event: event}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return false
		}
		env.Data = b
	}
	b, err := json.Marshal(env)
	if err != nil {
		return false
	}
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- b:
		return true
	default:
		metrics.DroppedPushes.Inc()
		return false
	}
}

// readPump drives the session: it reads intents until the transport fails,
// then tears the session down exactly once.
func (c *Client) readPump() {
	defer func() {
		c.hub.OnDisconnect(c)
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if !c.limiter.Allow() {
			continue
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		c.dispatch(&env)
	}
}

func (c *Client) dispatch(env *Envelope) {
	if c.user == nil {
		// Unauthenticated sessions never get this far; drop silently.
		return
	}
	switch env.Event {
	case "conversation:join":
		var p joinPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || p.UserID == "" {
			return
		}
		c.hub.Join(c, delivery.ConversationRoom(c.user.ID, p.UserID))

	case "message:send":
		var p sendPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || p.ReceiverID == "" {
			return
		}
		c.router.HandleSend(context.Background(), c, p.ReceiverID, p.Content)

	case "typing:start", "typing:stop":
		var p typingPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || p.ReceiverID == "" {
			return
		}
		c.router.HandleTyping(c, p.ReceiverID, env.Event == "typing:start")
	}
}

// writePump flushes queued events and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
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
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// close is idempotent; a session superseded by a newer login closes without
// touching the newer registry entry.
func (c *Client) close() {
	if atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		close(c.done)
		_ = c.conn.Close()
	}
}
