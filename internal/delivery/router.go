package delivery

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/fathima-sithara/connect-service/internal/apperr"
	"github.com/fathima-sithara/connect-service/internal/chat"
	"github.com/fathima-sithara/connect-service/internal/events"
	"github.com/fathima-sithara/connect-service/internal/metrics"
)

// Session is one authenticated realtime connection. Push is best-effort: it
// reports false when the session's buffer is full or the session is gone.
type Session interface {
	SessionID() string
	UserID() string
	UserName() string
	Push(event string, payload any) bool
}

// Broadcaster fans events out to rooms and to a user's live session.
type Broadcaster interface {
	BroadcastRoom(room, event string, payload any)
	SendToUser(userID, event string, payload any) bool
}

// Router takes validated client intents, runs them through the chat service,
// and fans results out. Every fan-out target is independent: one failed push
// never aborts delivery to the others.
type Router struct {
	chat *chat.Service
	hub  Broadcaster
	prod *events.Producer // nil when kafka is disabled
	log  *zap.SugaredLogger
}

func NewRouter(chatSvc *chat.Service, hub Broadcaster, prod *events.Producer, log *zap.SugaredLogger) *Router {
	return &Router{chat: chatSvc, hub: hub, prod: prod, log: log}
}

// HandleSend authorizes, persists, then fans out. Fan-out happens strictly
// after successful persistence so a pushed message is always visible to a
// subsequent history fetch. Failures surface to the sender only, as an error
// event; the session stays open.
func (r *Router) HandleSend(ctx context.Context, s Session, receiverID, content string) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	msg, err := r.chat.Send(ctx, s.UserID(), receiverID, content)
	if err != nil {
		s.Push("error", errorPayload(err))
		return
	}
	metrics.MessagesSent.Inc()

	// Sender echo: the UI reflects the authoritative stored copy.
	s.Push("message:received", msg)
	// Direct delivery, skipped (not queued) when the receiver is offline.
	r.hub.SendToUser(receiverID, "message:received", msg)
	// Conversation room covers any additional subscribed viewers.
	r.hub.BroadcastRoom(ConversationRoom(s.UserID(), receiverID), "message:received", msg)
	// Inbox-refresh signal; the client re-queries the aggregator.
	r.hub.BroadcastRoom(PersonalRoom(receiverID), "conversation:updated", nil)

	if r.prod != nil {
		if err := r.prod.PublishMessagePersisted(ctx, msg); err != nil {
			r.log.Warnw("publish message event", "msg_id", msg.ID, "err", err)
		}
	}
}

// HandleTyping forwards the ephemeral typing signal to the receiver's live
// session. No authorization beyond session validity, no storage, no room
// broadcast; dropped silently when the receiver is offline.
func (r *Router) HandleTyping(s Session, receiverID string, starting bool) {
	if starting {
		r.hub.SendToUser(receiverID, "typing:start", map[string]any{
			"userId": s.UserID(),
			"name":   s.UserName(),
		})
		return
	}
	r.hub.SendToUser(receiverID, "typing:stop", map[string]any{
		"userId": s.UserID(),
	})
}

func errorPayload(err error) map[string]string {
	msg := "Failed to send message"
	switch {
	case errors.Is(err, apperr.ErrForbidden):
		msg = "You can only message connected users"
	case errors.Is(err, apperr.ErrValidation):
		msg = "Message content is required"
	case errors.Is(err, apperr.ErrNotFound):
		msg = "Receiver not found"
	}
	return map[string]string{"message": msg}
}
