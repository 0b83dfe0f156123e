package ws

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/fathima-sithara/connect-service/internal/auth"
	"github.com/fathima-sithara/connect-service/internal/delivery"
	"github.com/fathima-sithara/connect-service/internal/models"
	"github.com/fathima-sithara/connect-service/internal/repository"
)

type GatewayConfig struct {
	HandshakeTimeout time.Duration
	RateLimitPerSec  int
	SendBuffer       int
}

// Handler upgrades and authenticates realtime sessions. The credential is
// presented at handshake time as a token query parameter; an invalid or
// missing credential refuses the connection before it ever reaches
// Authenticated. The handshake is bounded so unauthenticated sessions are
// dropped rather than held open.
func Handler(hub *Hub, router *delivery.Router, jv *auth.JWTValidator, users repository.UserRepository, cfg GatewayConfig, log *zap.SugaredLogger) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		_ = conn.SetReadDeadline(time.Now().Add(cfg.HandshakeTimeout))

		user, reason := authenticate(jv, users, conn.Query("token"), cfg.HandshakeTimeout)
		if user == nil {
			refuse(conn, reason)
			return
		}
		_ = conn.SetReadDeadline(time.Time{})

		client := NewClient(conn, user, hub, router, cfg.RateLimitPerSec, cfg.SendBuffer)
		hub.OnConnect(client)

		go client.writePump()
		client.readPump()
	})
}

// authenticate resolves the handshake credential to a user record. A nil user
// means the session must be refused; the returned reason is the error envelope
// message sent before closing.
func authenticate(jv *auth.JWTValidator, users repository.UserRepository, token string, timeout time.Duration) (*models.User, string) {
	if token == "" {
		return nil, "Authentication error"
	}
	uid, err := jv.Validate(token)
	if err != nil {
		return nil, "Authentication error"
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	user, err := users.GetByID(ctx, uid)
	if err != nil {
		return nil, "User not found"
	}
	return user, ""
}

func refuse(conn *websocket.Conn, reason string) {
	_ = conn.WriteJSON(Envelope{Event: "error", Data: []byte(`{"message":"` + reason + `"}`)})
	_ = conn.Close()
}
