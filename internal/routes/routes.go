package routes

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fathima-sithara/connect-service/internal/auth"
	"github.com/fathima-sithara/connect-service/internal/config"
	"github.com/fathima-sithara/connect-service/internal/handlers"
	"github.com/fathima-sithara/connect-service/internal/metrics"
	"github.com/fathima-sithara/connect-service/internal/middleware"
	"github.com/fathima-sithara/connect-service/internal/ws"
)

type Deps struct {
	Cfg         *config.Config
	Log         *zap.SugaredLogger
	JWT         *auth.JWTValidator
	Hub         *ws.Hub
	WSHandler   fiber.Handler
	Connections *handlers.ConnectionHandler
	Messages    *handlers.MessageHandler
	Redis       *redis.Client // nil when disabled
}

func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  d.Cfg.ReadTimeout,
		WriteTimeout: d.Cfg.WriteTimeout,
	})

	app.Use(middleware.Recovery(d.Log))
	app.Use(middleware.Logging(d.Log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	if d.Cfg.Metrics.Enabled {
		app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	}

	app.Get("/presence/:userId", func(c *fiber.Ctx) error {
		uid := c.Params("userId")
		return c.JSON(fiber.Map{"userId": uid, "online": d.Hub.Online(uid)})
	})

	// The realtime handshake carries its credential as a query parameter;
	// auth happens inside the upgrade handler.
	app.Use("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", d.WSHandler)

	api := app.Group("/api", auth.Middleware(d.JWT))
	if d.Redis != nil {
		rl := middleware.NewRateLimiter(d.Redis, d.Cfg.Redis.Prefix, d.Cfg.RateLimit.Limit, d.Cfg.RateLimitWindow)
		api.Use(rl.Middleware(func(c *fiber.Ctx) string {
			if uid, ok := c.Locals("user_id").(string); ok {
				return uid
			}
			return c.IP()
		}))
	}

	users := api.Group("/users")
	users.Get("/", d.Connections.ListUsers)
	users.Get("/requests", d.Connections.PendingRequests)
	users.Get("/:id", d.Connections.GetUser)
	users.Post("/connect/:userId", d.Connections.Request)
	users.Put("/accept/:userId", d.Connections.Accept)
	users.Put("/reject/:userId", d.Connections.Reject)

	msgs := api.Group("/messages")
	msgs.Post("/", d.Messages.Send)
	msgs.Get("/conversations", d.Messages.Conversations)
	msgs.Put("/read/:userId", d.Messages.MarkRead)
	msgs.Get("/:userId", d.Messages.History)

	return app
}
