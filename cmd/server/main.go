package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fathima-sithara/connect-service/internal/auth"
	"github.com/fathima-sithara/connect-service/internal/cache"
	"github.com/fathima-sithara/connect-service/internal/chat"
	"github.com/fathima-sithara/connect-service/internal/config"
	"github.com/fathima-sithara/connect-service/internal/connections"
	"github.com/fathima-sithara/connect-service/internal/delivery"
	"github.com/fathima-sithara/connect-service/internal/events"
	"github.com/fathima-sithara/connect-service/internal/handlers"
	"github.com/fathima-sithara/connect-service/internal/logger"
	"github.com/fathima-sithara/connect-service/internal/metrics"
	"github.com/fathima-sithara/connect-service/internal/presence"
	"github.com/fathima-sithara/connect-service/internal/repository"
	"github.com/fathima-sithara/connect-service/internal/routes"
	"github.com/fathima-sithara/connect-service/internal/ws"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()
	if env := os.Getenv("APP_CONFIG"); env != "" {
		*cfgPath = env
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.New(logger.Config{
		Development: cfg.Log.Development,
		Level:       cfg.Log.Level,
		Encoding:    cfg.Log.Encoding,
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync()

	if cfg.Metrics.Enabled {
		metrics.Init()
	}

	jv, err := auth.NewJWTValidator(cfg.JWT.SigningMethod, cfg.JWT.Secret, cfg.JWT.PublicKeyPath)
	if err != nil {
		zlog.Fatalw("init jwt validator", "err", err)
	}

	var (
		userRepo repository.UserRepository
		connRepo repository.ConnectionRepository
		msgRepo  repository.MessageRepository
	)
	switch cfg.Storage.Driver {
	case "memory":
		userRepo = repository.NewMemoryUserStore()
		connRepo = repository.NewMemoryConnectionStore()
		msgRepo = repository.NewMemoryMessageStore()
		zlog.Warn("using in-memory storage, data will not survive a restart")
	default:
		client, err := repository.NewMongoClient(cfg.Mongo.URI)
		if err != nil {
			zlog.Fatalw("connect mongo", "err", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		}()
		db := client.Database(cfg.Mongo.Database)
		userRepo = repository.NewMongoUserRepository(db.Collection("users"))
		connRepo = repository.NewMongoConnectionRepository(db.Collection("connections"))
		msgRepo = repository.NewMongoMessageRepository(db.Collection("messages"))
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			zlog.Fatalw("connect redis", "err", err)
		}
		defer rdb.Close()
	}

	var producer *events.Producer
	if cfg.Kafka.Enabled {
		producer = events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
	}

	graph := connections.NewService(userRepo, connRepo, zlog)
	chatSvc := chat.NewService(msgRepo, userRepo, graph, zlog)

	registry := presence.NewRegistry()
	hub := ws.NewHub(registry, zlog)
	router := delivery.NewRouter(chatSvc, hub, producer, zlog)

	wsHandler := ws.Handler(hub, router, jv, userRepo, ws.GatewayConfig{
		HandshakeTimeout: cfg.HandshakeTimeout,
		RateLimitPerSec:  cfg.WS.RateLimitPerSec,
		SendBuffer:       cfg.WS.SendBuffer,
	}, zlog)

	app := routes.New(routes.Deps{
		Cfg:         cfg,
		Log:         zlog,
		JWT:         jv,
		Hub:         hub,
		WSHandler:   wsHandler,
		Connections: handlers.NewConnectionHandler(graph, userRepo),
		Messages:    handlers.NewMessageHandler(chatSvc, userRepo),
		Redis:       rdb,
	})

	errChan := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Server.Port
		zlog.Infow("starting server", "addr", addr, "storage", cfg.Storage.Driver)
		errChan <- app.Listen(addr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		zlog.Fatalw("server error", "err", err)
	case sig := <-stop:
		zlog.Infow("shutdown signal received", "signal", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		zlog.Warnw("shutdown", "err", err)
	}
	zlog.Info("shutdown complete")
}
