package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"marketplace-chat/internal/auth"
	"marketplace-chat/internal/config"
	"marketplace-chat/internal/db"
	"marketplace-chat/internal/handlers"
	"marketplace-chat/internal/logging"
	"marketplace-chat/internal/middleware"
	"marketplace-chat/internal/notify"
	"marketplace-chat/internal/observability"
	"marketplace-chat/internal/repositories"
	"marketplace-chat/internal/secure"
	"marketplace-chat/internal/services"
	"marketplace-chat/internal/session"
	"marketplace-chat/internal/ws"
)

const serviceName = "marketplace-chat"

func main() {
	cfg := config.Load()
	log := logging.New(cfg.Environment())

	shutdownTracing, err := observability.InitTracing(context.Background(), serviceName, cfg.Environment(), cfg.OTLPEndpoint())
	if err != nil {
		log.WithError(err).Fatal("failed to init tracing")
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	database, err := db.Connect(cfg.DatabaseDSN(), log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to db")
	}

	box, err := secure.NewMessageBox(cfg.BoxPublicKey(), cfg.BoxPrivateKey())
	if err != nil {
		log.WithError(err).Fatal("invalid message box keys")
	}

	var presence *session.PresenceStore
	if addr := cfg.RedisAddr(); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.RedisPassword()})
		presence = session.NewPresenceStore(rdb, cfg.PresenceTTL())
	}

	publisher := notify.NewPublisher(cfg.AMQPURL(), cfg.AMQPExchange(), log)
	defer func() { _ = publisher.Close() }()
	notifier := notify.NewNotifier(publisher, cfg.NotifyRoutingKey(), serviceName, cfg.Environment(), log)

	store := repositories.NewSQLStore(database)
	chatRepo := repositories.NewChatRepo()
	statusRepo := repositories.NewStatusRepo()
	messageRepo := repositories.NewMessageRepo()
	userRepo := repositories.NewUserRepo()

	verifier := auth.NewJWTVerifier(cfg.JWTSecret())
	registry := session.NewRegistry(verifier, userRepo, store, presence, log)
	hub := ws.NewHub(registry, log)

	chatService := services.NewChatService(store, chatRepo, statusRepo, userRepo, hub, log)
	statusService := services.NewStatusService(store, chatRepo, statusRepo, hub, log)
	messageService := services.NewMessageService(store, chatRepo, statusRepo, messageRepo, userRepo,
		box, hub, notifier, cfg.EditWindow(), log)
	typingService := services.NewTypingService(store, chatRepo, statusRepo, hub, log)

	chatHandler := handlers.NewChatHandler(chatService, statusService, messageService, log)
	gateway := ws.NewGateway(registry, typingService, log)

	if cfg.Environment() != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(handlers.RequestIDMiddleware())
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(otelgin.Middleware(serviceName))

	handlers.RegisterHealthRoutes(router, cfg.Environment())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.AuthMiddleware(verifier)

	router.POST("/chats", authMiddleware, chatHandler.CreateChat)
	router.GET("/chats", authMiddleware, chatHandler.ListChats)
	router.DELETE("/chats/:chat_id", authMiddleware, chatHandler.DeleteChat)
	router.PATCH("/chats/:chat_id/statuses/:status_id", authMiddleware, chatHandler.UpdateStatus)
	router.POST("/chats/:chat_id/messages", authMiddleware, chatHandler.PostMessage)
	router.GET("/chats/:chat_id/messages", authMiddleware, chatHandler.ListMessages)
	router.GET("/chats/:chat_id/messages/:message_id", authMiddleware, chatHandler.GetMessage)
	router.PATCH("/chats/:chat_id/messages/:message_id", authMiddleware, chatHandler.UpdateMessage)
	router.DELETE("/chats/:chat_id/messages/:message_id", authMiddleware, chatHandler.DeleteMessage)

	router.GET("/ws", gateway.Handle)

	if err := router.Run(":" + cfg.Port()); err != nil {
		log.WithError(err).Fatal("server error")
	}
}
