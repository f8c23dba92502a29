package main

import (
	"context"
	"fmt"
	"log"

	"github.com/servswap/servswap_go_server/config"
	"github.com/servswap/servswap_go_server/internal/api"
	"github.com/servswap/servswap_go_server/internal/api/handler"
	"github.com/servswap/servswap_go_server/internal/database"
	"github.com/servswap/servswap_go_server/internal/pkg/email"
	"github.com/servswap/servswap_go_server/internal/pkg/oauth"
	"github.com/servswap/servswap_go_server/internal/pkg/oss"
	"github.com/servswap/servswap_go_server/internal/pkg/payment"
	"github.com/servswap/servswap_go_server/internal/pkg/pubsub"
	"github.com/servswap/servswap_go_server/internal/pkg/queue"
	"github.com/servswap/servswap_go_server/internal/pkg/ws"
	"github.com/servswap/servswap_go_server/internal/repository"
	"github.com/servswap/servswap_go_server/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化 OSS（可选）
	var ossClient *oss.Client
	if cfg.OSS.Endpoint != "" && cfg.OSS.AccessKeyID != "" {
		ossClient, err = oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Printf("Warning: Failed to init OSS client: %v", err)
		} else {
			log.Println("OSS client initialized")
		}
	}

	// 初始化 Queue 和 Pub/Sub
	notifyQueue := queue.NewQueue(rdb, cfg.Queue.NotifyQueue)
	publisher := pubsub.NewPublisher(rdb)
	subscriber := pubsub.NewSubscriber(rdb)

	// 初始化 WebSocket Hub，桥接 Redis 事件流
	wsHub := ws.NewHub()
	go handler.RunEventBridge(context.Background(), subscriber, wsHub)
	log.Println("WebSocket hub started")

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	listingRepo := repository.NewListingRepository(db)
	swapRepo := repository.NewSwapRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	connectionRepo := repository.NewConnectionRepository(db)
	endorsementRepo := repository.NewEndorsementRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)

	// 初始化 Service
	emailService := email.NewService(&cfg.Email)
	paymentClient := payment.NewClient(&cfg.Payment)

	authService := service.NewAuthService(userRepo, emailService, cfg)
	userService := service.NewUserService(userRepo, endorsementRepo, swapRepo, ossClient, cfg)
	listingService := service.NewListingService(listingRepo, cfg)
	swapService := service.NewSwapService(swapRepo, messageRepo, userRepo, notifyQueue, publisher, cfg)
	messageService := service.NewMessageService(messageRepo, swapRepo, userRepo, notifyQueue, publisher, cfg)
	connectionService := service.NewConnectionService(connectionRepo, userRepo, notifyQueue, cfg)
	endorsementService := service.NewEndorsementService(endorsementRepo, swapRepo, userRepo, notifyQueue, cfg)
	notificationService := service.NewNotificationService(notificationRepo, cfg)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, userRepo, paymentClient, cfg)

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService, oauth.NewStateStore(rdb))
	userHandler := handler.NewUserHandler(userService, cfg)
	listingHandler := handler.NewListingHandler(listingService)
	swapHandler := handler.NewSwapHandler(swapService)
	messageHandler := handler.NewMessageHandler(messageService)
	connectionHandler := handler.NewConnectionHandler(connectionService)
	endorsementHandler := handler.NewEndorsementHandler(endorsementService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret)

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		userHandler,
		listingHandler,
		swapHandler,
		messageHandler,
		connectionHandler,
		endorsementHandler,
		notificationHandler,
		subscriptionHandler,
		websocketHandler,
		subscriptionService,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
