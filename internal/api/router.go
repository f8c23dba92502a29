package api

import (
	"github.com/gin-gonic/gin"

	"github.com/servswap/servswap_go_server/config"
	"github.com/servswap/servswap_go_server/internal/api/handler"
	"github.com/servswap/servswap_go_server/internal/api/middleware"
	"github.com/servswap/servswap_go_server/internal/service"
)

type Router struct {
	authHandler         *handler.AuthHandler
	userHandler         *handler.UserHandler
	listingHandler      *handler.ListingHandler
	swapHandler         *handler.SwapHandler
	messageHandler      *handler.MessageHandler
	connectionHandler   *handler.ConnectionHandler
	endorsementHandler  *handler.EndorsementHandler
	notificationHandler *handler.NotificationHandler
	subscriptionHandler *handler.SubscriptionHandler
	websocketHandler    *handler.WebSocketHandler
	subscriptionService *service.SubscriptionService
	cfg                 *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	listingHandler *handler.ListingHandler,
	swapHandler *handler.SwapHandler,
	messageHandler *handler.MessageHandler,
	connectionHandler *handler.ConnectionHandler,
	endorsementHandler *handler.EndorsementHandler,
	notificationHandler *handler.NotificationHandler,
	subscriptionHandler *handler.SubscriptionHandler,
	websocketHandler *handler.WebSocketHandler,
	subscriptionService *service.SubscriptionService,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:         authHandler,
		userHandler:         userHandler,
		listingHandler:      listingHandler,
		swapHandler:         swapHandler,
		messageHandler:      messageHandler,
		connectionHandler:   connectionHandler,
		endorsementHandler:  endorsementHandler,
		notificationHandler: notificationHandler,
		subscriptionHandler: subscriptionHandler,
		websocketHandler:    websocketHandler,
		subscriptionService: subscriptionService,
		cfg:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/verify-email", r.authHandler.VerifyEmail)
			auth.GET("/google", r.authHandler.GoogleLogin)
			auth.GET("/google/callback", r.authHandler.GoogleCallback)
		}

		// 公开接口 - 服务浏览与用户主页
		api.GET("/listings", r.listingHandler.List)
		api.GET("/listings/:id", r.listingHandler.Get)
		api.GET("/users/:id", r.userHandler.GetProfile)
		api.GET("/users/:id/listings", r.listingHandler.ListByUser)
		api.GET("/users/:id/endorsements", r.endorsementHandler.ListForUser)

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			// 当前用户
			user := authenticated.Group("/user")
			{
				user.GET("/profile", r.userHandler.GetMe)
				user.PUT("/profile", r.userHandler.UpdateProfile)
				user.POST("/avatar", r.userHandler.UploadAvatar)
			}

			// 服务管理
			listings := authenticated.Group("/listings")
			{
				listings.POST("", r.listingHandler.Create)
				listings.PUT("/:id", r.listingHandler.Update)
				listings.DELETE("/:id", r.listingHandler.Delete)
			}

			// 交换，发起提案与会话发言需要生效套餐
			swaps := authenticated.Group("/swaps")
			{
				swaps.POST("", middleware.RequireActivePlan(r.subscriptionService), r.swapHandler.Propose)
				swaps.GET("", r.swapHandler.List)
				swaps.GET("/:id", r.swapHandler.Get)
				swaps.POST("/:id/accept", r.swapHandler.Accept)
				swaps.POST("/:id/decline", r.swapHandler.Decline)
				swaps.POST("/:id/cancel", r.swapHandler.Cancel)
				swaps.POST("/:id/complete", r.swapHandler.MarkComplete)
				swaps.POST("/:id/read", r.swapHandler.MarkRead)
				swaps.GET("/:id/messages", r.messageHandler.History)
				swaps.POST("/:id/messages", middleware.RequireActivePlan(r.subscriptionService), r.messageHandler.Send)
			}

			// 连接
			connections := authenticated.Group("/connections")
			{
				connections.POST("", r.connectionHandler.Request)
				connections.GET("", r.connectionHandler.List)
				connections.POST("/:id/accept", r.connectionHandler.Accept)
				connections.POST("/:id/decline", r.connectionHandler.Decline)
			}

			// 评价
			authenticated.POST("/endorsements", r.endorsementHandler.Endorse)

			// 通知
			notifications := authenticated.Group("/notifications")
			{
				notifications.GET("", r.notificationHandler.List)
				notifications.GET("/unread-count", r.notificationHandler.UnreadCount)
				notifications.POST("/:id/read", r.notificationHandler.MarkRead)
				notifications.POST("/read-all", r.notificationHandler.MarkAllRead)
			}

			// 订阅
			subscriptions := authenticated.Group("/subscriptions")
			{
				subscriptions.GET("", r.subscriptionHandler.List)
				subscriptions.POST("/checkout", r.subscriptionHandler.Checkout)
				subscriptions.POST("/portal", r.subscriptionHandler.BillingPortal)
				subscriptions.GET("/:id", r.subscriptionHandler.Get)
				subscriptions.POST("/:id/cancel", r.subscriptionHandler.Cancel)
				subscriptions.POST("/:id/resume", r.subscriptionHandler.Resume)
			}
		}
	}

	return engine
}
