package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/servswap/servswap_go_server/internal/pkg/jwt"
	"github.com/servswap/servswap_go_server/internal/pkg/pubsub"
	"github.com/servswap/servswap_go_server/internal/pkg/ws"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: 生产环境需要验证 Origin
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type WebSocketHandler struct {
	hub       *ws.Hub
	jwtSecret string
}

func NewWebSocketHandler(hub *ws.Hub, jwtSecret string) *WebSocketHandler {
	return &WebSocketHandler{
		hub:       hub,
		jwtSecret: jwtSecret,
	}
}

// Handle WebSocket 连接处理
// GET /api/v1/ws?token=xxx
func (h *WebSocketHandler) Handle(c *gin.Context) {
	// 验证 JWT Token
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	claims, err := jwt.ParseToken(token, h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	// 升级连接
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := &ws.Client{
		UserID: claims.UserID,
		Conn:   conn,
	}

	h.hub.Register(client)

	// 保持连接，读取消息（主要用于检测断开）
	go func() {
		defer h.hub.Unregister(client)
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				break
			}
		}
	}()
}

// RunEventBridge 订阅 Redis 事件流并推送给对应的在线用户，阻塞直到 ctx 取消
func RunEventBridge(ctx context.Context, subscriber *pubsub.Subscriber, hub *ws.Hub) {
	err := subscriber.Subscribe(ctx, func(event *pubsub.Event) {
		if !hub.IsOnline(event.UserID) {
			return
		}
		if err := hub.SendToUser(event.UserID, &ws.Message{
			Type: event.Type,
			Data: event.Data,
		}); err != nil {
			log.Printf("Failed to push event to user %d: %v", event.UserID, err)
		}
	})
	if err != nil && err != context.Canceled {
		log.Printf("Event bridge stopped: %v", err)
	}
}
