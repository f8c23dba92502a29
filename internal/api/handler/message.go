package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/servswap/servswap_go_server/internal/api/middleware"
	"github.com/servswap/servswap_go_server/internal/model/dto"
	"github.com/servswap/servswap_go_server/internal/pkg/response"
	"github.com/servswap/servswap_go_server/internal/service"
)

type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
	}
}

// Send 在交换会话中发送消息
// POST /api/v1/swaps/:id/messages
func (h *MessageHandler) Send(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	swapID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的交换ID")
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	item, err := h.messageService.Send(swapID, userID, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, item)
}

// History 获取会话历史（含系统消息）
// GET /api/v1/swaps/:id/messages
func (h *MessageHandler) History(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	swapID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的交换ID")
		return
	}

	items, err := h.messageService.History(swapID, userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, items)
}

func (h *MessageHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSwapNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrSwapPermission):
		response.PermissionError(c, err.Error())
	default:
		response.ServerError(c, "")
	}
}
