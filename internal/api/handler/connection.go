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

type ConnectionHandler struct {
	connectionService *service.ConnectionService
}

func NewConnectionHandler(connectionService *service.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{
		connectionService: connectionService,
	}
}

// Request 发起连接请求
// POST /api/v1/connections
func (h *ConnectionHandler) Request(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	item, err := h.connectionService.Request(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConnectionSelf):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrConnectionExists):
			response.DuplicateError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "连接请求已发送", item)
}

// Accept 接受连接请求
// POST /api/v1/connections/:id/accept
func (h *ConnectionHandler) Accept(c *gin.Context) {
	h.respond(c, h.connectionService.Accept, "已接受连接请求")
}

// Decline 拒绝连接请求
// POST /api/v1/connections/:id/decline
func (h *ConnectionHandler) Decline(c *gin.Context) {
	h.respond(c, h.connectionService.Decline, "已拒绝连接请求")
}

// List 获取连接列表
// GET /api/v1/connections
func (h *ConnectionHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	status := c.Query("status")

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	items, total, err := h.connectionService.List(userID, status, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

func (h *ConnectionHandler) respond(c *gin.Context, fn func(int64, int64) (*dto.ConnectionItem, error), message string) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	connID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的连接请求ID")
		return
	}

	item, err := fn(connID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConnectionNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrConnectionPermission):
			response.PermissionError(c, err.Error())
		case errors.Is(err, service.ErrConnectionHandled):
			response.DuplicateError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, message, item)
}
