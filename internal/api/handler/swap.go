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

type SwapHandler struct {
	swapService *service.SwapService
}

func NewSwapHandler(swapService *service.SwapService) *SwapHandler {
	return &SwapHandler{
		swapService: swapService,
	}
}

// Propose 发起交换提案
// POST /api/v1/swaps
func (h *SwapHandler) Propose(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.ProposeSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	item, err := h.swapService.Propose(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSwapSelf):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "提案已发送", item)
}

// List 获取我参与的交换列表
// GET /api/v1/swaps
func (h *SwapHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	sort := c.DefaultQuery("sort", "recent")

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	items, total, err := h.swapService.List(userID, page, pageSize, sort)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// Get 获取交换详情
// GET /api/v1/swaps/:id
func (h *SwapHandler) Get(c *gin.Context) {
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

	item, err := h.swapService.Get(swapID, userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, item)
}

// Accept 接受提案
// POST /api/v1/swaps/:id/accept
func (h *SwapHandler) Accept(c *gin.Context) {
	h.action(c, h.swapService.Accept, "已接受交换")
}

// Decline 拒绝提案
// POST /api/v1/swaps/:id/decline
func (h *SwapHandler) Decline(c *gin.Context) {
	h.action(c, h.swapService.Decline, "已拒绝交换")
}

// Cancel 取消交换
// POST /api/v1/swaps/:id/cancel
func (h *SwapHandler) Cancel(c *gin.Context) {
	h.action(c, h.swapService.Cancel, "已取消交换")
}

// MarkComplete 标记己方完成
// POST /api/v1/swaps/:id/complete
func (h *SwapHandler) MarkComplete(c *gin.Context) {
	h.action(c, h.swapService.MarkComplete, "已标记完成")
}

// MarkRead 标记提案已读
// POST /api/v1/swaps/:id/read
func (h *SwapHandler) MarkRead(c *gin.Context) {
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

	if err := h.swapService.MarkRead(swapID, userID); err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, nil)
}

// action 处理状态变更类端点的公共流程
func (h *SwapHandler) action(c *gin.Context, fn func(int64, int64) (*dto.SwapActionResponse, error), message string) {
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

	resp, err := fn(swapID, userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, message, resp)
}

func (h *SwapHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSwapNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrSwapPermission):
		response.PermissionError(c, err.Error())
	case errors.Is(err, service.ErrSwapTerminal):
		response.DuplicateError(c, err.Error())
	case errors.Is(err, service.ErrSwapNotPending):
		response.DuplicateError(c, err.Error())
	case errors.Is(err, service.ErrSwapNotAccepted):
		response.ParamError(c, err.Error())
	default:
		response.ServerError(c, "")
	}
}
