package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/servswap/servswap_go_server/internal/api/middleware"
	"github.com/servswap/servswap_go_server/internal/model/dto"
	"github.com/servswap/servswap_go_server/internal/pkg/payment"
	"github.com/servswap/servswap_go_server/internal/pkg/response"
	"github.com/servswap/servswap_go_server/internal/service"
)

type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

// List 获取当前用户的全部订阅
// GET /api/v1/subscriptions
func (h *SubscriptionHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	views, err := h.subscriptionService.ListAllForUser(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, views)
}

// Get 获取订阅实时详情（以服务商为准）
// GET /api/v1/subscriptions/:id
func (h *SubscriptionHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	info, err := h.subscriptionService.RefreshFromProvider(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, info)
}

// Cancel 期末取消订阅
// POST /api/v1/subscriptions/:id/cancel
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	resp, err := h.subscriptionService.Cancel(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "订阅将在本期结束后取消", resp)
}

// Resume 撤销期末取消
// POST /api/v1/subscriptions/:id/resume
func (h *SubscriptionHandler) Resume(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	resp, err := h.subscriptionService.Resume(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		// 线上服务商鉴权失败时降级：附带账单门户引导一并返回
		if errors.Is(err, service.ErrProviderAuth) && resp != nil {
			response.ErrorWithData(c, response.CodeAuthFailed, err.Error(), resp)
			return
		}
		h.writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "订阅已恢复", resp)
}

// Checkout 创建托管支付会话
// POST /api/v1/subscriptions/checkout
func (h *SubscriptionHandler) Checkout(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.subscriptionService.Checkout(c.Request.Context(), userID, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, resp)
}

// BillingPortal 打开账单门户
// POST /api/v1/subscriptions/portal
func (h *SubscriptionHandler) BillingPortal(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	resp, err := h.subscriptionService.OpenBillingPortal(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, resp)
}

func (h *SubscriptionHandler) writeError(c *gin.Context, err error) {
	var apiErr *payment.APIError

	switch {
	case errors.Is(err, service.ErrInvalidSubscriptionID):
		response.ParamError(c, err.Error())
	case errors.Is(err, service.ErrSubscriptionNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrSubscriptionOwnership):
		response.PermissionError(c, err.Error())
	case errors.Is(err, service.ErrNoCustomer):
		response.ParamError(c, err.Error())
	case errors.Is(err, service.ErrPlanNotFound):
		response.ParamError(c, err.Error())
	case errors.As(err, &apiErr):
		// 服务商错误消息原样透传
		response.ProviderError(c, apiErr.Message)
	default:
		response.ServerError(c, "")
	}
}
