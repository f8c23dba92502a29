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

type ListingHandler struct {
	listingService *service.ListingService
}

func NewListingHandler(listingService *service.ListingService) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
	}
}

// Create 发布服务
// POST /api/v1/listings
func (h *ListingHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	item, err := h.listingService.Create(userID, &req)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "服务已发布", item)
}

// List 浏览服务列表
// GET /api/v1/listings
func (h *ListingHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	category := c.Query("category")
	keyword := c.Query("keyword")

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	items, total, err := h.listingService.List(category, keyword, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// Get 获取服务详情
// GET /api/v1/listings/:id
func (h *ListingHandler) Get(c *gin.Context) {
	listingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的服务ID")
		return
	}

	item, err := h.listingService.Get(listingID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrListingNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, item)
}

// ListByUser 获取指定用户的服务
// GET /api/v1/users/:id/listings
func (h *ListingHandler) ListByUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的用户ID")
		return
	}

	items, err := h.listingService.ListByUser(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, items)
}

// Update 更新服务
// PUT /api/v1/listings/:id
func (h *ListingHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	listingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的服务ID")
		return
	}

	var req dto.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	item, err := h.listingService.Update(listingID, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrListingNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrListingPermission):
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "服务已更新", item)
}

// Delete 删除服务
// DELETE /api/v1/listings/:id
func (h *ListingHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	listingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的服务ID")
		return
	}

	if err := h.listingService.Delete(listingID, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrListingNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrListingPermission):
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "服务已删除", nil)
}
