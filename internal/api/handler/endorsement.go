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

type EndorsementHandler struct {
	endorsementService *service.EndorsementService
}

func NewEndorsementHandler(endorsementService *service.EndorsementService) *EndorsementHandler {
	return &EndorsementHandler{
		endorsementService: endorsementService,
	}
}

// Endorse 提交评价
// POST /api/v1/endorsements
func (h *EndorsementHandler) Endorse(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.EndorseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	item, err := h.endorsementService.Endorse(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEndorseSelf):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrEndorseDuplicate):
			response.DuplicateError(c, err.Error())
		case errors.Is(err, service.ErrEndorseNoSwap):
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "评价已提交", item)
}

// ListForUser 获取指定用户收到的评价
// GET /api/v1/users/:id/endorsements
func (h *EndorsementHandler) ListForUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的用户ID")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	items, total, err := h.endorsementService.ListForUser(userID, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}
