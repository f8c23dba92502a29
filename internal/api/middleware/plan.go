package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/servswap/servswap_go_server/internal/pkg/response"
	"github.com/servswap/servswap_go_server/internal/service"
)

// RequireActivePlan 主套餐门禁：订阅未生效时拒绝并引导用户去选择套餐
func RequireActivePlan(subscriptionService *service.SubscriptionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}

		active, err := subscriptionService.HasActivePlan(userID)
		if err != nil {
			response.ServerError(c, "订阅状态检查失败")
			c.Abort()
			return
		}

		if !active {
			response.PlanRequiredError(c, "当前没有生效的订阅，请先选择套餐")
			c.Abort()
			return
		}

		c.Next()
	}
}
