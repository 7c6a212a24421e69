package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stella-settlement-api/internal/middleware"
	"stella-settlement-api/internal/utils"
)

// OrderPayouts 对账：订单出款明细
func (h *SettlementHandler) OrderPayouts(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, utils.InvalidParams("invalid order id", middleware.TraceID(c)))
		return
	}
	vo, err := h.svc.OrderPayouts(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.Success(vo))
}
