package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"stella-settlement-api/internal/constant"
	"stella-settlement-api/internal/dto"
	"stella-settlement-api/internal/middleware"
	"stella-settlement-api/internal/service"
	"stella-settlement-api/internal/utils"
)

// Settler 由 service.SettlementService 实现
type Settler interface {
	Settle(ctx context.Context, t dto.SettleTrigger) (*dto.SettleResult, error)
	SettleCheckoutSession(ctx context.Context, sessionID string) (*dto.SettleResult, error)
	OrderPayouts(ctx context.Context, orderID uint64) (*dto.OrderPayoutsVO, error)
}

type SettlementHandler struct {
	svc Settler
	log logrus.FieldLogger
}

func NewSettlementHandler(svc Settler, log logrus.FieldLogger) *SettlementHandler {
	return &SettlementHandler{svc: svc, log: log}
}

// Webhook 支付平台结账完成回调，重复投递返回 200 让对方停止重试
func (h *SettlementHandler) Webhook(c *gin.Context) {
	var req dto.CheckoutWebhookReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.InvalidParams(err.Error(), middleware.TraceID(c)))
		return
	}
	t, err := service.TriggerFromMetadata(req.Metadata, req.Customer)
	if err != nil {
		h.fail(c, err)
		return
	}
	if t.SessionID == "" {
		t.SessionID = req.ID
	}
	res, err := h.svc.Settle(c.Request.Context(), t)
	if err != nil {
		if constant.IsKind(err, constant.KindDuplicateSettlement) {
			h.log.WithField("session_id", t.SessionID).Infof("duplicate webhook: %v", err)
			c.JSON(http.StatusOK, utils.Duplicate(err, middleware.TraceID(c)))
			return
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.Settled(res))
}

// Checkout 结账成功页回跳，按 session_id 结算
func (h *SettlementHandler) Checkout(c *gin.Context) {
	res, err := h.svc.SettleCheckoutSession(c.Request.Context(), c.Query("session_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.Settled(res))
}

// Pos 门店终端收款完成（刷卡或现金）
func (h *SettlementHandler) Pos(c *gin.Context) {
	var req dto.PosCaptureReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.InvalidParams(err.Error(), middleware.TraceID(c)))
		return
	}
	channel := dto.ChannelCard
	if req.IsCash {
		channel = dto.ChannelCash
	}
	res, err := h.svc.Settle(c.Request.Context(), dto.SettleTrigger{
		StoreID:         req.StoreID,
		ProductIDs:      req.ProductIDs,
		Channel:         channel,
		SoldByStaffID:   req.SoldByStaffID,
		UserID:          req.UserID,
		PaymentIntentID: req.PaymentIntentID,
		IdempotencyKey:  req.IdempotencyKey,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.Settled(res))
}

func (h *SettlementHandler) fail(c *gin.Context, err error) {
	status, resp := utils.Error(err, middleware.TraceID(c))
	l := h.log.WithFields(logrus.Fields{"trace_id": middleware.TraceID(c), "path": c.FullPath()})
	if status >= http.StatusInternalServerError {
		l.WithError(err).Error("settlement request failed")
	} else {
		l.WithError(err).Warn("settlement request rejected")
	}
	_ = c.Error(err)
	c.JSON(status, resp)
}
