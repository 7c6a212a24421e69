package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"stella-settlement-api/internal/dto"
	"stella-settlement-api/internal/middleware"
	"stella-settlement-api/internal/utils"
)

// SellerConnector 由 service.SellerService 实现
type SellerConnector interface {
	Connect(ctx context.Context, sellerID string, req dto.ConnectSellerReq) (*dto.SellerConnectVO, error)
	Status(ctx context.Context, sellerID string) (*dto.SellerConnectVO, error)
}

type SellerHandler struct {
	svc SellerConnector
	log logrus.FieldLogger
}

func NewSellerHandler(svc SellerConnector, log logrus.FieldLogger) *SellerHandler {
	return &SellerHandler{svc: svc, log: log}
}

func (h *SellerHandler) Connect(c *gin.Context) {
	var req dto.ConnectSellerReq
	// 请求体可以为空
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, utils.InvalidParams(err.Error(), middleware.TraceID(c)))
			return
		}
	}
	vo, err := h.svc.Connect(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.Success(vo))
}

func (h *SellerHandler) Status(c *gin.Context) {
	vo, err := h.svc.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.Success(vo))
}

func (h *SellerHandler) fail(c *gin.Context, err error) {
	status, resp := utils.Error(err, middleware.TraceID(c))
	h.log.WithError(err).WithField("seller_id", c.Param("id")).Warn("seller connect failed")
	_ = c.Error(err)
	c.JSON(status, resp)
}
