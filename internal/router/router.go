package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"stella-settlement-api/internal/handler"
	"stella-settlement-api/internal/metrics"
	"stella-settlement-api/internal/middleware"
)

type Options struct {
	Mode       string
	HMACSecret string
	Settlement handler.Settler
	Sellers    handler.SellerConnector
	Metrics    *metrics.Metrics
	Gatherer   prometheus.Gatherer
	Log        logrus.FieldLogger
	AccessLog  logrus.FieldLogger
}

func New(o Options) *gin.Engine {
	if o.Mode != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	if o.AccessLog == nil {
		o.AccessLog = o.Log
	}
	r := gin.New()
	// 设置可信代理 IP（如本地或内网）
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "10.0.0.0/8", "192.168.0.0/16"})
	r.Use(middleware.Trace(), middleware.Recover(o.Log), middleware.RequestLogger(o.AccessLog), o.Metrics.GinMiddleware())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if o.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(o.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/api/v1")
	{
		sh := handler.NewSettlementHandler(o.Settlement, o.Log)
		v1.POST("/settlements/webhook", sh.Webhook)
		v1.GET("/settlements/checkout", sh.Checkout)
		v1.POST("/settlements/pos", middleware.AuthHMAC(o.HMACSecret), sh.Pos)
		v1.GET("/orders/:id/payouts", sh.OrderPayouts)
	}
	if o.Sellers != nil {
		seh := handler.NewSellerHandler(o.Sellers, o.Log)
		v1.POST("/sellers/:id/connect", middleware.AuthHMAC(o.HMACSecret), seh.Connect)
		v1.GET("/sellers/:id/connect", seh.Status)
	}
	return r
}
