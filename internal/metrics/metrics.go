package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 结算相关 Prometheus 指标，nil 接收者上的方法都是空操作
type Metrics struct {
	settlements        *prometheus.CounterVec
	settleDuration     prometheus.Histogram
	transfers          *prometheus.CounterVec
	transferredMinor   *prometheus.CounterVec
	notifications      *prometheus.CounterVec
	httpRequestsTotal  *prometheus.CounterVec
	httpRequestLatency *prometheus.HistogramVec
}

// New 注册到指定 Registerer，测试时传入独立的 prometheus.NewRegistry()
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		settlements: f.NewCounterVec(prometheus.CounterOpts{
			Name: "settlements_total",
			Help: "结算请求结果",
		}, []string{"channel", "result"}),
		settleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "settlement_duration_seconds",
			Help:    "单次结算耗时（含转账）",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		transfers: f.NewCounterVec(prometheus.CounterOpts{
			Name: "settlement_transfers_total",
			Help: "转账次数，按收款人类型与结果",
		}, []string{"payee_type", "result"}),
		transferredMinor: f.NewCounterVec(prometheus.CounterOpts{
			Name: "settlement_transferred_minor_units_total",
			Help: "成功转账金额（最小货币单位）",
		}, []string{"currency", "payee_type"}),
		notifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "settlement_notifications_total",
			Help: "通知投递结果",
		}, []string{"kind", "result"}),
		httpRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		}, []string{"method", "endpoint", "status_code"}),
		httpRequestLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时分布",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
	}
}

// ObserveSettlement result: ok / duplicate / invalid / failed
func (m *Metrics) ObserveSettlement(channel, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.settlements.WithLabelValues(channel, result).Inc()
	m.settleDuration.Observe(d.Seconds())
}

// ObserveTransfer result 为错误分类，成功时为 ok
func (m *Metrics) ObserveTransfer(payeeType, currency, result string, amountMinor int64) {
	if m == nil {
		return
	}
	m.transfers.WithLabelValues(payeeType, result).Inc()
	if result == "ok" {
		m.transferredMinor.WithLabelValues(currency, payeeType).Add(float64(amountMinor))
	}
}

func (m *Metrics) ObserveNotification(kind, result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind, result).Inc()
}

// GinMiddleware 收集HTTP指标
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpRequestLatency.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
