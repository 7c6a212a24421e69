package constant

import "net/http"

// 错误分类，对外返回的 errorCode
const (
	KindInvalidInput          = "INVALID_INPUT"
	KindDuplicateSettlement   = "DUPLICATE_SETTLEMENT"
	KindPersistenceFailure    = "PERSISTENCE_FAILURE"
	KindTransferFailure       = "TRANSFER_FAILED"
	KindInsufficientFunds     = "INSUFFICIENT_FUNDS"
	KindInvalidDestination    = "INVALID_DESTINATION"
	KindInvalidTransferAmount = "INVALID_TRANSFER_AMOUNT"
	KindNotificationFailure   = "NOTIFICATION_FAILED"
	KindNotFound              = "NOT_FOUND"
	KindUnauthorized          = "UNAUTHORIZED"
	KindUpstream              = "UPSTREAM_ERROR"
	KindSystem                = "SYSTEM_ERROR"
)

// ErrorInfo 错误信息结构
type ErrorInfo struct {
	Kind   string `json:"kind"`
	Status int    `json:"status"` // HTTP 状态码
	CN     string `json:"cn"`     // 中文错误信息
	EN     string `json:"en"`     // 英文错误信息
}

// ErrorMessages 错误信息映射
var ErrorMessages = map[int]ErrorInfo{
	// 系统错误
	CodeSuccess:       {"", http.StatusOK, "操作成功", "Success"},
	CodeSystemError:   {KindSystem, http.StatusInternalServerError, "系统错误", "System error"},
	CodeDatabaseError: {KindPersistenceFailure, http.StatusInternalServerError, "数据库错误", "Persistence failure"},
	CodeRedisError:    {KindSystem, http.StatusInternalServerError, "缓存服务错误", "Cache error"},
	CodeTimeout:       {KindSystem, http.StatusGatewayTimeout, "请求超时", "Request timeout"},

	// 参数错误
	CodeInvalidParams:    {KindInvalidInput, http.StatusBadRequest, "参数格式错误", "Invalid input"},
	CodeMissingParams:    {KindInvalidInput, http.StatusBadRequest, "缺少必要参数", "Missing required parameter"},
	CodeParamsRangeError: {KindInvalidInput, http.StatusBadRequest, "参数超出范围", "Parameter out of range"},
	CodeDuplicateRequest: {KindDuplicateSettlement, http.StatusConflict, "结算处理中，请勿重复提交", "Settlement already in progress"},

	// 认证
	CodeUnauthorized:   {KindUnauthorized, http.StatusUnauthorized, "未授权访问", "Unauthorized"},
	CodeSignatureError: {KindUnauthorized, http.StatusUnauthorized, "签名验证失败", "Bad signature"},

	// 店铺 / 寄售人 / 商品
	CodeStoreNotFound:   {KindInvalidInput, http.StatusBadRequest, "店铺不存在", "Store not found"},
	CodeSellerNotFound:  {KindNotFound, http.StatusNotFound, "寄售人不存在", "Seller not found"},
	CodeProductNotFound: {KindInvalidInput, http.StatusBadRequest, "商品不存在", "Product not found"},

	// 订单
	CodeOrderNotFound:     {KindNotFound, http.StatusNotFound, "订单不存在", "Order not found"},
	CodeOrderAlreadyExist: {KindDuplicateSettlement, http.StatusConflict, "订单已结算", "Order already settled"},
	CodeProductArchived:   {KindDuplicateSettlement, http.StatusConflict, "商品已售出", "Product already sold"},

	// 转账
	CodeTransferFailed:        {KindTransferFailure, http.StatusBadGateway, "转账失败", "Transfer failed"},
	CodeInsufficientFunds:     {KindInsufficientFunds, http.StatusBadGateway, "平台余额不足", "Insufficient platform balance"},
	CodeInvalidTransferAmount: {KindInvalidTransferAmount, http.StatusBadRequest, "转账金额无效", "Invalid transfer amount"},
	CodeInvalidDestination:    {KindInvalidDestination, http.StatusBadRequest, "收款账户无效", "Invalid destination account"},

	// 结算
	CodeSettlementFailed:   {KindPersistenceFailure, http.StatusInternalServerError, "结算失败", "Settlement failed"},
	CodeSettlementNotPaid:  {KindInvalidInput, http.StatusBadRequest, "支付未完成", "Payment not completed"},
	CodeSettlementCurrency: {KindInvalidInput, http.StatusBadRequest, "店铺币种配置错误", "Store currency misconfigured"},

	// 通知
	CodeNotifyFailed: {KindNotificationFailure, http.StatusBadGateway, "通知发送失败", "Notification failed"},

	// 上游
	CodeUpstreamError:    {KindUpstream, http.StatusBadGateway, "上游服务错误", "Upstream error"},
	CodeUpstreamRejected: {KindUpstream, http.StatusBadGateway, "上游拒绝请求", "Upstream rejected the request"},
}
