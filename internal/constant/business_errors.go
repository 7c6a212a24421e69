package constant

// 业务级错误码 (2xxx)

// 店铺 / 寄售人
const (
	CodeStoreNotFound   = 2000 // 店铺不存在
	CodeSellerNotFound  = 2001 // 寄售人不存在
	CodeProductNotFound = 2002 // 商品不存在或不属于该店铺
)

// 订单
const (
	CodeOrderNotFound     = 2100 // 订单不存在
	CodeOrderAlreadyExist = 2101 // 订单已结算，请勿重复提交
	CodeProductArchived   = 2102 // 商品已售出（已归档）
)

// 转账
const (
	CodeTransferFailed        = 2300 // 转账失败
	CodeInsufficientFunds     = 2301 // 平台可用余额不足
	CodeInvalidTransferAmount = 2303 // 转账金额必须为正整数（最小货币单位）
	CodeInvalidDestination    = 2305 // 收款账户无效或不存在
)

// 结算
const (
	CodeSettlementFailed   = 2500 // 结算失败
	CodeSettlementNotPaid  = 2501 // 支付未完成，不能结算
	CodeSettlementCurrency = 2502 // 店铺币种配置错误
)

// 通知
const (
	CodeNotifyFailed = 2700 // 通知发送失败
)
