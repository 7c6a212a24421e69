package dto

import "github.com/shopspring/decimal"

// LineItem 参与结算的单件商品
type LineItem struct {
	ProductID          string
	SellerID           string
	SalePrice          decimal.Decimal
	ConsignmentRate    *decimal.Decimal // 为空取 FeeConfig.DefaultConsignmentRate
	ConnectedAccountID string           // 寄售人收款账户，为空则不出款
}

// FeeConfig 费率配置，百分比均为 0-100
type FeeConfig struct {
	ProcessorFeePct        decimal.Decimal
	PlatformFeePct         decimal.Decimal
	DefaultConsignmentRate decimal.Decimal
	FlatSurcharge          decimal.Decimal // 线上运费，门店销售为 0
}

// SettlementResult 结算数据
type SettlementResult struct {
	TotalSales          decimal.Decimal            `json:"totalSales"`
	TotalFeePct         decimal.Decimal            `json:"totalFeePct"`
	TotalFees           decimal.Decimal            `json:"totalFees"`
	TotalSalesAfterFees decimal.Decimal            `json:"totalSalesAfterFees"`
	FlatSurcharge       decimal.Decimal            `json:"flatSurcharge"`
	SellerPayouts       map[string]decimal.Decimal `json:"sellerPayouts"` // key: 收款账户
	StoreCut            decimal.Decimal            `json:"storeCut"`      // 含运费以及无收款账户寄售人的份额

	// 收款账户 -> 寄售人ID（升序），同一账户可能对应多个寄售人
	SellersByAccount map[string][]string `json:"-"`
	// 寄售人ID -> 分成（仅有收款账户的寄售人）
	SellerShares map[string]decimal.Decimal `json:"-"`
}

// Allocation 换算成最小货币单位后的出款计划
type Allocation struct {
	SellerMinor map[string]int64            // key: 收款账户
	ShareMinor  map[string]map[string]int64 // 收款账户 -> 寄售人ID -> 金额，合计等于 SellerMinor
	StoreMinor  int64
	TotalMinor  int64 // 商品净额 + 运费
}
