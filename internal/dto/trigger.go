package dto

import "github.com/shopspring/decimal"

// 销售渠道
const (
	ChannelOnline = "ONLINE"
	ChannelCard   = "CARD"
	ChannelCash   = "CASH"
)

// Buyer 买家信息，仅线上结账有
type Buyer struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	PostalCode   string `json:"postalCode"`
	Country      string `json:"country"`
}

// SettleTrigger 一次结算请求（线上结账完成或门店刷卡 / 现金）
type SettleTrigger struct {
	StoreID         string
	ProductIDs      []string
	Channel         string
	SoldByStaffID   string
	UserID          string
	Buyer           *Buyer
	SessionID       string
	PaymentIntentID string
	IdempotencyKey  string
	URLFrom         string
}

// InStore 门店销售（刷卡或现金）
func (t SettleTrigger) InStore() bool {
	return t.Channel == ChannelCard || t.Channel == ChannelCash
}

// PayoutResult 单个收款人的出款结果
type PayoutResult struct {
	PayeeID            string          `json:"payeeId"`
	PayeeType          string          `json:"payeeType"`
	Destination        string          `json:"destination"`
	Amount             decimal.Decimal `json:"amount"`
	AmountMinor        int64           `json:"amountMinor"`
	ExternalTransferID string          `json:"externalTransferId,omitempty"`
	Error              string          `json:"error,omitempty"`
	ErrorCode          string          `json:"errorCode,omitempty"`
}

// SettleResult 订单落库后即返回，转账失败不影响
type SettleResult struct {
	OrderID       uint64         `json:"orderId,string"`
	ProductIDs    []string       `json:"productIds"`
	TransferGroup string         `json:"transferGroup"`
	Payouts       []PayoutResult `json:"payouts"`
	FailedPayees  []string       `json:"failedPayees,omitempty"`
	Warnings      []string       `json:"warnings,omitempty"`
}
