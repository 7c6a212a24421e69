package dto

import "github.com/shopspring/decimal"

// PayoutVO 出款流水展示
type PayoutVO struct {
	ID                 string          `json:"id"`
	PayeeID            string          `json:"payeeId"`
	PayeeType          string          `json:"payeeType"`
	Amount             decimal.Decimal `json:"amount"`
	Currency           string          `json:"currency"`
	TransferGroup      string          `json:"transferGroup"`
	ExternalTransferID string          `json:"externalTransferId"`
	CreatedAt          string          `json:"createdAt"`
}

// OrderPayoutsVO 订单对账
type OrderPayoutsVO struct {
	OrderID          uint64          `json:"orderId,string"`
	StoreID          string          `json:"storeId"`
	Currency         string          `json:"currency"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	ExpectedNet      decimal.Decimal `json:"expectedNet"`
	PaidOut          decimal.Decimal `json:"paidOut"`
	Outstanding      decimal.Decimal `json:"outstanding"`
	SettlementStatus string          `json:"settlementStatus"`
	FailedPayees     []string        `json:"failedPayees,omitempty"`
	Payouts          []PayoutVO      `json:"payouts"`
}

// SellerConnectVO 收款账户开通结果
type SellerConnectVO struct {
	SellerID      string            `json:"sellerId"`
	Account       *ConnectedAccount `json:"account"`
	OnboardingURL string            `json:"onboardingUrl,omitempty"`
}
