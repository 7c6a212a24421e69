package dto

import "github.com/shopspring/decimal"

// TransferRequest 资金划转请求，金额为最小货币单位
type TransferRequest struct {
	AmountMinor          int64
	Currency             string
	DestinationAccountID string
	TransferGroup        string
	IdempotencyKey       string
	Metadata             map[string]string
}

// PayoutEntry 出款流水入参
type PayoutEntry struct {
	StoreID            string
	PayeeID            string
	PayeeType          string
	Amount             decimal.Decimal
	Currency           string
	TransferGroup      string
	ExternalTransferID string
	OrderID            uint64
}

// CheckoutSession 支付平台结账会话
type CheckoutSession struct {
	ID              string
	Paid            bool
	PaymentIntentID string
	Metadata        map[string]string
	Buyer           *Buyer
}

// ConnectedAccount 关联收款账户
type ConnectedAccount struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	ChargesEnabled   bool   `json:"chargesEnabled"`
	PayoutsEnabled   bool   `json:"payoutsEnabled"`
	DetailsSubmitted bool   `json:"detailsSubmitted"`
}
