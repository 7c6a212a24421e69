package dto

// CheckoutWebhookReq 支付平台结账完成回调（metadata 形态）
type CheckoutWebhookReq struct {
	ID       string            `json:"id"`
	Metadata map[string]string `json:"metadata" binding:"required"`
	Customer *Buyer            `json:"customer"`
}

// PosCaptureReq 门店终端收款完成
type PosCaptureReq struct {
	StoreID         string   `json:"storeId" binding:"required"`
	ProductIDs      []string `json:"productIds" binding:"required,min=1"`
	SoldByStaffID   string   `json:"soldByStaffId"`
	UserID          string   `json:"userId"`
	IsCash          bool     `json:"isCash"`
	PaymentIntentID string   `json:"paymentIntentId"`
	IdempotencyKey  string   `json:"idempotencyKey"`
}

// ConnectSellerReq 寄售人开通收款账户
type ConnectSellerReq struct {
	Email      string `json:"email" binding:"omitempty,email"`
	ReturnURL  string `json:"returnUrl" binding:"omitempty,url"`
	RefreshURL string `json:"refreshUrl" binding:"omitempty,url"`
}
