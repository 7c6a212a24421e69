package upstream

import (
	"context"

	"stella-settlement-api/internal/dto"
)

// Provider 支付平台能力：转账、结账会话、关联账户、优惠码
type Provider interface {
	CreateTransfer(ctx context.Context, req dto.TransferRequest) (string, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*dto.CheckoutSession, error)
	CreateConnectedAccount(ctx context.Context, email string) (*dto.ConnectedAccount, error)
	GetConnectedAccount(ctx context.Context, accountID string) (*dto.ConnectedAccount, error)
	CreateOnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error)
	CreatePromotionCode(ctx context.Context, code string, percentOff float64) (string, error)
}
