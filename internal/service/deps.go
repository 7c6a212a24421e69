package service

import (
	"context"

	"stella-settlement-api/internal/dto"
	"stella-settlement-api/internal/model"
)

// 以下接口由 upstream / cache / notify / idgen 中的实现满足，测试时替换

type Transferer interface {
	Transfer(ctx context.Context, req dto.TransferRequest) (string, error)
}

type SessionFetcher interface {
	GetCheckoutSession(ctx context.Context, sessionID string) (*dto.CheckoutSession, error)
}

type StoreGetter interface {
	Get(ctx context.Context, id string) (*model.Store, error)
}

type Locker interface {
	Acquire(ctx context.Context, settlementKey string) (release func(), ok bool, err error)
}

type IDGenerator interface {
	Next() uint64
}

type Alerter interface {
	Alert(title string, fields [][2]string)
}

type Marketing interface {
	FindProfileByEmail(ctx context.Context, email string) (string, error)
	CreateProfile(ctx context.Context, name, email, promo string) (string, error)
	AddProfileToList(ctx context.Context, listID, profileID string) error
}

type PromoIssuer interface {
	CreatePromotionCode(ctx context.Context, code string, percentOff float64) (string, error)
}

type AccountProvider interface {
	CreateConnectedAccount(ctx context.Context, email string) (*dto.ConnectedAccount, error)
	GetConnectedAccount(ctx context.Context, accountID string) (*dto.ConnectedAccount, error)
	CreateOnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error)
}
