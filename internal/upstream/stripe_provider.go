package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"stella-settlement-api/internal/constant"
	"stella-settlement-api/internal/dto"
)

// StripeOptions BackendURL 为空时使用官方地址
type StripeOptions struct {
	SecretKey      string
	BackendURL     string
	AccountCountry string
	HTTPClient     *http.Client
}

// StripeProvider Stripe Connect 实现
type StripeProvider struct {
	api     *client.API
	country string
	log     logrus.FieldLogger
}

func NewStripeProvider(opt StripeOptions, log logrus.FieldLogger) *StripeProvider {
	cfg := &stripe.BackendConfig{
		LeveledLogger:     log,
		MaxNetworkRetries: stripe.Int64(0), // 不做本地重试
	}
	if opt.BackendURL != "" {
		cfg.URL = stripe.String(opt.BackendURL)
	}
	if opt.HTTPClient != nil {
		cfg.HTTPClient = opt.HTTPClient
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, cfg)

	api := &client.API{}
	api.Init(opt.SecretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})

	country := opt.AccountCountry
	if country == "" {
		country = "GB"
	}
	return &StripeProvider{api: api, country: country, log: log}
}

func (p *StripeProvider) CreateTransfer(ctx context.Context, req dto.TransferRequest) (string, error) {
	params := &stripe.TransferParams{
		Amount:        stripe.Int64(req.AmountMinor),
		Currency:      stripe.String(strings.ToLower(req.Currency)),
		Destination:   stripe.String(req.DestinationAccountID),
		TransferGroup: stripe.String(req.TransferGroup),
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	tr, err := p.api.Transfers.New(params)
	if err != nil {
		return "", mapStripeError(err)
	}
	return tr.ID, nil
}

func (p *StripeProvider) GetCheckoutSession(ctx context.Context, sessionID string) (*dto.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := p.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, mapStripeError(err)
	}

	out := &dto.CheckoutSession{
		ID:       s.ID,
		Paid:     s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Metadata: s.Metadata,
	}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}
	if cd := s.CustomerDetails; cd != nil {
		b := &dto.Buyer{Email: cd.Email, Name: cd.Name, Phone: cd.Phone}
		if a := cd.Address; a != nil {
			b.AddressLine1 = a.Line1
			b.AddressLine2 = a.Line2
			b.City = a.City
			b.PostalCode = a.PostalCode
			b.Country = a.Country
		}
		out.Buyer = b
	}
	return out, nil
}

func (p *StripeProvider) CreateConnectedAccount(ctx context.Context, email string) (*dto.ConnectedAccount, error) {
	params := &stripe.AccountParams{
		Type:    stripe.String(string(stripe.AccountTypeExpress)),
		Country: stripe.String(p.country),
	}
	if email != "" {
		params.Email = stripe.String(email)
	}
	params.Context = ctx
	a, err := p.api.Accounts.New(params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return toAccount(a), nil
}

func (p *StripeProvider) GetConnectedAccount(ctx context.Context, accountID string) (*dto.ConnectedAccount, error) {
	params := &stripe.AccountParams{}
	params.Context = ctx
	a, err := p.api.Accounts.GetByID(accountID, params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return toAccount(a), nil
}

func (p *StripeProvider) CreateOnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String("account_onboarding"),
	}
	params.Context = ctx
	link, err := p.api.AccountLinks.New(params)
	if err != nil {
		return "", mapStripeError(err)
	}
	return link.URL, nil
}

// CreatePromotionCode 一次性优惠码：先建优惠券再绑定码
func (p *StripeProvider) CreatePromotionCode(ctx context.Context, code string, percentOff float64) (string, error) {
	cp := &stripe.CouponParams{
		PercentOff:     stripe.Float64(percentOff),
		Duration:       stripe.String(string(stripe.CouponDurationOnce)),
		MaxRedemptions: stripe.Int64(1),
	}
	cp.Context = ctx
	coupon, err := p.api.Coupons.New(cp)
	if err != nil {
		return "", mapStripeError(err)
	}

	pp := &stripe.PromotionCodeParams{
		Coupon:         stripe.String(coupon.ID),
		Code:           stripe.String(code),
		MaxRedemptions: stripe.Int64(1),
	}
	pp.Context = ctx
	promo, err := p.api.PromotionCodes.New(pp)
	if err != nil {
		return "", mapStripeError(err)
	}
	return promo.Code, nil
}

func toAccount(a *stripe.Account) *dto.ConnectedAccount {
	return &dto.ConnectedAccount{
		ID:               a.ID,
		Email:            a.Email,
		ChargesEnabled:   a.ChargesEnabled,
		PayoutsEnabled:   a.PayoutsEnabled,
		DetailsSubmitted: a.DetailsSubmitted,
	}
}

// mapStripeError 平台错误码归类，余额不足与收款账户无效单独区分
func mapStripeError(err error) error {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return constant.Wrap(constant.CodeUpstreamError, err)
	}
	switch se.Code {
	case stripe.ErrorCodeBalanceInsufficient, stripe.ErrorCodeInsufficientFunds:
		return constant.Wrapf(constant.CodeInsufficientFunds, err, "insufficient platform balance: %s", se.Msg)
	case stripe.ErrorCodeAccountInvalid, stripe.ErrorCodeResourceMissing:
		return constant.Wrapf(constant.CodeInvalidDestination, err, "invalid destination: %s", se.Msg)
	}
	if se.HTTPStatusCode >= 400 && se.HTTPStatusCode < 500 {
		return constant.Wrapf(constant.CodeUpstreamRejected, err, "stripe rejected request: %s", se.Msg)
	}
	return constant.Wrap(constant.CodeUpstreamError, fmt.Errorf("stripe: %w", err))
}
