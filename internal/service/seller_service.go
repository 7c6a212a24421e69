package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"stella-settlement-api/internal/constant"
	"stella-settlement-api/internal/dao"
	"stella-settlement-api/internal/dto"
)

// SellerService 寄售人收款账户开通与状态查询
type SellerService struct {
	mainDao       *dao.MainDao
	accounts      AccountProvider
	onboardingURL string
	log           logrus.FieldLogger
}

func NewSellerService(db *gorm.DB, accounts AccountProvider, onboardingURL string, log logrus.FieldLogger) *SellerService {
	return &SellerService{mainDao: dao.NewMainDao(db), accounts: accounts, onboardingURL: onboardingURL, log: log}
}

// Connect 没有账户时创建，资料未提交时返回开通链接
func (s *SellerService) Connect(ctx context.Context, sellerID string, req dto.ConnectSellerReq) (*dto.SellerConnectVO, error) {
	seller, err := s.mainDao.GetSeller(ctx, sellerID)
	if err != nil {
		return nil, constant.Wrap(constant.CodeDatabaseError, err)
	}
	if seller == nil {
		return nil, constant.Errorf(constant.CodeSellerNotFound, "seller %s not found", sellerID)
	}
	l := s.log.WithFields(logrus.Fields{"seller_id": sellerID, "store_id": seller.StoreID})

	var acct *dto.ConnectedAccount
	if seller.ConnectedAccountID == "" {
		email := strings.TrimSpace(req.Email)
		if email == "" {
			email = seller.Email
		}
		if acct, err = s.accounts.CreateConnectedAccount(ctx, email); err != nil {
			return nil, err
		}
		if err := s.mainDao.SetSellerAccount(ctx, sellerID, acct.ID); err != nil {
			// 平台侧账户已建好，落库失败需要人工关联
			l.WithError(err).WithField("account_id", acct.ID).Error("save connected account failed")
			return nil, constant.Wrap(constant.CodeDatabaseError, err)
		}
		l.WithField("account_id", acct.ID).Info("connected account created")
	} else if acct, err = s.accounts.GetConnectedAccount(ctx, seller.ConnectedAccountID); err != nil {
		return nil, err
	}

	vo := &dto.SellerConnectVO{SellerID: sellerID, Account: acct}
	if !acct.DetailsSubmitted {
		refresh := firstNonEmpty(req.RefreshURL, s.onboardingURL)
		ret := firstNonEmpty(req.ReturnURL, s.onboardingURL)
		if vo.OnboardingURL, err = s.accounts.CreateOnboardingLink(ctx, acct.ID, refresh, ret); err != nil {
			return nil, err
		}
	}
	return vo, nil
}

// Status 未开通时 Account 为空
func (s *SellerService) Status(ctx context.Context, sellerID string) (*dto.SellerConnectVO, error) {
	seller, err := s.mainDao.GetSeller(ctx, sellerID)
	if err != nil {
		return nil, constant.Wrap(constant.CodeDatabaseError, err)
	}
	if seller == nil {
		return nil, constant.Errorf(constant.CodeSellerNotFound, "seller %s not found", sellerID)
	}
	vo := &dto.SellerConnectVO{SellerID: sellerID}
	if seller.ConnectedAccountID == "" {
		return vo, nil
	}
	if vo.Account, err = s.accounts.GetConnectedAccount(ctx, seller.ConnectedAccountID); err != nil {
		return nil, err
	}
	return vo, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
