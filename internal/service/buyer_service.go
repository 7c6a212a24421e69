package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"stella-settlement-api/internal/dao"
	"stella-settlement-api/internal/dto"
	"stella-settlement-api/internal/model"
)

// BuyerService 线上买家建档、优惠码与营销订阅
type BuyerService struct {
	mainDao       *dao.MainDao
	orderDao      *dao.OrderDao
	promo         PromoIssuer
	marketing     Marketing
	welcomeListID string
	percentOff    float64
	log           logrus.FieldLogger
}

// NewBuyerService promo / marketing 可以为 nil，对应步骤跳过
func NewBuyerService(db *gorm.DB, promo PromoIssuer, marketing Marketing, welcomeListID string, percentOff float64, log logrus.FieldLogger) *BuyerService {
	return &BuyerService{
		mainDao:       dao.NewMainDao(db),
		orderDao:      dao.NewOrderDao(db),
		promo:         promo,
		marketing:     marketing,
		welcomeListID: welcomeListID,
		percentOff:    percentOff,
		log:           log,
	}
}

// Register 查找或创建买家并关联订单，营销相关失败只记日志
func (s *BuyerService) Register(ctx context.Context, storeID string, buyer dto.Buyer, orderID uint64, total decimal.Decimal, items int) (string, error) {
	email := strings.ToLower(strings.TrimSpace(buyer.Email))
	if email == "" {
		return "", errors.New("buyer email is empty")
	}
	l := s.log.WithFields(logrus.Fields{"order_id": orderID, "store_id": storeID, "email": email})

	u, err := s.mainDao.FindUserByEmail(ctx, storeID, email)
	if err != nil {
		return "", err
	}
	created := false
	if u == nil {
		u = &model.User{StoreID: storeID, Email: email, Name: buyer.Name, Phone: buyer.Phone}
		if err := s.mainDao.CreateUser(ctx, u); err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return "", err
			}
			// 并发下单同一邮箱，另一请求已建档
			if u, err = s.mainDao.FindUserByEmail(ctx, storeID, email); err != nil || u == nil {
				return "", errors.New("buyer created concurrently but not found")
			}
		} else {
			created = true
			l.WithField("user_id", u.ID).Info("buyer created")
		}
	}

	if created {
		s.welcome(ctx, l, u)
	} else if u.MarketingProfileID == "" {
		s.ensureProfile(ctx, l, u)
	}

	if err := s.orderDao.AttachUser(ctx, orderID, u.ID); err != nil {
		l.WithError(err).Warn("attach buyer to order failed")
	}
	if err := s.mainDao.AddUserPurchase(ctx, u.ID, total, items); err != nil {
		l.WithError(err).Warn("update buyer totals failed")
	}
	return u.ID, nil
}

// 新买家：一次性优惠码 + 营销档案 + 欢迎列表
func (s *BuyerService) welcome(ctx context.Context, l logrus.FieldLogger, u *model.User) {
	promo := ""
	if s.promo != nil {
		code := "WELCOME-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
		p, err := s.promo.CreatePromotionCode(ctx, code, s.percentOff)
		if err != nil {
			l.WithError(err).Warn("create promotion code failed")
		} else {
			promo = p
		}
	}
	if s.marketing == nil {
		s.saveMarketing(ctx, l, u, "", promo)
		return
	}
	profileID, err := s.marketing.CreateProfile(ctx, u.Name, u.Email, promo)
	if err != nil {
		l.WithError(err).Warn("create marketing profile failed")
		s.saveMarketing(ctx, l, u, "", promo)
		return
	}
	if err := s.marketing.AddProfileToList(ctx, s.welcomeListID, profileID); err != nil {
		l.WithError(err).Warn("add profile to welcome list failed")
	}
	s.saveMarketing(ctx, l, u, profileID, promo)
}

// 老买家：补齐营销档案
func (s *BuyerService) ensureProfile(ctx context.Context, l logrus.FieldLogger, u *model.User) {
	if s.marketing == nil {
		return
	}
	profileID, err := s.marketing.FindProfileByEmail(ctx, u.Email)
	if err != nil {
		l.WithError(err).Warn("find marketing profile failed")
		return
	}
	if profileID == "" {
		if profileID, err = s.marketing.CreateProfile(ctx, u.Name, u.Email, u.PromoCode); err != nil {
			l.WithError(err).Warn("create marketing profile failed")
			return
		}
	}
	s.saveMarketing(ctx, l, u, profileID, u.PromoCode)
}

func (s *BuyerService) saveMarketing(ctx context.Context, l logrus.FieldLogger, u *model.User, profileID, promo string) {
	if profileID == "" && promo == "" {
		return
	}
	if err := s.mainDao.UpdateUserMarketing(ctx, u.ID, profileID, promo); err != nil {
		l.WithError(err).Warn("save marketing profile failed")
		return
	}
	if profileID != "" {
		u.MarketingProfileID = profileID
	}
	if promo != "" {
		u.PromoCode = promo
	}
}
