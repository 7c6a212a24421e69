package dao

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stella-settlement-api/internal/model"
)

// MainDao 店铺、寄售人、店员、买家
type MainDao struct {
	DB *gorm.DB
}

// 支持传入自定义 DB（比如 txDB）
func NewMainDao(db *gorm.DB) *MainDao {
	return &MainDao{DB: db}
}

// 安全检查方法
func (r *MainDao) checkDB() error {
	if r == nil {
		return errors.New("MainDao is nil")
	}
	if r.DB == nil {
		return errors.New("DB connection is nil")
	}
	return nil
}

// WithTransaction 执行事务操作
func (r *MainDao) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Transaction(fn)
}

// GetStore 不存在时返回 nil, nil
func (r *MainDao) GetStore(ctx context.Context, id string) (*model.Store, error) {
	if err := r.checkDB(); err != nil {
		return nil, fmt.Errorf("get store failed: %w", err)
	}
	var m model.Store
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query store %s failed: %w", id, err)
	}
	return &m, nil
}

func (r *MainDao) GetSeller(ctx context.Context, id string) (*model.Seller, error) {
	if err := r.checkDB(); err != nil {
		return nil, fmt.Errorf("get seller failed: %w", err)
	}
	var m model.Seller
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query seller %s failed: %w", id, err)
	}
	return &m, nil
}

// SetSellerAccount 写入寄售人收款账户
func (r *MainDao) SetSellerAccount(ctx context.Context, sellerID, accountID string) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Model(&model.Seller{}).
		Where("id = ?", sellerID).
		Update("connected_account_id", accountID).Error
}

// IncrSellerSold 累加寄售人已售件数
func (r *MainDao) IncrSellerSold(ctx context.Context, sellerID string, n int) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	res := r.DB.WithContext(ctx).Model(&model.Seller{}).
		Where("id = ?", sellerID).
		UpdateColumn("sold_count", gorm.Expr("sold_count + ?", n))
	if res.Error != nil {
		return fmt.Errorf("incr seller %s sold count: %w", sellerID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("seller %s not found", sellerID)
	}
	return nil
}

// AddStaffSale 店员业绩累加（一笔交易）
func (r *MainDao) AddStaffSale(ctx context.Context, staffID string, amount decimal.Decimal, items int) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	res := r.DB.WithContext(ctx).Model(&model.Staff{}).
		Where("id = ?", staffID).
		UpdateColumns(map[string]interface{}{
			"total_sales":        gorm.Expr("total_sales + ?", amount),
			"total_items_sold":   gorm.Expr("total_items_sold + ?", items),
			"total_transactions": gorm.Expr("total_transactions + ?", 1),
		})
	if res.Error != nil {
		return fmt.Errorf("update staff %s totals: %w", staffID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("staff %s not found", staffID)
	}
	return nil
}

func (r *MainDao) GetStaff(ctx context.Context, id string) (*model.Staff, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	var m model.Staff
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query staff %s failed: %w", id, err)
	}
	return &m, nil
}

func (r *MainDao) GetUser(ctx context.Context, id string) (*model.User, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	var m model.User
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user %s failed: %w", id, err)
	}
	return &m, nil
}

// FindUserByEmail 同一店铺内邮箱唯一
func (r *MainDao) FindUserByEmail(ctx context.Context, storeID, email string) (*model.User, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	var m model.User
	err := r.DB.WithContext(ctx).Where("store_id = ? AND email = ?", storeID, email).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user by email failed: %w", err)
	}
	return &m, nil
}

// CreateUser 邮箱冲突时返回 gorm.ErrDuplicatedKey（需开启 TranslateError）
func (r *MainDao) CreateUser(ctx context.Context, u *model.User) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Create(u).Error
}

// AddUserPurchase 买家消费累加（一笔交易）
func (r *MainDao) AddUserPurchase(ctx context.Context, userID string, amount decimal.Decimal, items int) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	res := r.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		UpdateColumns(map[string]interface{}{
			"total_purchases":    gorm.Expr("total_purchases + ?", amount),
			"total_items_bought": gorm.Expr("total_items_bought + ?", items),
			"total_transactions": gorm.Expr("total_transactions + ?", 1),
		})
	if res.Error != nil {
		return fmt.Errorf("update user %s totals: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s not found", userID)
	}
	return nil
}

// UpdateUserMarketing 回写营销平台档案与优惠码
func (r *MainDao) UpdateUserMarketing(ctx context.Context, userID, profileID, promoCode string) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	data := map[string]interface{}{}
	if profileID != "" {
		data["marketing_profile_id"] = profileID
	}
	if promoCode != "" {
		data["promo_code"] = promoCode
	}
	if len(data) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Updates(data).Error
}
