package dao

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"stella-settlement-api/internal/model"
)

// OrderDao 订单、明细、商品、结算记录
type OrderDao struct {
	DB *gorm.DB
}

// 支持传入自定义 DB（比如 txDB）
func NewOrderDao(db *gorm.DB) *OrderDao {
	return &OrderDao{DB: db}
}

// 安全检查方法
func (r *OrderDao) checkDB() error {
	if r == nil {
		return errors.New("OrderDao is nil")
	}
	if r.DB == nil {
		return errors.New("DB connection is nil")
	}
	return nil
}

// ListProductsForSettlement 按店铺查询商品并预加载寄售人
func (r *OrderDao) ListProductsForSettlement(ctx context.Context, storeID string, ids []string) ([]model.Product, error) {
	if err := r.checkDB(); err != nil {
		return nil, fmt.Errorf("list products failed: %w", err)
	}
	var list []model.Product
	err := r.DB.WithContext(ctx).
		Preload("Seller").
		Where("store_id = ? AND id IN ?", storeID, ids).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("query products failed: %w", err)
	}
	return list, nil
}

// ArchiveProducts 条件归档：只更新未归档的行，返回实际更新行数
func (r *OrderDao) ArchiveProducts(ctx context.Context, storeID string, ids []string) (int64, error) {
	if err := r.checkDB(); err != nil {
		return 0, err
	}
	res := r.DB.WithContext(ctx).Model(&model.Product{}).
		Where("store_id = ? AND id IN ? AND archived = ?", storeID, ids, false).
		Update("archived", true)
	if res.Error != nil {
		return 0, fmt.Errorf("archive products failed: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// StampSoldBy 记录门店成交店员
func (r *OrderDao) StampSoldBy(ctx context.Context, storeID string, ids []string, staffID string) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Model(&model.Product{}).
		Where("store_id = ? AND id IN ?", storeID, ids).
		Update("sold_by_staff_id", staffID).Error
}

func (r *OrderDao) InsertOrder(ctx context.Context, o *model.Order) error {
	if err := r.checkDB(); err != nil {
		return fmt.Errorf("insert order failed: %w", err)
	}
	return r.DB.WithContext(ctx).Omit("Items").Create(o).Error
}

// InsertItems 批量写入订单明细
func (r *OrderDao) InsertItems(ctx context.Context, items []model.OrderItem) error {
	if err := r.checkDB(); err != nil {
		return fmt.Errorf("insert order items failed: %w", err)
	}
	if len(items) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Create(&items).Error
}

// GetOrder 带明细，不存在时返回 nil, nil
func (r *OrderDao) GetOrder(ctx context.Context, id uint64) (*model.Order, error) {
	if err := r.checkDB(); err != nil {
		return nil, fmt.Errorf("get order failed: %w", err)
	}
	var m model.Order
	err := r.DB.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query order %d failed: %w", id, err)
	}
	return &m, nil
}

// AttachUser 订单关联买家
func (r *OrderDao) AttachUser(ctx context.Context, orderID uint64, userID string) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("user_id", userID).Error
}

// GetSettlementRecord 不存在时返回 nil, nil
func (r *OrderDao) GetSettlementRecord(ctx context.Context, key string) (*model.SettlementRecord, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	var m model.SettlementRecord
	err := r.DB.WithContext(ctx).Where("settlement_key = ?", key).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query settlement record failed: %w", err)
	}
	return &m, nil
}

func (r *OrderDao) GetSettlementRecordByOrder(ctx context.Context, orderID uint64) (*model.SettlementRecord, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	var m model.SettlementRecord
	err := r.DB.WithContext(ctx).Where("order_id = ?", orderID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query settlement record failed: %w", err)
	}
	return &m, nil
}

// InsertSettlementRecord 结算键重复时返回 gorm.ErrDuplicatedKey
func (r *OrderDao) InsertSettlementRecord(ctx context.Context, rec *model.SettlementRecord) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Create(rec).Error
}

// UpdateSettlementStatus 转账结束后回写状态
func (r *OrderDao) UpdateSettlementStatus(ctx context.Context, key, status, failedPayees string) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Model(&model.SettlementRecord{}).
		Where("settlement_key = ?", key).
		Updates(map[string]interface{}{"status": status, "failed_payees": failedPayees}).Error
}
