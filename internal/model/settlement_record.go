package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	SettlementRecorded = "RECORDED" // 订单已落库，转账未完成
	SettlementSettled  = "SETTLED"  // 所有转账成功
	SettlementPartial  = "PARTIAL"  // 部分收款人转账失败
)

// SettleSnapshot 结算时的费用拆分快照
type SettleSnapshot struct {
	TotalSales          decimal.Decimal            `json:"totalSales"`
	TotalFeePct         decimal.Decimal            `json:"totalFeePct"`
	TotalFees           decimal.Decimal            `json:"totalFees"`
	TotalSalesAfterFees decimal.Decimal            `json:"totalSalesAfterFees"`
	FlatSurcharge       decimal.Decimal            `json:"flatSurcharge"`
	StoreCut            decimal.Decimal            `json:"storeCut"`
	SellerPayouts       map[string]decimal.Decimal `json:"sellerPayouts"`
	Currency            string                     `json:"currency"`
}

func (s *SettleSnapshot) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	case nil:
		return nil
	default:
		return fmt.Errorf("SettleSnapshot scan failed: %v", value)
	}
}

func (s SettleSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// SettlementRecord 结算幂等记录，与订单同一事务写入
type SettlementRecord struct {
	ID            string         `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	SettlementKey string         `gorm:"column:settlement_key;size:191;not null;uniqueIndex" json:"settlementKey"`
	StoreID       string         `gorm:"column:store_id;type:varchar(36);not null" json:"storeId"`
	OrderID       uint64         `gorm:"column:order_id;index;not null" json:"orderId,string"`
	Channel       string         `gorm:"column:channel;size:10;not null" json:"channel"`
	Status        string         `gorm:"column:status;size:10;not null" json:"status"`
	FailedPayees  string         `gorm:"column:failed_payees;type:text" json:"failedPayees"` // 逗号分隔
	Snapshot      SettleSnapshot `gorm:"column:snapshot;type:json" json:"snapshot"`
	CreatedAt     time.Time      `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt     time.Time      `gorm:"column:updated_at" json:"updatedAt"`
}

func (SettlementRecord) TableName() string {
	return "s_settlement_record"
}

func (r *SettlementRecord) BeforeCreate(*gorm.DB) error {
	newID(&r.ID)
	return nil
}
