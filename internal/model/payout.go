package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PayeeSeller = "SELLER"
	PayeeStore  = "STORE"
)

// Payout 出款流水，只追加不修改；(transfer_group, external_transfer_id, payee_id) 唯一
// 多个寄售人共用收款账户时，同一笔转账按份额记多条
type Payout struct {
	ID                 string          `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	StoreID            string          `gorm:"column:store_id;type:varchar(36);index;not null" json:"storeId"`
	PayeeID            string          `gorm:"column:payee_id;type:varchar(36);index;not null;uniqueIndex:uk_payout_transfer" json:"payeeId"` // 寄售人ID 或 店铺ID
	PayeeType          string          `gorm:"column:payee_type;size:10;not null" json:"payeeType"`
	Amount             decimal.Decimal `gorm:"column:amount;type:decimal(12,2);not null" json:"amount"` // 实际转账金额
	Currency           string          `gorm:"column:currency;size:3;not null" json:"currency"`
	TransferGroup      string          `gorm:"column:transfer_group;size:64;not null;uniqueIndex:uk_payout_transfer" json:"transferGroup"`
	ExternalTransferID string          `gorm:"column:external_transfer_id;size:64;not null;uniqueIndex:uk_payout_transfer" json:"externalTransferId"`
	OrderID            uint64          `gorm:"column:order_id;index;not null" json:"orderId,string"`
	CreatedAt          time.Time       `gorm:"column:created_at" json:"createdAt"`
}

func (Payout) TableName() string {
	return "s_payout"
}

func (p *Payout) BeforeCreate(*gorm.DB) error {
	newID(&p.ID)
	return nil
}
