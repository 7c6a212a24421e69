package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Store 租户（寄售店）
type Store struct {
	ID                 string           `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	Name               string           `gorm:"column:name;size:120;not null" json:"name"`
	Currency           string           `gorm:"column:currency;size:3;not null;default:GBP" json:"currency"`                 // ISO 4217
	PlatformFeePct     *decimal.Decimal `gorm:"column:platform_fee_pct;type:decimal(5,2)" json:"platformFeePct,omitempty"`   // 为空取默认 1
	ConsignmentRate    *decimal.Decimal `gorm:"column:consignment_rate;type:decimal(5,2)" json:"consignmentRate,omitempty"` // 为空取默认 50
	ConnectedAccountID string           `gorm:"column:connected_account_id;size:64" json:"connectedAccountId"`              // 店铺收款账户
	CreatedAt          time.Time        `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt          time.Time        `gorm:"column:updated_at" json:"updatedAt"`
}

func (Store) TableName() string {
	return "s_store"
}

func (s *Store) BeforeCreate(*gorm.DB) error {
	newID(&s.ID)
	return nil
}

// Seller 寄售人
type Seller struct {
	ID                 string           `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	StoreID            string           `gorm:"column:store_id;type:varchar(36);index;not null" json:"storeId"`
	Name               string           `gorm:"column:name;size:120" json:"name"`
	Email              string           `gorm:"column:email;size:191" json:"email"`
	ConnectedAccountID string           `gorm:"column:connected_account_id;size:64" json:"connectedAccountId"` // 未开通时为空
	ConsignmentRate    *decimal.Decimal `gorm:"column:consignment_rate;type:decimal(5,2)" json:"consignmentRate,omitempty"`
	SoldCount          int              `gorm:"column:sold_count;not null;default:0" json:"soldCount"`
	CreatedAt          time.Time        `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt          time.Time        `gorm:"column:updated_at" json:"updatedAt"`
}

func (Seller) TableName() string {
	return "s_seller"
}

func (s *Seller) BeforeCreate(*gorm.DB) error {
	newID(&s.ID)
	return nil
}

// Staff 店员
type Staff struct {
	ID                string          `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	StoreID           string          `gorm:"column:store_id;type:varchar(36);index;not null" json:"storeId"`
	Name              string          `gorm:"column:name;size:120" json:"name"`
	TotalSales        decimal.Decimal `gorm:"column:total_sales;type:decimal(12,2);not null;default:0" json:"totalSales"`
	TotalItemsSold    int             `gorm:"column:total_items_sold;not null;default:0" json:"totalItemsSold"`
	TotalTransactions int             `gorm:"column:total_transactions;not null;default:0" json:"totalTransactions"`
	CreatedAt         time.Time       `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt         time.Time       `gorm:"column:updated_at" json:"updatedAt"`
}

func (Staff) TableName() string {
	return "s_staff"
}

func (s *Staff) BeforeCreate(*gorm.DB) error {
	newID(&s.ID)
	return nil
}

// User 线上买家
type User struct {
	ID                 string          `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	StoreID            string          `gorm:"column:store_id;type:varchar(36);not null;uniqueIndex:uk_user_store_email" json:"storeId"`
	Email              string          `gorm:"column:email;size:191;not null;uniqueIndex:uk_user_store_email" json:"email"`
	Name               string          `gorm:"column:name;size:120" json:"name"`
	Phone              string          `gorm:"column:phone;size:32" json:"phone"`
	TotalPurchases     decimal.Decimal `gorm:"column:total_purchases;type:decimal(12,2);not null;default:0" json:"totalPurchases"`
	TotalItemsBought   int             `gorm:"column:total_items_bought;not null;default:0" json:"totalItemsBought"`
	TotalTransactions  int             `gorm:"column:total_transactions;not null;default:0" json:"totalTransactions"`
	PromoCode          string          `gorm:"column:promo_code;size:64" json:"promoCode"`
	MarketingProfileID string          `gorm:"column:marketing_profile_id;size:64" json:"marketingProfileId"`
	CreatedAt          time.Time       `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt          time.Time       `gorm:"column:updated_at" json:"updatedAt"`
}

func (User) TableName() string {
	return "s_user"
}

func (u *User) BeforeCreate(*gorm.DB) error {
	newID(&u.ID)
	return nil
}
