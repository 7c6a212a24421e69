package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product 寄售商品，售出后 Archived 置为 true 且只会翻转一次
type Product struct {
	ID              string          `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	StoreID         string          `gorm:"column:store_id;type:varchar(36);index;not null" json:"storeId"`
	SellerID        string          `gorm:"column:seller_id;type:varchar(36);index;not null" json:"sellerId"`
	Seller          *Seller         `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
	Name            string          `gorm:"column:name;size:191" json:"name"`
	OurPrice        decimal.Decimal `gorm:"column:our_price;type:decimal(12,2);not null" json:"ourPrice"` // 当前售价
	Archived        bool            `gorm:"column:archived;not null;default:false;index" json:"archived"`
	TimesDiscounted int             `gorm:"column:times_discounted;not null;default:0" json:"timesDiscounted"`
	SoldByStaffID   *string         `gorm:"column:sold_by_staff_id;type:varchar(36)" json:"soldByStaffId,omitempty"`
	CreatedAt       time.Time       `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt       time.Time       `gorm:"column:updated_at" json:"updatedAt"`
}

func (Product) TableName() string {
	return "s_product"
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	newID(&p.ID)
	return nil
}
