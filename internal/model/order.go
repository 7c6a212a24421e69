package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order 订单，结算成功后不再删除
type Order struct {
	ID              uint64          `gorm:"column:id;primaryKey;autoIncrement:false" json:"id,string"` // snowflake
	StoreID         string          `gorm:"column:store_id;type:varchar(36);index;not null" json:"storeId"`
	SettlementKey   string          `gorm:"column:settlement_key;size:191;index" json:"settlementKey"`
	IsPaid          bool            `gorm:"column:is_paid;not null" json:"isPaid"`
	IsCash          bool            `gorm:"column:is_cash;not null" json:"isCash"`
	InStoreSale     bool            `gorm:"column:in_store_sale;not null" json:"inStoreSale"`
	IsDispatched    bool            `gorm:"column:is_dispatched;not null;default:false" json:"isDispatched"`
	TotalAmount     decimal.Decimal `gorm:"column:total_amount;type:decimal(12,2);not null" json:"totalAmount"`                  // 商品合计（毛额）
	ShippingFee     decimal.Decimal `gorm:"column:shipping_fee;type:decimal(12,2);not null;default:0" json:"shippingFee"` // 线上运费，计入店铺
	Currency        string          `gorm:"column:currency;size:3;not null" json:"currency"`
	PaymentIntentID string          `gorm:"column:payment_intent_id;size:64" json:"paymentIntentId,omitempty"`
	BuyerEmail      *string         `gorm:"column:buyer_email;size:191" json:"buyerEmail,omitempty"`
	BuyerName       *string         `gorm:"column:buyer_name;size:120" json:"buyerName,omitempty"`
	BuyerPhone      *string         `gorm:"column:buyer_phone;size:32" json:"buyerPhone,omitempty"`
	AddressLine1    *string         `gorm:"column:address_line1;size:191" json:"addressLine1,omitempty"`
	AddressLine2    *string         `gorm:"column:address_line2;size:191" json:"addressLine2,omitempty"`
	City            *string         `gorm:"column:city;size:120" json:"city,omitempty"`
	PostalCode      *string         `gorm:"column:postal_code;size:32" json:"postalCode,omitempty"`
	Country         *string         `gorm:"column:country;size:2" json:"country,omitempty"`
	SoldByStaffID   *string         `gorm:"column:sold_by_staff_id;type:varchar(36)" json:"soldByStaffId,omitempty"`
	UserID          *string         `gorm:"column:user_id;type:varchar(36)" json:"userId,omitempty"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	CreatedAt       time.Time       `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt       time.Time       `gorm:"column:updated_at" json:"updatedAt"`
}

func (Order) TableName() string {
	return "s_order"
}

// OrderItem 订单明细，ProductAmount 为成交时售价快照
type OrderItem struct {
	ID            string          `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	OrderID       uint64          `gorm:"column:order_id;index;not null" json:"orderId,string"`
	ProductID     string          `gorm:"column:product_id;type:varchar(36);index;not null" json:"productId"`
	SellerID      string          `gorm:"column:seller_id;type:varchar(36);not null" json:"sellerId"`
	SoldByStaffID *string         `gorm:"column:sold_by_staff_id;type:varchar(36)" json:"soldByStaffId,omitempty"`
	ProductAmount decimal.Decimal `gorm:"column:product_amount;type:decimal(12,2);not null" json:"productAmount"`
	CreatedAt     time.Time       `gorm:"column:created_at" json:"createdAt"`
}

func (OrderItem) TableName() string {
	return "s_order_item"
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	newID(&i.ID)
	return nil
}
