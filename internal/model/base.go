package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// newID 字符串主键为空时补 uuid
func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// All 供 AutoMigrate 使用
func All() []interface{} {
	return []interface{}{
		&Store{},
		&Seller{},
		&Product{},
		&Staff{},
		&User{},
		&Order{},
		&OrderItem{},
		&Payout{},
		&SettlementRecord{},
	}
}

// Migrate 建表
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
