package ledger

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stella-settlement-api/internal/constant"
	"stella-settlement-api/internal/dto"
	"stella-settlement-api/internal/model"
)

// Ledger 出款流水，只追加
type Ledger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// RecordPayout 转账成功后写入流水
//
// 同一 (transfer_group, external_transfer_id, payee_id) 重复写入时返回已有记录，不新增。
func (l *Ledger) RecordPayout(ctx context.Context, e dto.PayoutEntry) (*model.Payout, error) {
	if err := validate(e); err != nil {
		return nil, err
	}
	p := &model.Payout{
		StoreID:            e.StoreID,
		PayeeID:            e.PayeeID,
		PayeeType:          e.PayeeType,
		Amount:             e.Amount,
		Currency:           e.Currency,
		TransferGroup:      e.TransferGroup,
		ExternalTransferID: e.ExternalTransferID,
		OrderID:            e.OrderID,
	}
	res := l.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "transfer_group"}, {Name: "external_transfer_id"}, {Name: "payee_id"}},
			DoNothing: true,
		}).
		Create(p)
	if res.Error != nil {
		return nil, constant.Wrap(constant.CodeDatabaseError, fmt.Errorf("insert payout %s/%s/%s: %w", e.TransferGroup, e.ExternalTransferID, e.PayeeID, res.Error))
	}
	if res.RowsAffected > 0 {
		return p, nil
	}

	var existing model.Payout
	err := l.db.WithContext(ctx).
		Where("transfer_group = ? AND external_transfer_id = ? AND payee_id = ?", e.TransferGroup, e.ExternalTransferID, e.PayeeID).
		First(&existing).Error
	if err != nil {
		return nil, constant.Wrap(constant.CodeDatabaseError, fmt.Errorf("load existing payout: %w", err))
	}
	return &existing, nil
}

func validate(e dto.PayoutEntry) error {
	switch {
	case e.StoreID == "":
		return constant.Errorf(constant.CodeMissingParams, "payout: store id required")
	case e.PayeeID == "":
		return constant.Errorf(constant.CodeMissingParams, "payout: payee id required")
	case e.TransferGroup == "":
		return constant.Errorf(constant.CodeMissingParams, "payout: transfer group required")
	case e.ExternalTransferID == "":
		return constant.Errorf(constant.CodeMissingParams, "payout: external transfer id required")
	case !e.Amount.IsPositive():
		return constant.Errorf(constant.CodeParamsRangeError, "payout: amount must be positive")
	}
	return nil
}

// ListByOrder 对账用
func (l *Ledger) ListByOrder(ctx context.Context, orderID uint64) ([]model.Payout, error) {
	var list []model.Payout
	err := l.db.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at, payee_type, payee_id").Find(&list).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, constant.Wrap(constant.CodeDatabaseError, err)
	}
	return list, nil
}
