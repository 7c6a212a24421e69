package service

import (
	"context"
	"strings"
	"time"

	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"

	"stella-settlement-api/internal/constant"
	"stella-settlement-api/internal/dto"
)

var payoutCopyOption = copier.Option{
	Converters: []copier.TypeConverter{
		{
			SrcType: time.Time{},
			DstType: copier.String,
			Fn: func(src interface{}) (interface{}, error) {
				t, _ := src.(time.Time)
				return t.UTC().Format(time.RFC3339), nil
			},
		},
	},
}

// OrderPayouts 对账：订单应出款净额与已记录出款
func (s *SettlementService) OrderPayouts(ctx context.Context, orderID uint64) (*dto.OrderPayoutsVO, error) {
	order, err := s.orderDao.GetOrder(ctx, orderID)
	if err != nil {
		return nil, constant.Wrap(constant.CodeDatabaseError, err)
	}
	if order == nil {
		return nil, constant.Errorf(constant.CodeOrderNotFound, "order %d not found", orderID)
	}
	rec, err := s.orderDao.GetSettlementRecordByOrder(ctx, orderID)
	if err != nil {
		return nil, constant.Wrap(constant.CodeDatabaseError, err)
	}
	rows, err := s.ledger.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	vo := &dto.OrderPayoutsVO{
		OrderID:     order.ID,
		StoreID:     order.StoreID,
		Currency:    order.Currency,
		TotalAmount: order.TotalAmount,
		Payouts:     []dto.PayoutVO{},
	}
	if err := copier.CopyWithOption(&vo.Payouts, &rows, payoutCopyOption); err != nil {
		return nil, constant.Wrap(constant.CodeSystemError, err)
	}

	paid := decimal.Zero
	for _, r := range rows {
		paid = paid.Add(r.Amount)
	}
	vo.PaidOut = paid
	if rec != nil {
		vo.ExpectedNet = rec.Snapshot.TotalSalesAfterFees.Add(rec.Snapshot.FlatSurcharge).Round(2)
		vo.SettlementStatus = rec.Status
		if rec.FailedPayees != "" {
			vo.FailedPayees = strings.Split(rec.FailedPayees, ",")
		}
	}
	vo.Outstanding = vo.ExpectedNet.Sub(paid)
	return vo, nil
}
