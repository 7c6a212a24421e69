package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stella-settlement-api/internal/cache"
	"stella-settlement-api/internal/constant"
	"stella-settlement-api/internal/dto"
	"stella-settlement-api/internal/logger"
	"stella-settlement-api/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSettleOnlineSingleItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Settle(ctx, onlineTrigger("sess-1", "p100"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1001), res.OrderID)
	assert.Equal(t, "order_1001", res.TransferGroup)
	assert.Equal(t, []string{"p100"}, res.ProductIDs)
	assert.Empty(t, res.FailedPayees)
	assert.Empty(t, res.Warnings)
	require.Len(t, res.Payouts, 2)

	// 100 * 0.97 = 97，寄售人 50%，店铺另得运费 10
	seller := f.gateway.byDestination("acct_A")
	require.NotNil(t, seller)
	assert.Equal(t, int64(4850), seller.AmountMinor)
	assert.Equal(t, "order_1001", seller.TransferGroup)
	assert.Equal(t, "order_1001_acct_A", seller.IdempotencyKey)
	assert.Equal(t, "GBP", seller.Currency)
	assert.Equal(t, "1001", seller.Metadata["order_id"])
	assert.Equal(t, "100.00", seller.Metadata["total_sales"])

	store := f.gateway.byDestination("acct_store")
	require.NotNil(t, store)
	assert.Equal(t, int64(5850), store.AmountMinor)
	assert.Equal(t, "order_1001_acct_store", store.IdempotencyKey)

	var order model.Order
	require.NoError(t, f.db.Preload("Items").First(&order, "id = ?", res.OrderID).Error)
	assert.True(t, order.IsPaid)
	assert.False(t, order.InStoreSale)
	assert.True(t, order.TotalAmount.Equal(dec("100")))
	assert.True(t, order.ShippingFee.Equal(dec("10")))
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].ProductAmount.Equal(dec("100")))
	require.NotNil(t, order.City)
	assert.Equal(t, "Leeds", *order.City)

	var p model.Product
	require.NoError(t, f.db.First(&p, "id = ?", "p100").Error)
	assert.True(t, p.Archived)

	rows, err := f.ledger.ListByOrder(ctx, res.OrderID)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	var rec model.SettlementRecord
	require.NoError(t, f.db.First(&rec, "settlement_key = ?", "store-1:cs_sess-1").Error)
	assert.Equal(t, model.SettlementSettled, rec.Status)
	assert.True(t, rec.Snapshot.TotalSalesAfterFees.Equal(dec("97")))

	var sa model.Seller
	require.NoError(t, f.db.First(&sa, "id = ?", "seller-a").Error)
	assert.Equal(t, 1, sa.SoldCount)

	// 新买家：建档、优惠码、营销档案、欢迎列表
	var u model.User
	require.NoError(t, f.db.First(&u, "email = ?", "buyer@example.com").Error)
	assert.True(t, u.TotalPurchases.Equal(dec("100")))
	assert.Equal(t, 1, u.TotalTransactions)
	assert.Equal(t, "prof_buyer@example.com", u.MarketingProfileID)
	require.Len(t, f.promo.codes, 1)
	assert.Equal(t, f.promo.codes[0], u.PromoCode)
	assert.Equal(t, []string{"welcome|prof_buyer@example.com"}, f.marketing.listed)
	require.NoError(t, f.db.First(&order, "id = ?", res.OrderID).Error)
	require.NotNil(t, order.UserID)
	assert.Equal(t, u.ID, *order.UserID)

	assert.ElementsMatch(t, []string{dto.NotifySellerSale, dto.NotifyOrderConfirmed}, f.dispatcher.kinds())
}

func TestSettleInStoreSellerWithoutAccount(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Settle(context.Background(), dto.SettleTrigger{
		StoreID:       "store-1",
		ProductIDs:    []string{"pb"},
		Channel:       dto.ChannelCard,
		SoldByStaffID: "staff-1",
	})
	require.NoError(t, err)

	// 寄售人未开通收款，全部 97 归店铺，不收运费
	require.Len(t, res.Payouts, 1)
	assert.Equal(t, model.PayeeStore, res.Payouts[0].PayeeType)
	assert.Equal(t, int64(9700), res.Payouts[0].AmountMinor)
	assert.Equal(t, 1, f.gateway.count())

	var order model.Order
	require.NoError(t, f.db.First(&order, "id = ?", res.OrderID).Error)
	assert.True(t, order.InStoreSale)
	assert.False(t, order.IsCash)
	assert.True(t, order.ShippingFee.IsZero())

	var staff model.Staff
	require.NoError(t, f.db.First(&staff, "id = ?", "staff-1").Error)
	assert.True(t, staff.TotalSales.Equal(dec("100")))
	assert.Equal(t, 1, staff.TotalItemsSold)
	assert.Equal(t, 1, staff.TotalTransactions)

	var p model.Product
	require.NoError(t, f.db.First(&p, "id = ?", "pb").Error)
	require.NotNil(t, p.SoldByStaffID)
	assert.Equal(t, "staff-1", *p.SoldByStaffID)

	assert.Empty(t, f.dispatcher.kinds())
}

func TestSettleCashMultiSeller(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Settle(context.Background(), dto.SettleTrigger{
		StoreID:    "store-1",
		ProductIDs: []string{"p100", "p50", "pb", "p100"},
		Channel:    dto.ChannelCash,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"p100", "p50", "pb"}, res.ProductIDs)

	// 250 * 0.97 = 242.50；seller-a (150) 得 72.75，其余 169.75 归店铺
	assert.Equal(t, int64(7275), f.gateway.byDestination("acct_A").AmountMinor)
	assert.Equal(t, int64(16975), f.gateway.byDestination("acct_store").AmountMinor)

	var order model.Order
	require.NoError(t, f.db.First(&order, "id = ?", res.OrderID).Error)
	assert.True(t, order.IsCash)
	assert.True(t, order.TotalAmount.Equal(dec("250")))
}

func TestSettleDuplicateRedelivery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Settle(ctx, onlineTrigger("sess-dup", "p100"))
	require.NoError(t, err)
	calls := f.gateway.count()

	_, err = f.svc.Settle(ctx, onlineTrigger("sess-dup", "p100"))
	require.Error(t, err)
	assert.True(t, constant.IsKind(err, constant.KindDuplicateSettlement))
	assert.Equal(t, constant.CodeOrderAlreadyExist, constant.CodeOf(err))
	assert.Equal(t, calls, f.gateway.count())

	var orders int64
	require.NoError(t, f.db.Model(&model.Order{}).Count(&orders).Error)
	assert.Equal(t, int64(1), orders)
	assert.NotZero(t, first.OrderID)
}

func TestSettleAlreadySoldProductWithNewKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Settle(ctx, onlineTrigger("sess-a", "p100"))
	require.NoError(t, err)

	_, err = f.svc.Settle(ctx, onlineTrigger("sess-b", "p100"))
	require.Error(t, err)
	assert.Equal(t, constant.CodeProductArchived, constant.CodeOf(err))
	assert.True(t, constant.IsKind(err, constant.KindDuplicateSettlement))
}

func TestSettleConcurrentSameProduct(t *testing.T) {
	f := newFixture(t)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Settle(context.Background(), onlineTrigger("race-"+string(rune('a'+i)), "p50"))
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, constant.IsKind(err, constant.KindDuplicateSettlement), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, ok)

	var orders int64
	require.NoError(t, f.db.Model(&model.Order{}).Count(&orders).Error)
	assert.Equal(t, int64(1), orders)
	// 一个寄售人 + 店铺
	assert.Equal(t, 2, f.gateway.count())
}

func TestSettlePartialTransferFailure(t *testing.T) {
	f := newFixture(t)
	f.gateway.failOn["acct_B"] = constant.NewError(constant.CodeInsufficientFunds)
	ctx := context.Background()

	res, err := f.svc.Settle(ctx, dto.SettleTrigger{
		StoreID:    "store-1",
		ProductIDs: []string{"p100", "pd", "pe"},
		Channel:    dto.ChannelCash,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"seller-d"}, res.FailedPayees)
	assert.Equal(t, 4, f.gateway.count())

	var failed *dto.PayoutResult
	for i := range res.Payouts {
		if res.Payouts[i].PayeeID == "seller-d" {
			failed = &res.Payouts[i]
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, constant.KindInsufficientFunds, failed.ErrorCode)
	assert.Empty(t, failed.ExternalTransferID)

	var order model.Order
	require.NoError(t, f.db.Preload("Items").First(&order, "id = ?", res.OrderID).Error)
	assert.Len(t, order.Items, 3)

	// 160 * 0.97 = 155.20；a 48.50，d 19.40（失败），e 9.70，店铺 77.60
	rows, err := f.ledger.ListByOrder(ctx, res.OrderID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	got := map[string]decimal.Decimal{}
	for _, r := range rows {
		got[r.PayeeID] = r.Amount
	}
	assert.NotContains(t, got, "seller-d")
	assert.True(t, got["seller-a"].Equal(dec("48.50")))
	assert.True(t, got["seller-e"].Equal(dec("9.70")))
	assert.True(t, got["store-1"].Equal(dec("77.60")))

	var rec model.SettlementRecord
	require.NoError(t, f.db.First(&rec, "order_id = ?", res.OrderID).Error)
	assert.Equal(t, model.SettlementPartial, rec.Status)
	assert.Equal(t, "seller-d", rec.FailedPayees)

	assert.Len(t, f.alerter.titles, 1)
	// 失败的寄售人不发售出通知
	assert.ElementsMatch(t, []string{"ann@x.com", "eve@x.com"}, f.dispatcher.emails(dto.NotifySellerSale))
}

func TestSettleSharedAccountSplitsPerSeller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Settle(ctx, dto.SettleTrigger{
		StoreID:    "store-1",
		ProductIDs: []string{"p100", "pz"},
		Channel:    dto.ChannelCash,
	})
	require.NoError(t, err)

	// 共用账户只转一笔：48.50 + 9.70
	assert.Equal(t, 2, f.gateway.count())
	shared := f.gateway.byDestination("acct_A")
	require.NotNil(t, shared)
	assert.Equal(t, int64(5820), shared.AmountMinor)
	assert.Equal(t, "order_1001_acct_A", shared.IdempotencyKey)
	assert.Equal(t, "seller-a,seller-z", shared.Metadata["payee_ids"])

	require.Len(t, res.Payouts, 3)
	assert.Equal(t, "seller-a", res.Payouts[0].PayeeID)
	assert.Equal(t, int64(4850), res.Payouts[0].AmountMinor)
	assert.Equal(t, "seller-z", res.Payouts[1].PayeeID)
	assert.Equal(t, int64(970), res.Payouts[1].AmountMinor)
	assert.Equal(t, res.Payouts[0].ExternalTransferID, res.Payouts[1].ExternalTransferID)
	assert.Equal(t, model.PayeeStore, res.Payouts[2].PayeeType)

	rows, err := f.ledger.ListByOrder(ctx, res.OrderID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	got := map[string]decimal.Decimal{}
	for _, r := range rows {
		got[r.PayeeID] = r.Amount
	}
	assert.True(t, got["seller-a"].Equal(dec("48.50")))
	assert.True(t, got["seller-z"].Equal(dec("9.70")))
	assert.True(t, got["store-1"].Equal(dec("58.20")))

	assert.ElementsMatch(t, []string{"ann@x.com", "zed@x.com"}, f.dispatcher.emails(dto.NotifySellerSale))
}

func TestSettleExplicitKeyScopedToStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Settle(ctx, dto.SettleTrigger{
		StoreID: "store-1", ProductIDs: []string{"p100"}, Channel: dto.ChannelCash, IdempotencyKey: "terminal-42",
	})
	require.NoError(t, err)

	// 另一家店的终端用了同一个键，照常结算
	second, err := f.svc.Settle(ctx, dto.SettleTrigger{
		StoreID: "store-2", ProductIDs: []string{"p-other"}, Channel: dto.ChannelCash, IdempotencyKey: "terminal-42",
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.OrderID, second.OrderID)

	var p model.Product
	require.NoError(t, f.db.First(&p, "id = ?", "p-other").Error)
	assert.True(t, p.Archived)

	var keys []string
	require.NoError(t, f.db.Model(&model.SettlementRecord{}).Order("settlement_key").Pluck("settlement_key", &keys).Error)
	assert.Equal(t, []string{"store-1:terminal-42", "store-2:terminal-42"}, keys)

	// 同店重复仍然是重复结算
	_, err = f.svc.Settle(ctx, dto.SettleTrigger{
		StoreID: "store-2", ProductIDs: []string{"p-other"}, Channel: dto.ChannelCash, IdempotencyKey: "terminal-42",
	})
	assert.Equal(t, constant.CodeOrderAlreadyExist, constant.CodeOf(err))
}

func TestSettleRecordFromOtherStoreIsNotDuplicate(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Create(&model.SettlementRecord{
		SettlementKey: "store-1:legacy",
		StoreID:       "store-2",
		OrderID:       9,
		Channel:       dto.ChannelCash,
		Status:        model.SettlementSettled,
	}).Error)

	_, err := f.svc.Settle(context.Background(), dto.SettleTrigger{
		StoreID: "store-1", ProductIDs: []string{"p100"}, Channel: dto.ChannelCash, IdempotencyKey: "legacy",
	})
	require.Error(t, err)
	assert.Equal(t, constant.CodeInvalidParams, constant.CodeOf(err))
	ce, ok := constant.AsError(err)
	require.True(t, ok)
	assert.Nil(t, ce.Data())
	assert.NotContains(t, err.Error(), "order 9")
}

func TestSettlePersistenceFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Migrator().DropTable(&model.OrderItem{}))

	_, err := f.svc.Settle(context.Background(), onlineTrigger("sess-broken", "p100"))
	require.Error(t, err)
	assert.True(t, constant.IsKind(err, constant.KindPersistenceFailure))

	var p model.Product
	require.NoError(t, f.db.First(&p, "id = ?", "p100").Error)
	assert.False(t, p.Archived)

	var n int64
	require.NoError(t, f.db.Model(&model.SettlementRecord{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, f.db.Model(&model.Order{}).Count(&n).Error)
	assert.Zero(t, n)
	assert.Zero(t, f.gateway.count())
	assert.Empty(t, f.dispatcher.kinds())
}

func TestSettleRejectsInvalidTriggers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]struct {
		trigger dto.SettleTrigger
		code    int
	}{
		"missing store":   {dto.SettleTrigger{ProductIDs: []string{"p100"}, Channel: dto.ChannelCash}, constant.CodeMissingParams},
		"no products":     {dto.SettleTrigger{StoreID: "store-1", ProductIDs: []string{" "}, Channel: dto.ChannelCash}, constant.CodeMissingParams},
		"bad channel":     {dto.SettleTrigger{StoreID: "store-1", ProductIDs: []string{"p100"}, Channel: "BARTER"}, constant.CodeInvalidParams},
		"unknown store":   {dto.SettleTrigger{StoreID: "nope", ProductIDs: []string{"p100"}, Channel: dto.ChannelCash}, constant.CodeStoreNotFound},
		"foreign product": {dto.SettleTrigger{StoreID: "store-1", ProductIDs: []string{"p-other"}, Channel: dto.ChannelCash}, constant.CodeProductNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Settle(ctx, tc.trigger)
			require.Error(t, err)
			assert.Equal(t, tc.code, constant.CodeOf(err))
			assert.True(t, constant.IsKind(err, constant.KindInvalidInput))
		})
	}
	assert.Zero(t, f.gateway.count())
}

func TestSettleInFlightLock(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	lock := cache.NewSettleLock(rdb, time.Minute, logger.Discard())
	f := newFixture(t, withLocker(lock))
	ctx := context.Background()

	trigger := onlineTrigger("sess-locked", "p100")
	release, ok, err := lock.Acquire(ctx, SettlementKey(trigger))
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.svc.Settle(ctx, trigger)
	require.Error(t, err)
	assert.True(t, constant.IsKind(err, constant.KindDuplicateSettlement))
	assert.Contains(t, err.Error(), "in progress")

	release()
	_, err = f.svc.Settle(ctx, trigger)
	require.NoError(t, err)
}

func TestSettlementKeyPrecedence(t *testing.T) {
	base := dto.SettleTrigger{StoreID: "store-1", ProductIDs: []string{"b", "a"}}

	k := base
	k.IdempotencyKey, k.SessionID, k.PaymentIntentID = "explicit", "cs_1", "pi_1"
	assert.Equal(t, "store-1:explicit", SettlementKey(k))

	k = base
	k.SessionID, k.PaymentIntentID = "cs_1", "pi_1"
	assert.Equal(t, "store-1:cs_cs_1", SettlementKey(k))

	k = base
	k.PaymentIntentID = "pi_1"
	assert.Equal(t, "store-1:pi_pi_1", SettlementKey(k))

	// 商品顺序不影响键
	other := dto.SettleTrigger{StoreID: "store-1", ProductIDs: []string{"a", "b"}}
	assert.Equal(t, SettlementKey(base), SettlementKey(other))
	assert.True(t, strings.HasPrefix(SettlementKey(base), "store-1:products_"))
}

func TestNewSettlementServiceRequiresDeps(t *testing.T) {
	_, err := NewSettlementService(SettlementDeps{})
	assert.Error(t, err)
}
