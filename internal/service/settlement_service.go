package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
	"gorm.io/gorm"

	"stella-settlement-api/internal/config"
	"stella-settlement-api/internal/constant"
	"stella-settlement-api/internal/dao"
	"stella-settlement-api/internal/dto"
	"stella-settlement-api/internal/ledger"
	"stella-settlement-api/internal/metrics"
	"stella-settlement-api/internal/model"
	"stella-settlement-api/internal/notify"
	"stella-settlement-api/internal/settlement"
)

// SettlementDeps Locker / Buyers / Alerter / Sessions 可以为空
type SettlementDeps struct {
	DB         *gorm.DB
	Stores     StoreGetter
	Locker     Locker
	IDs        IDGenerator
	Gateway    Transferer
	Sessions   SessionFetcher
	Ledger     *ledger.Ledger
	Buyers     *BuyerService
	Dispatcher notify.Dispatcher
	Alerter    Alerter
	Metrics    *metrics.Metrics
	Cfg        config.SettlementCfg
	Log        logrus.FieldLogger
}

// SettlementService 结算编排：落库 -> 转账 -> 出款流水 -> 买家 -> 通知
type SettlementService struct {
	db         *gorm.DB
	mainDao    *dao.MainDao
	orderDao   *dao.OrderDao
	stores     StoreGetter
	locker     Locker
	ids        IDGenerator
	gateway    Transferer
	sessions   SessionFetcher
	ledger     *ledger.Ledger
	buyers     *BuyerService
	dispatcher notify.Dispatcher
	alerter    Alerter
	metrics    *metrics.Metrics
	cfg        config.SettlementCfg
	log        logrus.FieldLogger
}

func NewSettlementService(d SettlementDeps) (*SettlementService, error) {
	switch {
	case d.DB == nil:
		return nil, errors.New("settlement service: db is nil")
	case d.Stores == nil:
		return nil, errors.New("settlement service: store getter is nil")
	case d.IDs == nil:
		return nil, errors.New("settlement service: id generator is nil")
	case d.Gateway == nil:
		return nil, errors.New("settlement service: gateway is nil")
	case d.Ledger == nil:
		return nil, errors.New("settlement service: ledger is nil")
	case d.Dispatcher == nil:
		return nil, errors.New("settlement service: dispatcher is nil")
	case d.Log == nil:
		return nil, errors.New("settlement service: logger is nil")
	}
	if d.Cfg.TransferConcurrency <= 0 {
		d.Cfg.TransferConcurrency = 4
	}
	return &SettlementService{
		db:         d.DB,
		mainDao:    dao.NewMainDao(d.DB),
		orderDao:   dao.NewOrderDao(d.DB),
		stores:     d.Stores,
		locker:     d.Locker,
		ids:        d.IDs,
		gateway:    d.Gateway,
		sessions:   d.Sessions,
		ledger:     d.Ledger,
		buyers:     d.Buyers,
		dispatcher: d.Dispatcher,
		alerter:    d.Alerter,
		metrics:    d.Metrics,
		cfg:        d.Cfg,
		log:        d.Log,
	}, nil
}

// SettlementKey 幂等键，按店铺隔离：<店铺ID>:<显式键 | cs_会话 | pi_支付意图 | products_商品集合摘要>
func SettlementKey(t dto.SettleTrigger) string {
	var k string
	switch {
	case t.IdempotencyKey != "":
		k = t.IdempotencyKey
	case t.SessionID != "":
		k = "cs_" + t.SessionID
	case t.PaymentIntentID != "":
		k = "pi_" + t.PaymentIntentID
	default:
		ids := append([]string(nil), t.ProductIDs...)
		sort.Strings(ids)
		sum := sha256.Sum256([]byte(strings.Join(ids, ",")))
		k = "products_" + hex.EncodeToString(sum[:])
	}
	return fmt.Sprintf("%s:%s", t.StoreID, k)
}

// Settle 订单落库即返回成功，之后的转账、记账、通知失败只体现在结果里
func (s *SettlementService) Settle(ctx context.Context, t dto.SettleTrigger) (*dto.SettleResult, error) {
	start := time.Now()
	res, err := s.settle(ctx, t)
	s.metrics.ObserveSettlement(t.Channel, resultLabel(err), time.Since(start))
	return res, err
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case constant.IsKind(err, constant.KindDuplicateSettlement):
		return "duplicate"
	case constant.IsKind(err, constant.KindInvalidInput):
		return "invalid"
	default:
		return "failed"
	}
}

func (s *SettlementService) settle(ctx context.Context, t dto.SettleTrigger) (*dto.SettleResult, error) {
	t.ProductIDs = dedupe(t.ProductIDs)
	if err := validateTrigger(t); err != nil {
		return nil, err
	}
	key := SettlementKey(t)
	l := s.log.WithFields(logrus.Fields{"settlement_key": key, "store_id": t.StoreID, "channel": t.Channel})

	if s.locker != nil {
		release, ok, err := s.locker.Acquire(ctx, key)
		switch {
		case err != nil:
			// 锁只是优化，数据库约束兜底
			l.WithError(err).Warn("settle lock unavailable, continuing")
		case !ok:
			return nil, constant.Errorf(constant.CodeOrderAlreadyExist, "settlement %s in progress", key)
		default:
			defer release()
		}
	}

	store, err := s.loadStore(ctx, t.StoreID)
	if err != nil {
		return nil, err
	}
	if rec, err := s.orderDao.GetSettlementRecord(ctx, key); err != nil {
		return nil, constant.Wrap(constant.CodeDatabaseError, err)
	} else if rec != nil {
		// 其他店铺的记录不能作为重复依据，也不能泄露其订单号
		if rec.StoreID != t.StoreID {
			return nil, constant.Errorf(constant.CodeInvalidParams, "settlement key %s belongs to another store", key)
		}
		return nil, constant.Errorf(constant.CodeOrderAlreadyExist, "settlement %s already recorded as order %d", key, rec.OrderID).
			WithData(map[string]interface{}{"orderId": fmt.Sprint(rec.OrderID), "productIds": t.ProductIDs})
	}

	products, err := s.loadProducts(ctx, store, t.ProductIDs)
	if err != nil {
		return nil, err
	}
	lines, sellers := buildLines(products)
	fees := s.feeConfig(store, t)

	calc, err := settlement.Calculate(lines, fees)
	if err != nil {
		return nil, err
	}
	alloc := settlement.Allocate(calc)

	order := buildOrder(s.ids.Next(), key, store, t, calc, products)
	l = l.WithField("order_id", order.ID)
	if err := s.persist(ctx, key, t, order, calc); err != nil {
		l.WithError(err).Warn("settlement not recorded")
		return nil, err
	}
	l.Infof("order recorded total=%s net=%s items=%d", calc.TotalSales, calc.TotalSalesAfterFees, len(products))

	// 已提交，后续步骤不受调用方取消影响
	bg := context.WithoutCancel(ctx)
	out := &dto.SettleResult{
		OrderID:       order.ID,
		ProductIDs:    t.ProductIDs,
		TransferGroup: transferGroup(order.ID),
	}
	out.Warnings = append(out.Warnings, s.secondaryWrites(bg, l, t, order, products)...)

	out.Payouts = s.payOut(bg, l, store, order, calc, alloc)
	for _, p := range out.Payouts {
		if p.Error != "" {
			out.FailedPayees = append(out.FailedPayees, p.PayeeID)
		}
	}
	if alloc.StoreMinor > 0 && store.ConnectedAccountID == "" {
		out.Warnings = append(out.Warnings, "store has no connected account, store cut not transferred")
	}

	status := model.SettlementSettled
	if len(out.FailedPayees) > 0 {
		status = model.SettlementPartial
	}
	if err := s.orderDao.UpdateSettlementStatus(bg, key, status, strings.Join(out.FailedPayees, ",")); err != nil {
		l.WithError(err).Warn("update settlement status failed")
		out.Warnings = append(out.Warnings, "settlement status not updated")
	}

	if w := s.registerBuyer(bg, l, t, order, calc, len(products)); w != "" {
		out.Warnings = append(out.Warnings, w)
	}
	s.notify(bg, t, order, sellers, out.Payouts)

	l.Infof("settlement done payouts=%d failed=%d", len(out.Payouts), len(out.FailedPayees))
	return out, nil
}

func validateTrigger(t dto.SettleTrigger) error {
	if strings.TrimSpace(t.StoreID) == "" {
		return constant.Errorf(constant.CodeMissingParams, "storeId is required")
	}
	if len(t.ProductIDs) == 0 {
		return constant.Errorf(constant.CodeMissingParams, "at least one product is required")
	}
	switch t.Channel {
	case dto.ChannelOnline, dto.ChannelCard, dto.ChannelCash:
	default:
		return constant.Errorf(constant.CodeInvalidParams, "unknown sales channel %q", t.Channel)
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *SettlementService) loadStore(ctx context.Context, storeID string) (*model.Store, error) {
	store, err := s.stores.Get(ctx, storeID)
	if err != nil {
		return nil, constant.Wrap(constant.CodeDatabaseError, err)
	}
	if store == nil {
		return nil, constant.Errorf(constant.CodeStoreNotFound, "store %s not found", storeID)
	}
	if len(store.Currency) != 3 {
		return nil, constant.Errorf(constant.CodeSettlementCurrency, "store %s has invalid currency %q", storeID, store.Currency)
	}
	return store, nil
}

// loadProducts 按请求顺序返回，缺失或已售出都直接拒绝
func (s *SettlementService) loadProducts(ctx context.Context, store *model.Store, ids []string) ([]model.Product, error) {
	list, err := s.orderDao.ListProductsForSettlement(ctx, store.ID, ids)
	if err != nil {
		return nil, constant.Wrap(constant.CodeDatabaseError, err)
	}
	byID := make(map[string]model.Product, len(list))
	for _, p := range list {
		byID[p.ID] = p
	}
	out := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, constant.Errorf(constant.CodeProductNotFound, "product %s not found in store %s", id, store.ID)
		}
		if p.Archived {
			return nil, constant.Errorf(constant.CodeProductArchived, "product %s already sold", id).
				WithData(map[string]interface{}{"productIds": ids})
		}
		if p.Seller == nil {
			return nil, constant.Errorf(constant.CodeSellerNotFound, "seller %s of product %s not found", p.SellerID, id)
		}
		out = append(out, p)
	}
	return out, nil
}

func buildLines(products []model.Product) ([]dto.LineItem, map[string]*model.Seller) {
	lines := make([]dto.LineItem, 0, len(products))
	sellers := map[string]*model.Seller{}
	for _, p := range products {
		lines = append(lines, dto.LineItem{
			ProductID:          p.ID,
			SellerID:           p.SellerID,
			SalePrice:          p.OurPrice,
			ConsignmentRate:    p.Seller.ConsignmentRate,
			ConnectedAccountID: p.Seller.ConnectedAccountID,
		})
		sellers[p.SellerID] = p.Seller
	}
	return lines, sellers
}

// feeConfig 店铺覆盖默认费率，运费只对线上订单收取
func (s *SettlementService) feeConfig(store *model.Store, t dto.SettleTrigger) dto.FeeConfig {
	fees := dto.FeeConfig{
		ProcessorFeePct:        s.cfg.ProcessorFeePct,
		PlatformFeePct:         s.cfg.DefaultPlatformFeePct,
		DefaultConsignmentRate: s.cfg.DefaultConsignmentRate,
	}
	if store.PlatformFeePct != nil {
		fees.PlatformFeePct = *store.PlatformFeePct
	}
	if store.ConsignmentRate != nil {
		fees.DefaultConsignmentRate = *store.ConsignmentRate
	}
	if t.Channel == dto.ChannelOnline {
		fees.FlatSurcharge = s.cfg.OnlineShippingSurcharge
	}
	return fees
}

func buildOrder(id uint64, key string, store *model.Store, t dto.SettleTrigger, calc dto.SettlementResult, products []model.Product) *model.Order {
	o := &model.Order{
		ID:              id,
		StoreID:         store.ID,
		SettlementKey:   key,
		IsPaid:          true,
		IsCash:          t.Channel == dto.ChannelCash,
		InStoreSale:     t.InStore(),
		TotalAmount:     calc.TotalSales,
		ShippingFee:     calc.FlatSurcharge,
		Currency:        strings.ToUpper(store.Currency),
		PaymentIntentID: t.PaymentIntentID,
		SoldByStaffID:   strPtr(t.SoldByStaffID),
		UserID:          strPtr(t.UserID),
	}
	if b := t.Buyer; b != nil {
		o.BuyerEmail = strPtr(b.Email)
		o.BuyerName = strPtr(b.Name)
		o.BuyerPhone = strPtr(b.Phone)
		o.AddressLine1 = strPtr(b.AddressLine1)
		o.AddressLine2 = strPtr(b.AddressLine2)
		o.City = strPtr(b.City)
		o.PostalCode = strPtr(b.PostalCode)
		o.Country = strPtr(b.Country)
	}
	for _, p := range products {
		o.Items = append(o.Items, model.OrderItem{
			OrderID:       id,
			ProductID:     p.ID,
			SellerID:      p.SellerID,
			SoldByStaffID: strPtr(t.SoldByStaffID),
			ProductAmount: p.OurPrice,
		})
	}
	return o
}

// persist 结算记录、订单、明细、归档在同一事务，归档行数不符即回滚
func (s *SettlementService) persist(ctx context.Context, key string, t dto.SettleTrigger, o *model.Order, calc dto.SettlementResult) error {
	err := s.mainDao.WithTransaction(ctx, func(tx *gorm.DB) error {
		od := dao.NewOrderDao(tx)
		rec := &model.SettlementRecord{
			SettlementKey: key,
			StoreID:       o.StoreID,
			OrderID:       o.ID,
			Channel:       t.Channel,
			Status:        model.SettlementRecorded,
			Snapshot: model.SettleSnapshot{
				TotalSales:          calc.TotalSales,
				TotalFeePct:         calc.TotalFeePct,
				TotalFees:           calc.TotalFees,
				TotalSalesAfterFees: calc.TotalSalesAfterFees,
				FlatSurcharge:       calc.FlatSurcharge,
				StoreCut:            calc.StoreCut,
				SellerPayouts:       calc.SellerPayouts,
				Currency:            o.Currency,
			},
		}
		if err := od.InsertSettlementRecord(ctx, rec); err != nil {
			return err
		}
		if err := od.InsertOrder(ctx, o); err != nil {
			return err
		}
		if err := od.InsertItems(ctx, o.Items); err != nil {
			return err
		}
		n, err := od.ArchiveProducts(ctx, o.StoreID, t.ProductIDs)
		if err != nil {
			return err
		}
		if n != int64(len(t.ProductIDs)) {
			return constant.Errorf(constant.CodeProductArchived, "products already sold (%d/%d archived)", n, len(t.ProductIDs)).
				WithData(map[string]interface{}{"productIds": t.ProductIDs})
		}
		return nil
	})
	if err == nil {
		return nil
	}
	if _, ok := constant.AsError(err); ok {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return constant.Errorf(constant.CodeOrderAlreadyExist, "settlement %s already recorded", key)
	}
	return constant.Wrap(constant.CodeDatabaseError, err)
}

// secondaryWrites 计数类更新，互不影响，失败只返回告警
func (s *SettlementService) secondaryWrites(ctx context.Context, l logrus.FieldLogger, t dto.SettleTrigger, o *model.Order, products []model.Product) []string {
	var warnings []string
	warn := func(msg string, err error) {
		l.WithError(err).Warn(msg)
		warnings = append(warnings, msg)
	}

	if t.InStore() && t.SoldByStaffID != "" {
		if err := s.orderDao.StampSoldBy(ctx, t.StoreID, t.ProductIDs, t.SoldByStaffID); err != nil {
			warn("stamp sold-by staff failed", err)
		}
		if err := s.mainDao.AddStaffSale(ctx, t.SoldByStaffID, o.TotalAmount, len(products)); err != nil {
			warn("update staff totals failed", err)
		}
	}

	counts := map[string]int{}
	for _, p := range products {
		counts[p.SellerID]++
	}
	sellerIDs := make([]string, 0, len(counts))
	for id := range counts {
		sellerIDs = append(sellerIDs, id)
	}
	sort.Strings(sellerIDs)
	for _, id := range sellerIDs {
		if err := s.mainDao.IncrSellerSold(ctx, id, counts[id]); err != nil {
			warn(fmt.Sprintf("update sold count for seller %s failed", id), err)
		}
	}

	if t.UserID != "" {
		if err := s.mainDao.AddUserPurchase(ctx, t.UserID, o.TotalAmount, len(products)); err != nil {
			warn("update user totals failed", err)
		}
	}
	return warnings
}

type payee struct {
	kind        string
	account     string
	amountMinor int64
	// 店铺为 {店铺ID: 金额}；寄售人为该账户下各寄售人的份额
	shares map[string]int64
}

// payOut 每个收款账户一笔转账，并发执行，单笔失败不影响其他
func (s *SettlementService) payOut(ctx context.Context, l logrus.FieldLogger, store *model.Store, o *model.Order, calc dto.SettlementResult, alloc dto.Allocation) []dto.PayoutResult {
	payees := planPayees(store, alloc)
	if len(payees) == 0 {
		return nil
	}
	results := make([][]dto.PayoutResult, len(payees))
	p := pool.New().WithMaxGoroutines(s.cfg.TransferConcurrency)
	for i, pe := range payees {
		i, pe := i, pe
		p.Go(func() {
			results[i] = s.transferOne(ctx, l, store, o, calc, pe)
		})
	}
	p.Wait()

	var out []dto.PayoutResult
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

func planPayees(store *model.Store, alloc dto.Allocation) []payee {
	accounts := make([]string, 0, len(alloc.SellerMinor))
	for acct := range alloc.SellerMinor {
		accounts = append(accounts, acct)
	}
	sort.Strings(accounts)

	var out []payee
	for _, acct := range accounts {
		minor := alloc.SellerMinor[acct]
		if acct == "" || minor <= 0 {
			continue
		}
		out = append(out, payee{kind: model.PayeeSeller, account: acct, amountMinor: minor, shares: alloc.ShareMinor[acct]})
	}
	if alloc.StoreMinor > 0 && store.ConnectedAccountID != "" {
		out = append(out, payee{
			kind:        model.PayeeStore,
			account:     store.ConnectedAccountID,
			amountMinor: alloc.StoreMinor,
			shares:      map[string]int64{store.ID: alloc.StoreMinor},
		})
	}
	return out
}

// transferOne 一笔转账，按份额拆成每个收款人一条结果与流水
func (s *SettlementService) transferOne(ctx context.Context, l logrus.FieldLogger, store *model.Store, o *model.Order, calc dto.SettlementResult, pe payee) []dto.PayoutResult {
	ids := make([]string, 0, len(pe.shares))
	for id, m := range pe.shares {
		if m > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	amount := settlement.FromMinorUnits(pe.amountMinor)
	group := transferGroup(o.ID)
	l = l.WithFields(logrus.Fields{"payee_type": pe.kind, "destination": pe.account, "payee_ids": strings.Join(ids, ","), "amount": amount.StringFixed(2)})

	results := make([]dto.PayoutResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, dto.PayoutResult{
			PayeeID:     id,
			PayeeType:   pe.kind,
			Destination: pe.account,
			Amount:      settlement.FromMinorUnits(pe.shares[id]),
			AmountMinor: pe.shares[id],
		})
	}

	transferID, err := s.gateway.Transfer(ctx, dto.TransferRequest{
		AmountMinor:          pe.amountMinor,
		Currency:             o.Currency,
		DestinationAccountID: pe.account,
		TransferGroup:        group,
		IdempotencyKey:       fmt.Sprintf("%s_%s", group, pe.account),
		Metadata: map[string]string{
			"order_id":               fmt.Sprint(o.ID),
			"store_id":               store.ID,
			"payee_ids":              strings.Join(ids, ","),
			"payee_type":             pe.kind,
			"total_sales":            calc.TotalSales.StringFixed(2),
			"total_fees":             calc.TotalFees.StringFixed(2),
			"total_sales_after_fees": calc.TotalSalesAfterFees.StringFixed(2),
			"payout":                 amount.StringFixed(2),
		},
	})
	if err != nil {
		kind := constant.KindOf(err)
		for i := range results {
			results[i].Error = err.Error()
			results[i].ErrorCode = kind
		}
		s.metrics.ObserveTransfer(pe.kind, o.Currency, kind, pe.amountMinor)
		l.WithError(err).Error("transfer failed")
		if kind == constant.KindInsufficientFunds && s.alerter != nil {
			s.alerter.Alert("Insufficient platform balance for payout", [][2]string{
				{"order_id", fmt.Sprint(o.ID)},
				{"store_id", store.ID},
				{"payee", pe.kind + " " + strings.Join(ids, ",")},
				{"amount", amount.StringFixed(2) + " " + o.Currency},
			})
		}
		return results
	}
	s.metrics.ObserveTransfer(pe.kind, o.Currency, "ok", pe.amountMinor)
	l = l.WithField("transfer_id", transferID)

	for i := range results {
		r := &results[i]
		r.ExternalTransferID = transferID
		if _, err := s.ledger.RecordPayout(ctx, dto.PayoutEntry{
			StoreID:            store.ID,
			PayeeID:            r.PayeeID,
			PayeeType:          pe.kind,
			Amount:             r.Amount,
			Currency:           o.Currency,
			TransferGroup:      group,
			ExternalTransferID: transferID,
			OrderID:            o.ID,
		}); err != nil {
			// 钱已转出但流水缺失，需要人工补录
			l.WithError(err).WithField("payee_id", r.PayeeID).Error("record payout failed")
			if s.alerter != nil {
				s.alerter.Alert("Payout ledger write failed", [][2]string{
					{"order_id", fmt.Sprint(o.ID)},
					{"transfer_id", transferID},
					{"payee", pe.kind + " " + r.PayeeID},
					{"amount", r.Amount.StringFixed(2) + " " + o.Currency},
				})
			}
		}
	}
	l.Info("payout recorded")
	return results
}

// registerBuyer 只处理线上且带邮箱、没有显式 userId 的订单
func (s *SettlementService) registerBuyer(ctx context.Context, l logrus.FieldLogger, t dto.SettleTrigger, o *model.Order, calc dto.SettlementResult, items int) string {
	if s.buyers == nil || t.Channel != dto.ChannelOnline || t.UserID != "" || t.Buyer == nil || t.Buyer.Email == "" {
		return ""
	}
	if s.cfg.BuyerTimeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.cfg.BuyerTimeoutSec)*time.Second)
		defer cancel()
	}
	userID, err := s.buyers.Register(ctx, o.StoreID, *t.Buyer, o.ID, calc.TotalSales, items)
	if err != nil {
		l.WithError(err).Warn("buyer registration failed")
		return "buyer registration failed"
	}
	l.WithField("user_id", userID).Info("buyer registered")
	return ""
}

func (s *SettlementService) notify(ctx context.Context, t dto.SettleTrigger, o *model.Order, sellers map[string]*model.Seller, payouts []dto.PayoutResult) {
	for _, p := range payouts {
		if p.PayeeType != model.PayeeSeller || p.Error != "" {
			continue
		}
		seller := sellers[p.PayeeID]
		if seller == nil || seller.Email == "" {
			continue
		}
		s.dispatcher.Dispatch(ctx, dto.NotifyJob{
			Kind:    dto.NotifySellerSale,
			OrderID: o.ID,
			StoreID: o.StoreID,
			Email:   seller.Email,
			Name:    seller.Name,
			Variables: map[string]string{
				"amount":   p.Amount.StringFixed(2),
				"currency": o.Currency,
			},
		})
	}
	if t.Buyer != nil && t.Buyer.Email != "" {
		s.dispatcher.Dispatch(ctx, dto.NotifyJob{
			Kind:    dto.NotifyOrderConfirmed,
			OrderID: o.ID,
			StoreID: o.StoreID,
			Email:   t.Buyer.Email,
			Name:    t.Buyer.Name,
			Variables: map[string]string{
				"total":    o.TotalAmount.Add(o.ShippingFee).StringFixed(2),
				"currency": o.Currency,
				"items":    fmt.Sprint(len(o.Items)),
				"url_from": t.URLFrom,
			},
		})
	}
}

func transferGroup(orderID uint64) string {
	return fmt.Sprintf("order_%d", orderID)
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
