package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"stella-settlement-api/internal/cache"
	"stella-settlement-api/internal/config"
	"stella-settlement-api/internal/dal/dbtest"
	"stella-settlement-api/internal/dao"
	"stella-settlement-api/internal/dto"
	"stella-settlement-api/internal/ledger"
	"stella-settlement-api/internal/logger"
	"stella-settlement-api/internal/model"
)

type fakeGateway struct {
	mu     sync.Mutex
	seq    int
	calls  []dto.TransferRequest
	failOn map[string]error // key: 目标账户
}

func (g *fakeGateway) Transfer(_ context.Context, req dto.TransferRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, req)
	if err, ok := g.failOn[req.DestinationAccountID]; ok {
		return "", err
	}
	g.seq++
	return fmt.Sprintf("tr_%d", g.seq), nil
}

func (g *fakeGateway) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func (g *fakeGateway) byDestination(acct string) *dto.TransferRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.calls {
		if g.calls[i].DestinationAccountID == acct {
			return &g.calls[i]
		}
	}
	return nil
}

type fakeDispatcher struct {
	mu   sync.Mutex
	jobs []dto.NotifyJob
}

func (d *fakeDispatcher) Dispatch(_ context.Context, job dto.NotifyJob) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.jobs = append(d.jobs, job)
}

func (d *fakeDispatcher) emails(kind string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []string
	for _, j := range d.jobs {
		if j.Kind == kind {
			out = append(out, j.Email)
		}
	}
	return out
}

func (d *fakeDispatcher) kinds() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.jobs))
	for _, j := range d.jobs {
		out = append(out, j.Kind)
	}
	return out
}

type fakeAlerter struct {
	mu     sync.Mutex
	titles []string
}

func (a *fakeAlerter) Alert(title string, _ [][2]string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.titles = append(a.titles, title)
}

type seqIDs struct{ n uint64 }

func (s *seqIDs) Next() uint64 { return atomic.AddUint64(&s.n, 1) }

type fakeSessions struct {
	sess *dto.CheckoutSession
	err  error
}

func (f *fakeSessions) GetCheckoutSession(context.Context, string) (*dto.CheckoutSession, error) {
	return f.sess, f.err
}

type fakeMarketing struct {
	mu       sync.Mutex
	existing map[string]string
	created  []string
	listed   []string
}

func (m *fakeMarketing) FindProfileByEmail(_ context.Context, email string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.existing[email], nil
}

func (m *fakeMarketing) CreateProfile(_ context.Context, _, email, promo string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, email+"|"+promo)
	return "prof_" + email, nil
}

func (m *fakeMarketing) AddProfileToList(_ context.Context, listID, profileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listed = append(m.listed, listID+"|"+profileID)
	return nil
}

type fakePromo struct {
	codes []string
	err   error
}

func (p *fakePromo) CreatePromotionCode(_ context.Context, code string, _ float64) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.codes = append(p.codes, code)
	return code, nil
}

type fixture struct {
	db         *gorm.DB
	svc        *SettlementService
	gateway    *fakeGateway
	dispatcher *fakeDispatcher
	alerter    *fakeAlerter
	sessions   *fakeSessions
	marketing  *fakeMarketing
	promo      *fakePromo
	ledger     *ledger.Ledger
}

type fixtureOpt func(*SettlementDeps)

func withLocker(l Locker) fixtureOpt {
	return func(d *SettlementDeps) { d.Locker = l }
}

func settlementCfg() config.SettlementCfg {
	return config.SettlementCfg{
		ProcessorFeePct:         decimal.NewFromInt(2),
		DefaultPlatformFeePct:   decimal.NewFromInt(1),
		DefaultConsignmentRate:  decimal.NewFromInt(50),
		OnlineShippingSurcharge: decimal.NewFromInt(10),
		TransferConcurrency:     4,
		BuyerTimeoutSec:         5,
	}
}

func newFixture(t *testing.T, opts ...fixtureOpt) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	log := logger.Discard()
	f := &fixture{
		db:         db,
		gateway:    &fakeGateway{failOn: map[string]error{}},
		dispatcher: &fakeDispatcher{},
		alerter:    &fakeAlerter{},
		sessions:   &fakeSessions{},
		marketing:  &fakeMarketing{existing: map[string]string{}},
		promo:      &fakePromo{},
		ledger:     ledger.New(db),
	}
	deps := SettlementDeps{
		DB:         db,
		Stores:     cache.NewStoreCache(nil, dao.NewMainDao(db), time.Minute, log),
		IDs:        &seqIDs{n: 1000},
		Gateway:    f.gateway,
		Sessions:   f.sessions,
		Ledger:     f.ledger,
		Buyers:     NewBuyerService(db, f.promo, f.marketing, "welcome", 10, log),
		Dispatcher: f.dispatcher,
		Alerter:    f.alerter,
		Cfg:        settlementCfg(),
		Log:        log,
	}
	for _, o := range opts {
		o(&deps)
	}
	svc, err := NewSettlementService(deps)
	require.NoError(t, err)
	f.svc = svc
	seedStore(t, db)
	return f
}

// store-1: 店铺账户 acct_store
// seller-a 有收款账户 acct_A；seller-b 没有；seller-d / seller-e 分别为 acct_B / acct_C；
// seller-z 与 seller-a 共用 acct_A
// p100 / p50 属于 seller-a，pb 属于 seller-b，pd 属于 seller-d，pe 属于 seller-e，pz 属于 seller-z，
// p-other 属于 store-2
func seedStore(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&model.Store{ID: "store-1", Name: "Loop", Currency: "GBP", ConnectedAccountID: "acct_store"}).Error)
	require.NoError(t, db.Create(&model.Store{ID: "store-2", Name: "Other", Currency: "GBP"}).Error)
	require.NoError(t, db.Create(&model.Seller{ID: "seller-a", StoreID: "store-1", Name: "Ann", Email: "ann@x.com", ConnectedAccountID: "acct_A"}).Error)
	require.NoError(t, db.Create(&model.Seller{ID: "seller-b", StoreID: "store-1", Name: "Bob", Email: "bob@x.com"}).Error)
	require.NoError(t, db.Create(&model.Seller{ID: "seller-c", StoreID: "store-2", Name: "Cat"}).Error)
	require.NoError(t, db.Create(&model.Seller{ID: "seller-d", StoreID: "store-1", Name: "Dee", Email: "dee@x.com", ConnectedAccountID: "acct_B"}).Error)
	require.NoError(t, db.Create(&model.Seller{ID: "seller-e", StoreID: "store-1", Name: "Eve", Email: "eve@x.com", ConnectedAccountID: "acct_C"}).Error)
	require.NoError(t, db.Create(&model.Seller{ID: "seller-z", StoreID: "store-1", Name: "Zed", Email: "zed@x.com", ConnectedAccountID: "acct_A"}).Error)
	require.NoError(t, db.Create(&model.Staff{ID: "staff-1", StoreID: "store-1", Name: "Sam"}).Error)
	require.NoError(t, db.Create(&[]model.Product{
		{ID: "p100", StoreID: "store-1", SellerID: "seller-a", Name: "Coat", OurPrice: decimal.RequireFromString("100.00")},
		{ID: "p50", StoreID: "store-1", SellerID: "seller-a", Name: "Hat", OurPrice: decimal.RequireFromString("50.00")},
		{ID: "pb", StoreID: "store-1", SellerID: "seller-b", Name: "Bag", OurPrice: decimal.RequireFromString("100.00")},
		{ID: "pd", StoreID: "store-1", SellerID: "seller-d", Name: "Scarf", OurPrice: decimal.RequireFromString("40.00")},
		{ID: "pe", StoreID: "store-1", SellerID: "seller-e", Name: "Belt", OurPrice: decimal.RequireFromString("20.00")},
		{ID: "pz", StoreID: "store-1", SellerID: "seller-z", Name: "Mug", OurPrice: decimal.RequireFromString("20.00")},
		{ID: "p-other", StoreID: "store-2", SellerID: "seller-c", Name: "Lamp", OurPrice: decimal.RequireFromString("10.00")},
	}).Error)
}

func onlineTrigger(session string, ids ...string) dto.SettleTrigger {
	return dto.SettleTrigger{
		StoreID:    "store-1",
		ProductIDs: ids,
		Channel:    dto.ChannelOnline,
		SessionID:  session,
		Buyer:      &dto.Buyer{Email: "Buyer@Example.com", Name: "Bea", City: "Leeds"},
	}
}
