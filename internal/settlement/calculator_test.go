package settlement

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stella-settlement-api/internal/constant"
	"stella-settlement-api/internal/dto"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func defaultFees() dto.FeeConfig {
	return dto.FeeConfig{
		ProcessorFeePct:        d("2"),
		PlatformFeePct:         d("1"),
		DefaultConsignmentRate: d("50"),
	}
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "want %s, got %s", want, got)
}

func TestCalculateSingleItemDefaults(t *testing.T) {
	res, err := Calculate([]dto.LineItem{
		{ProductID: "p1", SellerID: "s1", SalePrice: d("100.00"), ConnectedAccountID: "acct_A"},
	}, defaultFees())
	require.NoError(t, err)

	assertDec(t, "100", res.TotalSales)
	assertDec(t, "3", res.TotalFeePct)
	assertDec(t, "3.00", res.TotalFees)
	assertDec(t, "97.00", res.TotalSalesAfterFees)
	require.Len(t, res.SellerPayouts, 1)
	assertDec(t, "48.50", res.SellerPayouts["acct_A"])
	assertDec(t, "48.50", res.StoreCut)
	assert.Equal(t, []string{"s1"}, res.SellersByAccount["acct_A"])
	assertDec(t, "48.50", res.SellerShares["s1"])

	alloc := Allocate(res)
	assert.Equal(t, int64(4850), alloc.SellerMinor["acct_A"])
	assert.Equal(t, int64(4850), alloc.StoreMinor)
	assert.Equal(t, int64(9700), alloc.TotalMinor)
}

func TestCalculateSellerWithoutAccountGoesToStore(t *testing.T) {
	res, err := Calculate([]dto.LineItem{
		{ProductID: "p1", SellerID: "s1", SalePrice: d("100.00")},
	}, defaultFees())
	require.NoError(t, err)

	assert.Empty(t, res.SellerPayouts)
	assertDec(t, "97.00", res.StoreCut)

	alloc := Allocate(res)
	assert.Empty(t, alloc.SellerMinor)
	assert.Equal(t, int64(9700), alloc.StoreMinor)
}

func TestCalculateRoundingToTheCent(t *testing.T) {
	res, err := Calculate([]dto.LineItem{
		{ProductID: "p1", SellerID: "s1", SalePrice: d("33.33"), ConnectedAccountID: "acct_A"},
	}, defaultFees())
	require.NoError(t, err)

	// 33.33 * 0.97 = 32.3301
	assertDec(t, "32.3301", res.TotalSalesAfterFees)
	assertDec(t, "16.16505", res.SellerPayouts["acct_A"])
	assertDec(t, "16.16505", res.StoreCut)

	alloc := Allocate(res)
	assert.Equal(t, int64(1617), alloc.SellerMinor["acct_A"])
	assert.Equal(t, int64(1616), alloc.StoreMinor)
	assert.Equal(t, ToMinorUnits(d("32.3301")), alloc.SellerMinor["acct_A"]+alloc.StoreMinor)
}

func TestCalculateAggregatesPerAccountAndRates(t *testing.T) {
	items := []dto.LineItem{
		{ProductID: "p1", SellerID: "s1", SalePrice: d("20.00"), ConnectedAccountID: "acct_A"},
		{ProductID: "p2", SellerID: "s1", SalePrice: d("30.00"), ConnectedAccountID: "acct_A"},
		{ProductID: "p3", SellerID: "s2", SalePrice: d("10.00"), ConsignmentRate: dp("70"), ConnectedAccountID: "acct_B"},
		{ProductID: "p4", SellerID: "s3", SalePrice: d("15.50"), ConsignmentRate: dp("40")},
	}
	fees := defaultFees()
	fees.FlatSurcharge = d("10")

	res, err := Calculate(items, fees)
	require.NoError(t, err)

	assertDec(t, "75.50", res.TotalSales)
	assertDec(t, "2.265", res.TotalFees)
	assertDec(t, "73.235", res.TotalSalesAfterFees)
	// (20+30)*0.97*0.5
	assertDec(t, "24.25", res.SellerPayouts["acct_A"])
	// 10*0.97*0.7
	assertDec(t, "6.79", res.SellerPayouts["acct_B"])
	assert.Len(t, res.SellerPayouts, 2)

	sum := res.StoreCut
	for _, v := range res.SellerPayouts {
		sum = sum.Add(v)
	}
	assertDec(t, "83.235", sum)

	alloc := Allocate(res)
	assert.Equal(t, int64(8324), alloc.TotalMinor)
	assert.Equal(t, alloc.TotalMinor, alloc.StoreMinor+alloc.SellerMinor["acct_A"]+alloc.SellerMinor["acct_B"])
}

func TestCalculateZeroItems(t *testing.T) {
	res, err := Calculate(nil, defaultFees())
	require.NoError(t, err)

	assert.True(t, res.TotalSales.IsZero())
	assert.True(t, res.TotalFees.IsZero())
	assert.True(t, res.StoreCut.IsZero())
	assert.Empty(t, res.SellerPayouts)

	alloc := Allocate(res)
	assert.Zero(t, alloc.StoreMinor)
	assert.Zero(t, alloc.TotalMinor)
}

func TestCalculateRejectsBadInput(t *testing.T) {
	cases := map[string][]dto.LineItem{
		"zero price":     {{ProductID: "p1", SalePrice: d("0")}},
		"negative price": {{ProductID: "p1", SalePrice: d("-5")}},
		"rate above 100": {{ProductID: "p1", SalePrice: d("5"), ConsignmentRate: dp("101")}},
		"negative rate":  {{ProductID: "p1", SalePrice: d("5"), ConsignmentRate: dp("-1")}},
	}
	for name, items := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Calculate(items, defaultFees())
			require.Error(t, err)
			assert.True(t, constant.IsKind(err, constant.KindInvalidInput))
		})
	}
}

func TestCalculateRejectsBadFees(t *testing.T) {
	fees := defaultFees()
	fees.PlatformFeePct = d("-1")
	_, err := Calculate([]dto.LineItem{{ProductID: "p1", SalePrice: d("5")}}, fees)
	assert.True(t, constant.IsKind(err, constant.KindInvalidInput))

	fees = defaultFees()
	fees.ProcessorFeePct = d("99.5")
	_, err = Calculate([]dto.LineItem{{ProductID: "p1", SalePrice: d("5")}}, fees)
	assert.True(t, constant.IsKind(err, constant.KindInvalidInput))
}

func TestAllocateNeverLeavesStoreNegative(t *testing.T) {
	// 三个寄售人 100% 分成，各自 0.005 向上取整会超出净额
	res := dto.SettlementResult{
		TotalSalesAfterFees: d("0.015"),
		SellerPayouts: map[string]decimal.Decimal{
			"acct_A": d("0.005"),
			"acct_B": d("0.005"),
			"acct_C": d("0.005"),
		},
	}
	alloc := Allocate(res)

	var sellers int64
	for _, m := range alloc.SellerMinor {
		assert.GreaterOrEqual(t, m, int64(0))
		sellers += m
	}
	assert.GreaterOrEqual(t, alloc.StoreMinor, int64(0))
	assert.Equal(t, alloc.TotalMinor, sellers+alloc.StoreMinor)
}

func TestMinorUnitConversion(t *testing.T) {
	assert.Equal(t, int64(4850), ToMinorUnits(d("48.5")))
	assert.Equal(t, int64(1617), ToMinorUnits(d("16.16505")))
	assert.Equal(t, int64(1), ToMinorUnits(d("0.005")))
	assert.Equal(t, int64(0), ToMinorUnits(d("0.0049")))
	assertDec(t, "48.50", FromMinorUnits(4850))
}

func TestAllocateSpreadsNegativeResidueAcrossEqualSellers(t *testing.T) {
	// 十个账户各 0.005，净额 0.05：逐个取整合计 10 分，比净额多 5 分
	res := dto.SettlementResult{
		TotalSalesAfterFees: d("0.05"),
		SellerPayouts:       map[string]decimal.Decimal{},
	}
	accts := []string{"acct_0", "acct_1", "acct_2", "acct_3", "acct_4", "acct_5", "acct_6", "acct_7", "acct_8", "acct_9"}
	for _, a := range accts {
		res.SellerPayouts[a] = d("0.005")
	}
	alloc := Allocate(res)

	assert.Equal(t, int64(5), alloc.TotalMinor)
	assert.Equal(t, int64(0), alloc.StoreMinor)
	// 金额相同按账户升序扣回
	for i, a := range accts {
		want := int64(1)
		if i < 5 {
			want = 0
		}
		assert.Equal(t, want, alloc.SellerMinor[a], a)
	}
}

func TestAllocateSplitsSharedAccountPerSeller(t *testing.T) {
	res, err := Calculate([]dto.LineItem{
		{ProductID: "p1", SellerID: "s1", SalePrice: d("100.00"), ConnectedAccountID: "acct_A"},
		{ProductID: "p2", SellerID: "s2", SalePrice: d("20.00"), ConnectedAccountID: "acct_A"},
		{ProductID: "p3", SellerID: "s2", SalePrice: d("0.01"), ConsignmentRate: dp("33.33"), ConnectedAccountID: "acct_A"},
	}, defaultFees())
	require.NoError(t, err)

	assert.Equal(t, []string{"s1", "s2"}, res.SellersByAccount["acct_A"])
	alloc := Allocate(res)
	shares := alloc.ShareMinor["acct_A"]
	assert.Equal(t, int64(4850), shares["s1"])
	assert.Equal(t, int64(970), shares["s2"])
	assert.Equal(t, alloc.SellerMinor["acct_A"], shares["s1"]+shares["s2"])
}

func TestSplitMinorTakesResidueFromTiedSellersInOrder(t *testing.T) {
	shares := map[string]decimal.Decimal{"s1": d("0.005"), "s2": d("0.005"), "s3": d("0.005")}
	out := splitMinor(2, []string{"s1", "s2", "s3"}, shares)
	assert.Equal(t, map[string]int64{"s1": 0, "s2": 1, "s3": 1}, out)

	out = splitMinor(4, []string{"s1", "s2", "s3"}, shares)
	assert.Equal(t, map[string]int64{"s1": 2, "s2": 1, "s3": 1}, out)
}

func TestCalculateAllocateConservesTotals(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	// 同一寄售人固定一个收款账户，s1 / s2 共用 acct_A，s4 没有账户
	sellerAccount := map[string]string{"s1": "acct_A", "s2": "acct_A", "s3": "acct_B", "s4": "", "s5": "acct_C", "s6": "acct_D"}
	sellerIDs := []string{"s1", "s2", "s3", "s4", "s5", "s6"}
	rates := []*decimal.Decimal{nil, dp("0"), dp("33.33"), dp("50"), dp("66.67"), dp("100")}
	processor := []string{"0", "1.4", "2", "2.9"}
	platform := []string{"0", "1", "5"}
	surcharge := []string{"0", "4.99", "10"}
	cent := d("0.01")

	for round := 0; round < 500; round++ {
		n := rng.Intn(12) + 1
		items := make([]dto.LineItem, n)
		for i := range items {
			seller := sellerIDs[rng.Intn(len(sellerIDs))]
			items[i] = dto.LineItem{
				ProductID:          "p",
				SellerID:           seller,
				SalePrice:          decimal.New(rng.Int63n(99999)+1, -2),
				ConsignmentRate:    rates[rng.Intn(len(rates))],
				ConnectedAccountID: sellerAccount[seller],
			}
		}
		fees := defaultFees()
		fees.ProcessorFeePct = d(processor[rng.Intn(len(processor))])
		fees.PlatformFeePct = d(platform[rng.Intn(len(platform))])
		fees.FlatSurcharge = d(surcharge[rng.Intn(len(surcharge))])

		res, err := Calculate(items, fees)
		require.NoError(t, err)

		// Σ寄售人 + 店铺 = 总额 × (1 - 费率) + 运费
		want := res.TotalSales.Mul(decimal.NewFromInt(1).Sub(res.TotalFeePct.Div(hundred))).Add(fees.FlatSurcharge)
		got := res.StoreCut
		for _, v := range res.SellerPayouts {
			got = got.Add(v)
		}
		require.True(t, got.Sub(want).Abs().LessThanOrEqual(cent), "round %d: want %s, got %s", round, want, got)

		alloc := Allocate(res)
		require.GreaterOrEqual(t, alloc.StoreMinor, int64(0), "round %d", round)
		sum := alloc.StoreMinor
		for acct, m := range alloc.SellerMinor {
			require.GreaterOrEqual(t, m, int64(0), "round %d", round)
			sum += m

			var shareSum int64
			for id, sm := range alloc.ShareMinor[acct] {
				require.GreaterOrEqual(t, sm, int64(0), "round %d", round)
				assert.Equal(t, acct, sellerAccount[id])
				shareSum += sm
			}
			require.Equal(t, m, shareSum, "round %d acct %s", round, acct)
		}
		require.Equal(t, alloc.TotalMinor, sum, "round %d", round)
		require.Equal(t, ToMinorUnits(want), alloc.TotalMinor, "round %d", round)
	}
}
