package settlement

import (
	"sort"

	"github.com/shopspring/decimal"

	"stella-settlement-api/internal/constant"
	"stella-settlement-api/internal/dto"
)

var hundred = decimal.NewFromInt(100)

// Calculate 计算手续费、寄售人分成与店铺留存
//
// 全程使用 decimal 精确计算，Σ SellerPayouts + StoreCut == TotalSalesAfterFees + FlatSurcharge。
// 没有收款账户的寄售人不出款，其份额计入 StoreCut。
func Calculate(items []dto.LineItem, fees dto.FeeConfig) (dto.SettlementResult, error) {
	res := dto.SettlementResult{
		SellerPayouts:    map[string]decimal.Decimal{},
		SellersByAccount: map[string][]string{},
		SellerShares:     map[string]decimal.Decimal{},
	}
	if err := validateFees(fees); err != nil {
		return res, err
	}
	if len(items) == 0 {
		return res, nil
	}

	rates := make([]decimal.Decimal, len(items))
	for i, it := range items {
		if !it.SalePrice.IsPositive() {
			return res, constant.Errorf(constant.CodeParamsRangeError, "product %s: sale price must be positive, got %s", it.ProductID, it.SalePrice)
		}
		rate := fees.DefaultConsignmentRate
		if it.ConsignmentRate != nil {
			rate = *it.ConsignmentRate
		}
		if !inPercentRange(rate) {
			return res, constant.Errorf(constant.CodeParamsRangeError, "product %s: consignment rate %s outside 0-100", it.ProductID, rate)
		}
		rates[i] = rate
		res.TotalSales = res.TotalSales.Add(it.SalePrice)
	}

	res.TotalFeePct = fees.ProcessorFeePct.Add(fees.PlatformFeePct)
	res.TotalFees = res.TotalSales.Mul(res.TotalFeePct).Div(hundred)
	res.TotalSalesAfterFees = res.TotalSales.Sub(res.TotalFees)
	res.FlatSurcharge = fees.FlatSurcharge

	storeCut := decimal.Zero
	for i, it := range items {
		payoutAfterFees := it.SalePrice.Sub(it.SalePrice.Mul(res.TotalFeePct).Div(hundred))
		sellerPayout := payoutAfterFees.Mul(rates[i]).Div(hundred)
		storeCut = storeCut.Add(payoutAfterFees.Sub(sellerPayout))

		if it.ConnectedAccountID == "" {
			storeCut = storeCut.Add(sellerPayout)
			continue
		}
		res.SellerPayouts[it.ConnectedAccountID] = res.SellerPayouts[it.ConnectedAccountID].Add(sellerPayout)
		if _, seen := res.SellerShares[it.SellerID]; !seen {
			res.SellersByAccount[it.ConnectedAccountID] = append(res.SellersByAccount[it.ConnectedAccountID], it.SellerID)
		}
		res.SellerShares[it.SellerID] = res.SellerShares[it.SellerID].Add(sellerPayout)
	}
	for acct := range res.SellersByAccount {
		sort.Strings(res.SellersByAccount[acct])
	}
	res.StoreCut = storeCut.Add(fees.FlatSurcharge)
	return res, nil
}

func validateFees(fees dto.FeeConfig) error {
	if fees.ProcessorFeePct.IsNegative() || fees.PlatformFeePct.IsNegative() {
		return constant.Errorf(constant.CodeParamsRangeError, "fee percentages must not be negative")
	}
	if fees.ProcessorFeePct.Add(fees.PlatformFeePct).GreaterThan(hundred) {
		return constant.Errorf(constant.CodeParamsRangeError, "total fee percentage exceeds 100")
	}
	if !inPercentRange(fees.DefaultConsignmentRate) {
		return constant.Errorf(constant.CodeParamsRangeError, "default consignment rate %s outside 0-100", fees.DefaultConsignmentRate)
	}
	if fees.FlatSurcharge.IsNegative() {
		return constant.Errorf(constant.CodeParamsRangeError, "flat surcharge must not be negative")
	}
	return nil
}

func inPercentRange(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(hundred)
}

// ToMinorUnits 元 -> 分，四舍五入（远离零）
func ToMinorUnits(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// FromMinorUnits 分 -> 元
func FromMinorUnits(m int64) decimal.Decimal {
	return decimal.New(m, -2)
}

// Allocate 把结算结果换算成最小货币单位
//
// 每个寄售人单独取整，店铺拿 净额 - Σ寄售人，尾差全部落在店铺，出款合计与净额分毫不差。
func Allocate(res dto.SettlementResult) dto.Allocation {
	alloc := dto.Allocation{
		SellerMinor: make(map[string]int64, len(res.SellerPayouts)),
		TotalMinor:  ToMinorUnits(res.TotalSalesAfterFees.Add(res.FlatSurcharge)),
	}
	var sellers int64
	for acct, amt := range res.SellerPayouts {
		m := ToMinorUnits(amt)
		alloc.SellerMinor[acct] = m
		sellers += m
	}
	alloc.StoreMinor = alloc.TotalMinor - sellers

	// 多个寄售人同时向上取整时店铺可能为负，从金额最大的寄售人逐分扣回
	if alloc.StoreMinor < 0 {
		accts := make([]string, 0, len(alloc.SellerMinor))
		for acct := range alloc.SellerMinor {
			accts = append(accts, acct)
		}
		sort.Slice(accts, func(i, j int) bool {
			if alloc.SellerMinor[accts[i]] == alloc.SellerMinor[accts[j]] {
				return accts[i] < accts[j]
			}
			return alloc.SellerMinor[accts[i]] > alloc.SellerMinor[accts[j]]
		})
		for i := 0; alloc.StoreMinor < 0; i = (i + 1) % len(accts) {
			if alloc.SellerMinor[accts[i]] > 0 {
				alloc.SellerMinor[accts[i]]--
				alloc.StoreMinor++
			}
		}
	}

	// 多个寄售人共用一个收款账户时，账户金额再按各自份额拆分
	alloc.ShareMinor = make(map[string]map[string]int64, len(alloc.SellerMinor))
	for acct, m := range alloc.SellerMinor {
		alloc.ShareMinor[acct] = splitMinor(m, res.SellersByAccount[acct], res.SellerShares)
	}
	return alloc
}

// splitMinor 各份额单独取整，尾差从份额最大的寄售人开始逐分调整，合计等于 total
func splitMinor(total int64, sellerIDs []string, shares map[string]decimal.Decimal) map[string]int64 {
	out := make(map[string]int64, len(sellerIDs))
	if len(sellerIDs) == 0 {
		return out
	}
	var sum int64
	for _, id := range sellerIDs {
		out[id] = ToMinorUnits(shares[id])
		sum += out[id]
	}
	order := append([]string(nil), sellerIDs...)
	sort.Slice(order, func(i, j int) bool {
		if c := shares[order[i]].Cmp(shares[order[j]]); c != 0 {
			return c > 0
		}
		return order[i] < order[j]
	})
	diff := total - sum
	for i := 0; diff > 0; i = (i + 1) % len(order) {
		out[order[i]]++
		diff--
	}
	for i := 0; diff < 0; i = (i + 1) % len(order) {
		if out[order[i]] > 0 {
			out[order[i]]--
			diff++
		}
	}
	return out
}
