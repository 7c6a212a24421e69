package service

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"stella-settlement-api/internal/constant"
	"stella-settlement-api/internal/dto"
)

const productKeyPrefix = "productId_"

// TriggerFromMetadata 结账会话 metadata -> 结算请求
//
// 商品以 productId_0, productId_1 ... 形式平铺；带 soldByStaffId 或 isCash 的视为门店销售。
func TriggerFromMetadata(meta map[string]string, buyer *dto.Buyer) (dto.SettleTrigger, error) {
	t := dto.SettleTrigger{
		StoreID:       strings.TrimSpace(meta["storeId"]),
		SoldByStaffID: strings.TrimSpace(meta["soldByStaffId"]),
		UserID:        strings.TrimSpace(meta["userId"]),
		SessionID:     strings.TrimSpace(meta["sessionId"]),
		URLFrom:       meta["urlFrom"],
		Buyer:         buyer,
	}
	if t.StoreID == "" {
		return t, constant.Errorf(constant.CodeMissingParams, "metadata.storeId is required")
	}

	keys := make([]string, 0, len(meta))
	for k := range meta {
		if strings.HasPrefix(k, productKeyPrefix) {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return productIndex(keys[i]) < productIndex(keys[j]) })
	for _, k := range keys {
		if v := strings.TrimSpace(meta[k]); v != "" {
			t.ProductIDs = append(t.ProductIDs, v)
		}
	}
	if len(t.ProductIDs) == 0 {
		return t, constant.Errorf(constant.CodeMissingParams, "metadata has no productId_* entries")
	}

	isCash, _ := strconv.ParseBool(meta["isCash"])
	switch {
	case isCash:
		t.Channel = dto.ChannelCash
	case t.SoldByStaffID != "":
		t.Channel = dto.ChannelCard
	default:
		t.Channel = dto.ChannelOnline
	}
	// 门店销售不保存买家收货信息
	if t.InStore() {
		t.Buyer = nil
	}
	return t, nil
}

func productIndex(key string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(key, productKeyPrefix))
	if err != nil {
		return 1 << 30
	}
	return n
}

// SettleCheckoutSession 拉取结账会话并结算，未支付直接拒绝
func (s *SettlementService) SettleCheckoutSession(ctx context.Context, sessionID string) (*dto.SettleResult, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, constant.Errorf(constant.CodeMissingParams, "session_id is required")
	}
	if s.sessions == nil {
		return nil, constant.Errorf(constant.CodeSystemError, "checkout sessions are not configured")
	}
	sess, err := s.sessions.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Paid {
		return nil, constant.Errorf(constant.CodeSettlementNotPaid, "checkout session %s is not paid", sessionID)
	}
	t, err := TriggerFromMetadata(sess.Metadata, sess.Buyer)
	if err != nil {
		return nil, err
	}
	t.SessionID = sess.ID
	t.PaymentIntentID = sess.PaymentIntentID
	return s.Settle(ctx, t)
}
