package cache

const prefix = "stella"

// 结算进行中锁
func settleLockKey(settlementKey string) string {
	return prefix + ":settle:lock:" + settlementKey
}

// 店铺配置缓存
func storeKey(storeID string) string {
	return prefix + ":store:" + storeID
}
