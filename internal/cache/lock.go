package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// 只有持有者才能删除
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`)

// SettleLock 同一结算键的进行中锁，带过期时间，进程崩溃后自动释放
type SettleLock struct {
	rdb *redis.Client
	ttl time.Duration
	log logrus.FieldLogger
}

func NewSettleLock(rdb *redis.Client, ttl time.Duration, log logrus.FieldLogger) *SettleLock {
	return &SettleLock{rdb: rdb, ttl: ttl, log: log}
}

// Acquire ok=false 表示已有请求在处理同一结算键
func (l *SettleLock) Acquire(ctx context.Context, settlementKey string) (release func(), ok bool, err error) {
	key := settleLockKey(settlementKey)
	token := uuid.NewString()

	ok, err = l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire settle lock %s: %w", settlementKey, err)
	}
	if !ok {
		return nil, false, nil
	}

	release = func() {
		// 请求 ctx 可能已取消，释放用独立超时
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.rdb, []string{key}, token).Err(); err != nil {
			l.log.WithError(err).WithField("settlement_key", settlementKey).Warn("[SettleLock] release failed")
		}
	}
	return release, true, nil
}
