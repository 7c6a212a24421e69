package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"stella-settlement-api/internal/model"
)

// StoreLoader 数据库读取
type StoreLoader interface {
	GetStore(ctx context.Context, id string) (*model.Store, error)
}

// StoreCache 店铺配置缓存，singleflight 防止缓存击穿
type StoreCache struct {
	rdb    *redis.Client
	loader StoreLoader
	ttl    time.Duration
	log    logrus.FieldLogger
	group  singleflight.Group
}

// NewStoreCache rdb 为 nil 时直接读库
func NewStoreCache(rdb *redis.Client, loader StoreLoader, ttl time.Duration, log logrus.FieldLogger) *StoreCache {
	return &StoreCache{rdb: rdb, loader: loader, ttl: ttl, log: log}
}

// Get 不存在时返回 nil, nil
func (c *StoreCache) Get(ctx context.Context, id string) (*model.Store, error) {
	v, err, _ := c.group.Do(id, func() (interface{}, error) {
		// 缓存不为空不从数据库读取
		if c.rdb != nil {
			cached, err := c.rdb.Get(ctx, storeKey(id)).Result()
			if err == nil && cached != "" {
				var s model.Store
				if err := json.Unmarshal([]byte(cached), &s); err == nil {
					return &s, nil
				}
			} else if err != nil && err != redis.Nil {
				c.log.WithError(err).Warn("[StoreCache] redis get failed, falling back to db")
			}
		}

		s, err := c.loader.GetStore(ctx, id)
		if err != nil || s == nil {
			return s, err
		}
		if c.rdb != nil {
			if b, err := json.Marshal(s); err == nil {
				if err := c.rdb.Set(ctx, storeKey(id), b, c.ttl).Err(); err != nil {
					c.log.WithError(err).Warn("[StoreCache] redis set failed")
				}
			}
		}
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	s, _ := v.(*model.Store)
	if s == nil {
		return nil, nil
	}
	// 调用方可能修改，返回副本
	cp := *s
	return &cp, nil
}
