package dal

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"stella-settlement-api/internal/config"
)

// NewRedis 连接并 Ping 一次
func NewRedis(c config.RedisCfg) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s failed: %w", c.Addr, err)
	}
	return client, nil
}
