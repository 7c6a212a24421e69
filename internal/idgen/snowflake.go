package idgen

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sirupsen/logrus"
)

// Generator 订单号生成器，多实例部署时 nodeID 必须不同
type Generator struct {
	node *snowflake.Node
}

// NewGenerator nodeID 范围 0-1023
func NewGenerator(nodeID int64) (*Generator, error) {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("init snowflake node %d: %w", nodeID, err)
	}
	return &Generator{node: n}, nil
}

// Next 生成订单ID
func (g *Generator) Next() uint64 {
	return uint64(g.node.Generate().Int64())
}

// WatchClock 时间回拨保护，snowflake 本身不防止时间回拨；发现回拨时调用 onBackward
func WatchClock(ctx context.Context, log logrus.FieldLogger, onBackward func()) {
	last := time.Now().UnixMilli()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			current := now.UnixMilli()
			if current < last {
				log.WithFields(logrus.Fields{"last": last, "now": current}).Error("[IDGen] system clock moved backward")
				if onBackward != nil {
					onBackward()
				}
			}
			last = current
		}
	}
}
