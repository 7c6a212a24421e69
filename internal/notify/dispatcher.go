package notify

import (
	"context"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"stella-settlement-api/internal/dto"
)

// Dispatcher 通知投递，调用方不等待结果
type Dispatcher interface {
	Dispatch(ctx context.Context, job dto.NotifyJob)
}

// JobHandler 真正发送一条通知
type JobHandler interface {
	Deliver(ctx context.Context, job dto.NotifyJob) error
}

// AsyncDispatcher 未启用 MQ 时每个任务一个协程
type AsyncDispatcher struct {
	h   JobHandler
	log logrus.FieldLogger
}

func NewAsyncDispatcher(h JobHandler, log logrus.FieldLogger) *AsyncDispatcher {
	return &AsyncDispatcher{h: h, log: log}
}

func (d *AsyncDispatcher) Dispatch(_ context.Context, job dto.NotifyJob) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				d.log.Errorf("[notify] panic kind=%s order=%d: %v\n%s", job.Kind, job.OrderID, r, debug.Stack())
			}
		}()
		// 请求上下文会随响应结束被取消，这里不能沿用
		if err := d.h.Deliver(context.Background(), job); err != nil {
			d.log.WithError(err).Warnf("[notify] deliver failed kind=%s order=%d email=%s", job.Kind, job.OrderID, job.Email)
			return
		}
		d.log.Infof("[notify] delivered kind=%s order=%d", job.Kind, job.OrderID)
	}()
}
