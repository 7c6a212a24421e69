package mq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"stella-settlement-api/internal/dal"
	"stella-settlement-api/internal/dto"
	"stella-settlement-api/internal/notify"
)

// NotifyConsumer 消费通知队列，失败重新发布，超过 maxRetry 丢弃
type NotifyConsumer struct {
	src        channelSource
	queue      string
	pub        *Publisher
	h          notify.JobHandler
	maxRetry   int
	retryDelay time.Duration
	log        logrus.FieldLogger
}

func NewNotifyConsumer(r *dal.RabbitMQ, h notify.JobHandler, maxRetry int, log logrus.FieldLogger) *NotifyConsumer {
	return &NotifyConsumer{
		src:        fromRabbit(r),
		queue:      r.Queue(),
		pub:        NewPublisher(r, nil, log),
		h:          h,
		maxRetry:   maxRetry,
		retryDelay: 5 * time.Second,
		log:        log,
	}
}

// Start 阻塞直到 ctx 取消，通道断开后等重连再继续消费
func (c *NotifyConsumer) Start(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := c.consume(ctx); err != nil {
			c.log.Warnf("consume %s failed: %v", c.queue, err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.retryDelay):
		}
	}
}

func (c *NotifyConsumer) consume(ctx context.Context) error {
	ch, err := c.src()
	if err != nil {
		return err
	}
	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			c.handle(ctx, d)
		}
	}
}

func (c *NotifyConsumer) handle(ctx context.Context, d amqp.Delivery) {
	var job dto.NotifyJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		c.log.Errorf("notify job unmarshal err: %v", err)
		_ = d.Nack(false, false)
		return
	}

	if err := c.h.Deliver(ctx, job); err != nil {
		c.log.WithError(err).Warnf("deliver %s failed order=%d", job.Kind, job.OrderID)

		if job.RetryCount < c.maxRetry {
			job.RetryCount++
			if perr := c.pub.publish(job); perr != nil {
				c.log.Errorf("republish %s failed order=%d: %v", job.Kind, job.OrderID, perr)
			} else {
				c.log.Infof("retrying %s for order %d (attempt %d)", job.Kind, job.OrderID, job.RetryCount)
			}
		} else {
			c.log.Errorf("max retry reached for %s order %d", job.Kind, job.OrderID)
		}

		_ = d.Nack(false, false)
		return
	}

	_ = d.Ack(false)
}
