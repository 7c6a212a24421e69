package mq

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"stella-settlement-api/internal/dal"
	"stella-settlement-api/internal/dto"
	"stella-settlement-api/internal/notify"
)

// amqpChannel *amqp.Channel 的子集，便于测试替换
type amqpChannel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type channelSource func() (amqpChannel, error)

func fromRabbit(r *dal.RabbitMQ) channelSource {
	return func() (amqpChannel, error) {
		ch, err := r.Channel()
		if err != nil {
			return nil, err
		}
		return ch, nil
	}
}

// Publisher 通知任务写入 MQ，发布失败时交给 fallback 直接投递
type Publisher struct {
	src      channelSource
	exchange string
	fallback notify.Dispatcher
	log      logrus.FieldLogger
}

func NewPublisher(r *dal.RabbitMQ, fallback notify.Dispatcher, log logrus.FieldLogger) *Publisher {
	return &Publisher{src: fromRabbit(r), exchange: r.Exchange(), fallback: fallback, log: log}
}

func (p *Publisher) Dispatch(ctx context.Context, job dto.NotifyJob) {
	if err := p.publish(job); err != nil {
		p.log.WithError(err).Warnf("publish %s failed order=%d", dal.NotifyRoutingKey, job.OrderID)
		if p.fallback != nil {
			p.fallback.Dispatch(ctx, job)
		}
	}
}

func (p *Publisher) publish(job dto.NotifyJob) error {
	ch, err := p.src()
	if err != nil {
		return err
	}
	b, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return ch.Publish(
		p.exchange,
		dal.NotifyRoutingKey,
		false, false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         b,
		},
	)
}
