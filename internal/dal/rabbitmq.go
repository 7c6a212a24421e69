package dal

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"stella-settlement-api/internal/config"
)

// 路由键
const NotifyRoutingKey = "notify.send"

// RabbitMQ 连接与通道，断开后自动重连
type RabbitMQ struct {
	cfg config.RabbitCfg
	log logrus.FieldLogger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel

	// 用 NotifyClose 事件来判断是否已关闭（而不是 IsClosed）
	connClosedCh chan *amqp.Error
	chClosedCh   chan *amqp.Error

	reconnecting bool
	closed       bool
	retryDelay   time.Duration
}

// NewRabbitMQ 首次连接并声明交换机、队列
func NewRabbitMQ(cfg config.RabbitCfg, log logrus.FieldLogger) (*RabbitMQ, error) {
	r := &RabbitMQ{cfg: cfg, log: log, retryDelay: 5 * time.Second}
	if err := r.connect(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RabbitMQ) connect() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isConnAlive() && r.isChanAlive() {
		return nil
	}

	conn, err := amqp.Dial(r.cfg.URL)
	if err != nil {
		return fmt.Errorf("rabbitmq dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel failed: %w", err)
	}
	if err := declare(ch, r.cfg); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}
	if r.cfg.Prefetch > 0 {
		if err := ch.Qos(r.cfg.Prefetch, 0, false); err != nil {
			r.log.Warnf("[RabbitMQ] set QoS failed: %v", err)
		}
	}

	r.conn = conn
	r.ch = ch
	r.connClosedCh = conn.NotifyClose(make(chan *amqp.Error, 1))
	r.chClosedCh = ch.NotifyClose(make(chan *amqp.Error, 1))
	r.log.Infof("[RabbitMQ] connected, exchange=%s queue=%s", r.cfg.Exchange, r.cfg.NotifyQueue)

	go r.watchClose(r.connClosedCh, r.chClosedCh)
	return nil
}

// exchange & queues
func declare(ch *amqp.Channel, cfg config.RabbitCfg) error {
	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("exchange declare %s failed: %w", cfg.Exchange, err)
	}
	if _, err := ch.QueueDeclare(cfg.NotifyQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare %s failed: %w", cfg.NotifyQueue, err)
	}
	if err := ch.QueueBind(cfg.NotifyQueue, NotifyRoutingKey, cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind %s failed: %w", cfg.NotifyQueue, err)
	}
	return nil
}

// 监听关闭事件，触发重连
func (r *RabbitMQ) watchClose(connClosed, chClosed chan *amqp.Error) {
	select {
	case err, ok := <-connClosed:
		if !ok && err == nil {
			// Close() 主动关闭
			if r.isClosed() {
				return
			}
		}
		r.log.Warnf("[RabbitMQ] connection closed: %v", err)
	case err := <-chClosed:
		r.log.Warnf("[RabbitMQ] channel closed: %v", err)
	}
	r.reconnect()
}

// 自愈重连（阻塞重试直至成功或被关闭）
func (r *RabbitMQ) reconnect() {
	r.mu.Lock()
	if r.reconnecting || r.closed {
		r.mu.Unlock()
		return
	}
	r.reconnecting = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.reconnecting = false
		r.mu.Unlock()
	}()

	for !r.isClosed() {
		err := r.connect()
		if err == nil {
			r.log.Info("[RabbitMQ] reconnected")
			return
		}
		r.log.Warnf("[RabbitMQ] reconnect failed: %v", err)
		time.Sleep(r.retryDelay)
	}
}

func (r *RabbitMQ) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *RabbitMQ) isConnAlive() bool {
	if r.conn == nil || r.connClosedCh == nil {
		return false
	}
	select {
	case <-r.connClosedCh:
		return false
	default:
		return true
	}
}

func (r *RabbitMQ) isChanAlive() bool {
	if r.ch == nil || r.chClosedCh == nil {
		return false
	}
	select {
	case <-r.chClosedCh:
		return false
	default:
		return true
	}
}

// Channel 当前可用通道，断开期间返回错误而不是阻塞
func (r *RabbitMQ) Channel() (*amqp.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, fmt.Errorf("rabbitmq closed")
	}
	if r.ch == nil {
		return nil, fmt.Errorf("rabbitmq channel not ready")
	}
	return r.ch, nil
}

// Exchange 交换机名称
func (r *RabbitMQ) Exchange() string {
	return r.cfg.Exchange
}

// Queue 通知队列名称
func (r *RabbitMQ) Queue() string {
	return r.cfg.NotifyQueue
}

func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	r.closed = true
	ch, conn := r.ch, r.conn
	r.mu.Unlock()

	if ch != nil {
		_ = ch.Close()
	}
	if conn != nil {
		return conn.Close()
	}
	return nil
}
