package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const amqpPublishWait = 2 * time.Second

var (
	errConfirmClosed = errors.New("rabbitmq channel closed before confirm")
	errNack          = errors.New("rabbitmq nack")
)

// AMQPOutbox publishes messages to a durable topic exchange for an external mail consumer.
// Routing keys are "notification.<kind>".
type AMQPOutbox struct {
	url      string
	exchange string
	logger   *zap.Logger

	mu        sync.Mutex
	conn      *amqp.Connection
	ch        *amqp.Channel
	confirmCh <-chan amqp.Confirmation
}

// NewAMQPOutbox dials the broker and declares the exchange.
func NewAMQPOutbox(url, exchange string, logger *zap.Logger) (*AMQPOutbox, error) {
	o := &AMQPOutbox{
		url:      url,
		exchange: exchange,
		logger:   logger.With(zap.String("component", "amqp_outbox")),
	}
	if err := o.connect(); err != nil {
		return nil, err
	}
	return o, nil
}

// RoutingKey returns the topic a message kind is published under.
func RoutingKey(kind Kind) string {
	return "notification." + string(kind)
}

// Enqueue publishes msg and waits for the broker confirm.
func (o *AMQPOutbox) Enqueue(ctx context.Context, msg Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.EnqueuedAt.IsZero() {
		msg.EnqueuedAt = time.Now().UTC()
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, amqpPublishWait)
		defer cancel()
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.ensureConnected(); err != nil {
		return err
	}

	seq := o.ch.GetNextPublishSeqNo()
	err = o.ch.PublishWithContext(ctx, o.exchange, RoutingKey(msg.Kind), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.ID,
		Timestamp:    msg.EnqueuedAt,
		Body:         body,
	})
	if err != nil {
		o.reset()
		return fmt.Errorf("publish notification: %w", err)
	}

	if err := waitConfirm(ctx, o.confirmCh, seq); err != nil {
		// A confirm that arrives after we gave up must not be read by the next publish.
		if !errors.Is(err, errNack) {
			o.reset()
		}
		return err
	}
	return nil
}

// waitConfirm blocks until the confirm for delivery tag seq arrives. Confirms for
// earlier tags are skipped.
func waitConfirm(ctx context.Context, confirms <-chan amqp.Confirmation, seq uint64) error {
	for {
		select {
		case conf, ok := <-confirms:
			if !ok {
				return errConfirmClosed
			}
			if conf.DeliveryTag < seq {
				continue
			}
			if !conf.Ack {
				return fmt.Errorf("%w: deliveryTag=%d", errNack, conf.DeliveryTag)
			}
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close releases the channel and connection.
func (o *AMQPOutbox) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reset()
	return nil
}

func (o *AMQPOutbox) connect() error {
	conn, err := amqp.Dial(o.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(o.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("exchange declare: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("confirm mode: %w", err)
	}
	o.confirmCh = ch.NotifyPublish(make(chan amqp.Confirmation, 8))
	o.conn = conn
	o.ch = ch
	o.logger.Info("connected to rabbitmq", zap.String("exchange", o.exchange))
	return nil
}

func (o *AMQPOutbox) ensureConnected() error {
	if o.conn != nil && !o.conn.IsClosed() && o.ch != nil {
		return nil
	}
	o.reset()
	return o.connect()
}

// reset drops the connection. Pending confirms are drained until the library closes
// the notify channel so its dispatcher never blocks.
func (o *AMQPOutbox) reset() {
	if o.confirmCh != nil {
		go func(c <-chan amqp.Confirmation) {
			for range c {
			}
		}(o.confirmCh)
		o.confirmCh = nil
	}
	if o.ch != nil {
		_ = o.ch.Close()
		o.ch = nil
	}
	if o.conn != nil {
		_ = o.conn.Close()
		o.conn = nil
	}
}
