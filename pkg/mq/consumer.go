package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"feeltrack/pkg/util"
)

type MessageHandler func(ctx context.Context, data json.RawMessage) error

// DeadLetterPublisher receives messages whose handler failed with a non-retryable error.
type DeadLetterPublisher interface {
	PublishToDLQ(routingKey string, body []byte, originalError string) error
}

type Consumer struct {
	conn       *amqp091.Connection
	channel    *amqp091.Channel
	queue      amqp091.Queue
	routingKey string
	handler    MessageHandler
	dlq        DeadLetterPublisher
	retries    *util.RetryCounter
	maxRetries int64
	logger     *zap.Logger
}

// NewConsumer declares queueName, binds it to routingKey on the events exchange and
// returns a consumer ready for SetHandler + StartConsuming.
func NewConsumer(url, queueName, routingKey string, logger *zap.Logger) (*Consumer, error) {
	conn, err := NewConnection(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	fail := func(format string, err error) (*Consumer, error) {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf(format, err)
	}

	if err := DeclareExchange(ch, ExchangeName); err != nil {
		return fail("failed to declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		return fail("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, routingKey, ExchangeName, false, nil); err != nil {
		return fail("failed to bind queue: %w", err)
	}

	// one unacked message at a time; sweeps are not cheap
	if err := ch.Qos(1, 0, false); err != nil {
		return fail("failed to set qos: %w", err)
	}

	logger.Info("Consumer initialized",
		zap.String("routing_key", routingKey),
		zap.String("queue", queueName),
		zap.String("exchange", ExchangeName),
	)

	return &Consumer{
		conn:       conn,
		channel:    ch,
		queue:      q,
		routingKey: routingKey,
		logger:     logger,
	}, nil
}

func (c *Consumer) SetHandler(h MessageHandler) {
	c.handler = h
}

func (c *Consumer) SetDeadLetter(dlq DeadLetterPublisher) {
	c.dlq = dlq
}

// SetRetryLimit caps how often a retryable failure is requeued; past max the message is
// dead-lettered like a non-retryable one.
func (c *Consumer) SetRetryLimit(counter *util.RetryCounter, max int64) {
	c.retries = counter
	c.maxRetries = max
}

func (c *Consumer) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// StartConsuming blocks until ctx is cancelled or the delivery channel closes.
// Every delivery is either acked or nacked, including when the handler panics.
func (c *Consumer) StartConsuming(ctx context.Context) error {
	if c.handler == nil {
		return fmt.Errorf("consumer handler not set")
	}

	deliveries, err := c.channel.Consume(
		c.queue.Name,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("Consumer started consuming messages",
		zap.String("routing_key", c.routingKey),
		zap.String("queue", c.queue.Name),
	)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Consumer stopped", zap.String("queue", c.queue.Name))
			return nil
		case msg, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed for queue %s", c.queue.Name)
			}
			c.handle(ctx, msg)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg amqp091.Delivery) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Handler panic recovered",
				zap.String("routing_key", c.routingKey),
				zap.Any("panic", r),
			)
			if err := msg.Nack(false, false); err != nil {
				c.logger.Error("Failed to nack message after panic", zap.Error(err))
			}
		}
	}()

	err := c.handler(ctx, msg.Body)
	if err == nil {
		if c.retries != nil && msg.MessageId != "" {
			_ = c.retries.Reset(ctx, util.FormatRetryKey(c.queue.Name, msg.MessageId))
		}
		if ackErr := msg.Ack(false); ackErr != nil {
			c.logger.Error("Failed to ack message", zap.Error(ackErr))
		}
		return
	}

	retryable, errType := util.IsRetryableError(err)
	if retryable && c.exhausted(ctx, msg) {
		retryable = false
		errType = "retries_exhausted"
	}
	c.logger.Error("Handler error",
		zap.String("routing_key", c.routingKey),
		zap.String("queue", c.queue.Name),
		zap.String("error_type", errType),
		zap.Bool("retryable", retryable),
		zap.Error(err),
	)

	if retryable || c.dlq == nil {
		if nackErr := msg.Nack(false, retryable); nackErr != nil {
			c.logger.Error("Failed to nack message", zap.Error(nackErr))
		}
		return
	}

	if dlqErr := c.dlq.PublishToDLQ(c.routingKey, msg.Body, err.Error()); dlqErr != nil {
		c.logger.Error("Failed to publish to DLQ", zap.Error(dlqErr))
		_ = msg.Nack(false, true)
		return
	}
	_ = msg.Ack(false)
}

func (c *Consumer) exhausted(ctx context.Context, msg amqp091.Delivery) bool {
	if c.retries == nil || msg.MessageId == "" {
		return false
	}
	count, err := c.retries.IncrementAndGet(ctx, util.FormatRetryKey(c.queue.Name, msg.MessageId))
	if err != nil {
		c.logger.Warn("Retry counter unavailable", zap.Error(err))
		return false
	}
	return count > c.maxRetries
}
