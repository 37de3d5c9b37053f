package eventbus

import (
	"context"
	"errors"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v5"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/usecase"
	"github.com/streadway/amqp"
)

// Consumer feeds match events from the bus into the follower fanout.
type Consumer struct {
	cfg       Config
	processor usecase.NotificationEventProcessor
	logger    *logging.Logger
}

func NewConsumer(cfg Config, processor usecase.NotificationEventProcessor, logger *logging.Logger) (*Consumer, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	if processor == nil {
		return nil, fmt.Errorf("eventbus consumer needs a processor")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Consumer{cfg: cfg, processor: processor, logger: logger}, nil
}

// Run consumes until ctx is cancelled, reconnecting with exponential backoff when the
// broker connection drops.
func (c *Consumer) Run(ctx context.Context) error {
	delays := backoff.NewExponentialBackOff()
	delays.InitialInterval = time.Second
	delays.MaxInterval = time.Minute

	for {
		err := c.consumeOnce(ctx, delays)
		if ctx.Err() != nil {
			return nil
		}

		wait := delays.NextBackOff()
		c.logger.Warn("eventbus consumer disconnected, reconnecting", "error", err, "retry_in", wait.String())
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

func (c *Consumer) consumeOnce(ctx context.Context, delays *backoff.ExponentialBackOff) error {
	conn, channel, err := dial(c.cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = channel.Close()
		_ = conn.Close()
	}()

	if err := channel.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	queue, err := channel.QueueDeclare(
		c.cfg.Queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", c.cfg.Queue, err)
	}
	if err := channel.QueueBind(queue.Name, routingKeyEventPrefix+"#", c.cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", queue.Name, err)
	}

	deliveries, err := channel.Consume(
		queue.Name,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume %s: %w", queue.Name, err)
	}

	delays.Reset()
	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	c.logger.Info("eventbus consumer started", "queue", queue.Name, "exchange", c.cfg.Exchange)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr := <-closed:
			if amqpErr == nil {
				return errors.New("amqp connection closed")
			}
			return amqpErr
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("amqp delivery channel closed")
			}
			c.handle(ctx, delivery)
		}
	}
}

// handle acks processed and undecodable messages. A failed fanout is requeued once;
// a redelivered message that fails again is dropped.
func (c *Consumer) handle(ctx context.Context, delivery amqp.Delivery) {
	var event usecase.NotificationEvent
	if err := sonic.Unmarshal(delivery.Body, &event); err != nil {
		c.logger.WarnContext(ctx, "drop undecodable match event", "routing_key", delivery.RoutingKey, "error", err)
		_ = delivery.Ack(false)
		return
	}

	result, err := c.processor.ProcessNotificationEvent(ctx, event)
	if err != nil {
		c.logger.WarnContext(ctx, "process match event failed",
			"routing_key", delivery.RoutingKey,
			"entity_id", event.EntityID,
			"redelivered", delivery.Redelivered,
			"error", err,
		)
		_ = delivery.Nack(false, !delivery.Redelivered)
		return
	}

	c.logger.DebugContext(ctx, "match event processed",
		"event_type", result.EventType,
		"recipients", result.Recipients,
	)
	_ = delivery.Ack(false)
}
