package eventbus

import (
	"fmt"
	"strings"
	"time"

	"github.com/streadway/amqp"
)

const (
	defaultExchange = "matchday.events"
	defaultQueue    = "matchday.notifications"

	routingKeyEventPrefix = "match.event."
	routingKeyState       = "match.state"
)

type Config struct {
	URL      string
	Exchange string
	Queue    string
	// Prefetch bounds unacked deliveries per consumer.
	Prefetch int
}

func (c Config) normalize() (Config, error) {
	c.URL = strings.TrimSpace(c.URL)
	if c.URL == "" {
		return c, fmt.Errorf("eventbus amqp url is required")
	}
	if strings.TrimSpace(c.Exchange) == "" {
		c.Exchange = defaultExchange
	}
	if strings.TrimSpace(c.Queue) == "" {
		c.Queue = defaultQueue
	}
	if c.Prefetch <= 0 {
		c.Prefetch = 32
	}
	return c, nil
}

func dial(cfg Config) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.DialConfig(cfg.URL, amqp.Config{
		Heartbeat: 30 * time.Second,
		Locale:    "en_US",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("dial amqp: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open amqp channel: %w", err)
	}

	if err := channel.ExchangeDeclare(
		cfg.Exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}

	return conn, channel, nil
}

func eventRoutingKey(eventType string) string {
	eventType = strings.ToLower(strings.TrimSpace(eventType))
	if eventType == "" {
		eventType = "unknown"
	}
	return routingKeyEventPrefix + eventType
}
