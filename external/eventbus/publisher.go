package eventbus

import (
	"context"
	"fmt"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/usecase"
	"github.com/streadway/amqp"
)

// Publisher puts match events and live state snapshots on a topic exchange.
type Publisher struct {
	cfg    Config
	logger *logging.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewPublisher(cfg Config, logger *logging.Logger) (*Publisher, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{cfg: cfg, logger: logger}, nil
}

// Publish sends event with routing key match.event.<type>.
func (p *Publisher) Publish(ctx context.Context, event usecase.NotificationEvent) error {
	body, err := sonic.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal notification event: %w", err)
	}
	key := eventRoutingKey(event.EventType)
	if err := p.publish(key, body, amqp.Table{"event_type": event.EventType}); err != nil {
		p.logger.WarnContext(ctx, "publish match event failed", "routing_key", key, "entity_id", event.EntityID, "error", err)
		return err
	}
	return nil
}

// Broadcast publishes a live state snapshot. Failures are logged only.
func (p *Publisher) Broadcast(state match.State) {
	body, err := sonic.Marshal(state)
	if err != nil {
		p.logger.Warn("marshal match state failed", "match_id", state.MatchID, "error", err)
		return
	}
	if err := p.publish(routingKeyState, body, amqp.Table{"match_id": state.MatchID}); err != nil {
		p.logger.Warn("publish match state failed", "match_id", state.MatchID, "error", err)
	}
}

func (p *Publisher) publish(routingKey string, body []byte, headers amqp.Table) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	msg := amqp.Publishing{
		Headers:      headers,
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	// One reconnect attempt per publish; the broker may have dropped an idle channel.
	for attempt := 0; attempt < 2; attempt++ {
		if p.channel == nil {
			conn, channel, err := dial(p.cfg)
			if err != nil {
				return err
			}
			p.conn, p.channel = conn, channel
		}

		err := p.channel.Publish(p.cfg.Exchange, routingKey, false, false, msg)
		if err == nil {
			return nil
		}
		p.resetLocked()
		if attempt == 1 {
			return fmt.Errorf("publish %s: %w", routingKey, err)
		}
	}
	return nil
}

func (p *Publisher) resetLocked() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.channel, p.conn = nil, nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
	return nil
}
