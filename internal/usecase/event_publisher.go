package usecase

import (
	"context"

	"github.com/riskibarqy/matchday/internal/platform/logging"
)

type NotificationEventProcessor interface {
	ProcessNotificationEvent(ctx context.Context, event NotificationEvent) (FanoutResult, error)
}

// InProcessEventPublisher hands match events straight to the follower fanout. It is used
// when no message bus is configured.
type InProcessEventPublisher struct {
	processor NotificationEventProcessor
	logger    *logging.Logger
}

func NewInProcessEventPublisher(processor NotificationEventProcessor, logger *logging.Logger) *InProcessEventPublisher {
	if logger == nil {
		logger = logging.Default()
	}
	return &InProcessEventPublisher{processor: processor, logger: logger}
}

func (p *InProcessEventPublisher) Publish(ctx context.Context, event NotificationEvent) error {
	result, err := p.processor.ProcessNotificationEvent(ctx, event)
	if err != nil {
		return err
	}
	p.logger.DebugContext(ctx, "notification event fanned out",
		"event_type", result.EventType,
		"recipients", result.Recipients,
		"batches", result.Batches,
	)
	return nil
}
