package publisher

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/flexprice/console/internal/config"
	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/logger"
)

// EventPublisher publishes domain events to in-process subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Subscribe(ctx context.Context) (<-chan *message.Message, error)
	Close() error
}

type eventPublisher struct {
	pubSub  *gochannel.GoChannel
	topic   string
	enabled bool
	logger  *logger.Logger
}

// NewEventPublisher builds a publisher on a watermill gochannel pubsub.
func NewEventPublisher(cfg *config.Configuration, log *logger.Logger) EventPublisher {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer: cfg.EventBus.BufferSize,
		},
		log.WatermillLogger(),
	)

	return &eventPublisher{
		pubSub:  pubSub,
		topic:   cfg.EventBus.Topic,
		enabled: cfg.EventBus.Enabled,
		logger:  log,
	}
}

func (p *eventPublisher) Publish(ctx context.Context, event *Event) error {
	if !p.enabled || event == nil {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to marshal event").
			Mark(ierr.ErrSystem)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("entity_id", event.EntityID)

	p.logger.WithContext(ctx).Debugw("publishing event",
		"event_id", event.ID,
		"event_type", event.Type,
		"entity_id", event.EntityID,
		"topic", p.topic,
	)

	if err := p.pubSub.Publish(p.topic, msg); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to publish event").
			WithReportableDetails(map[string]any{
				"event_id":   event.ID,
				"event_type": event.Type,
			}).
			Mark(ierr.ErrSystem)
	}
	return nil
}

func (p *eventPublisher) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	messages, err := p.pubSub.Subscribe(ctx, p.topic)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to subscribe to events").
			Mark(ierr.ErrSystem)
	}
	return messages, nil
}

func (p *eventPublisher) Close() error {
	return p.pubSub.Close()
}
