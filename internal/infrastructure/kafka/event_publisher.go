package kafka

import (
	"context"
	"encoding/json"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
)

// CommissionEventPublisher сериализует события заявок и начислений в JSON
type CommissionEventPublisher struct {
	pub              domain.PublisherPort
	requestTopic     string
	attributionTopic string
}

func NewCommissionEventPublisher(pub domain.PublisherPort, requestTopic, attributionTopic string) *CommissionEventPublisher {
	return &CommissionEventPublisher{
		pub:              pub,
		requestTopic:     requestTopic,
		attributionTopic: attributionTopic,
	}
}

func (p *CommissionEventPublisher) PublishRequestEvent(ctx context.Context, event domain.RequestEvent) error {
	v, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.pub.Publish(ctx, p.requestTopic, domain.Message{Key: []byte(event.UserID), Value: v})
}

func (p *CommissionEventPublisher) PublishAttributionEvent(ctx context.Context, event domain.AttributionEvent) error {
	v, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.pub.Publish(ctx, p.attributionTopic, domain.Message{Key: []byte(event.UserID), Value: v})
}

var _ domain.EventPublisher = (*CommissionEventPublisher)(nil)
