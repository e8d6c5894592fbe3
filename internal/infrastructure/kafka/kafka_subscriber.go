package kafka

import (
	"context"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
	"github.com/segmentio/kafka-go"
)

type DefaultKafkaSubscriber struct {
	brokers []string
}

func NewDefaultKafkaSubscriber(brokers []string) *DefaultKafkaSubscriber {
	return &DefaultKafkaSubscriber{brokers: brokers}
}

// Subscribe читает topic в группе groupID до отмены ctx; канал закрывается при остановке.
// Offset коммитится только через Message.Ack
func (k *DefaultKafkaSubscriber) Subscribe(ctx context.Context, topic, groupID string) (<-chan domain.Message, error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: k.brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	out := make(chan domain.Message)
	go func() {
		defer reader.Close()
		defer close(out)
		for {
			m, err := reader.FetchMessage(ctx)
			if err != nil {
				return
			}
			msg := domain.Message{
				Key:   m.Key,
				Value: m.Value,
				Ack: func(ctx context.Context) error {
					return reader.CommitMessages(ctx, m)
				},
			}
			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
