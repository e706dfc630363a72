package storage

import (
	"context"
	"encoding/json"

	"cibo-compass/viewer-svc/internal/domain"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaFeedbackPublisher struct {
	Writer MessageWriter
}

func NewKafkaFeedbackPublisher(writer MessageWriter) *KafkaFeedbackPublisher {
	return &KafkaFeedbackPublisher{Writer: writer}
}

// PublishFeedback keys events by dish so votes for one dish stay ordered.
func (p *KafkaFeedbackPublisher) PublishFeedback(ctx context.Context, event domain.FeedbackEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Dish),
		Value: payload,
	})
}
