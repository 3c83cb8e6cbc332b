package producer

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync/atomic"

	"github.com/segmentio/kafka-go"
)

var ErrPublisherClosed = errors.New("event publisher is closed")

// IEventPublisher emits domain events after their transaction committed.
type IEventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
	Close() error
}

type KafkaEventPublisher struct {
	writer Writer
	closed atomic.Bool
}

func NewKafkaEventPublisher(w Writer) *KafkaEventPublisher {
	if w == nil {
		panic("NewKafkaEventPublisher: writer cannot be nil")
	}
	return &KafkaEventPublisher{writer: w}
}

// Publish blocks until every event is acknowledged.
func (p *KafkaEventPublisher) Publish(ctx context.Context, events ...Event) error {
	if p.closed.Load() {
		return ErrPublisherClosed
	}
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		b, err := json.Marshal(e)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(strconv.FormatUint(uint64(e.OrderID), 10)),
			Value: b,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(e.Type)},
			},
			Time: e.OccurredAt,
		})
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

func (p *KafkaEventPublisher) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.writer.Close()
}

// NoopPublisher drops events, used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ...Event) error { return nil }
func (NoopPublisher) Close() error                            { return nil }

var (
	_ IEventPublisher = (*KafkaEventPublisher)(nil)
	_ IEventPublisher = NoopPublisher{}
)
