package logger

import (
	"context"
	"encoding/binary"
	"errors"
	"sync/atomic"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/infra/producer"
	"github.com/segmentio/kafka-go"
)

// KafkaLogger is an io.Writer shipping each zerolog entry to a kafka topic.
// Keys are a running sequence so entries spread over partitions.
type KafkaLogger struct {
	w       producer.Writer
	timeout time.Duration
	logID   atomic.Uint64
	closed  atomic.Bool
}

func NewKafkaLogger(w producer.Writer) *KafkaLogger {
	return &KafkaLogger{w: w, timeout: 5 * time.Second}
}

func (kw *KafkaLogger) Write(p []byte) (n int, err error) {
	if kw == nil || kw.closed.Load() {
		return 0, errors.New("kafka logger is not running")
	}

	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, kw.logID.Add(1))

	// zerolog reuses p after Write returns
	value := make([]byte, len(p))
	copy(value, p)

	ctx, cancel := context.WithTimeout(context.Background(), kw.timeout)
	defer cancel()
	if err := kw.w.WriteMessages(ctx, kafka.Message{Key: key, Value: value}); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (kw *KafkaLogger) Close() error {
	if !kw.closed.CompareAndSwap(false, true) {
		return nil
	}
	return kw.w.Close()
}
