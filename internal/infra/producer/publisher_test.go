package producer_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/infra/producer"
	mock_producer "github.com/RoyceAzure/lab/storefront/internal/infra/producer/mock"
	"github.com/golang/mock/gomock"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestKafkaEventPublisher(t *testing.T) {
	ctrl := gomock.NewController(t)
	writer := mock_producer.NewMockWriter(ctrl)

	var written []kafka.Message
	writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, msgs ...kafka.Message) error {
			written = append(written, msgs...)
			return nil
		})
	writer.EXPECT().Close().Return(nil).Times(1)

	p := producer.NewKafkaEventPublisher(writer)
	err := p.Publish(context.Background(),
		producer.NewOrderCreated(42, producer.OrderCreated{UserID: 1, AddressID: 3, Total: decimal.RequireFromString("1500.00"), ItemCount: 2}),
		producer.NewPaymentVerified(42, producer.PaymentVerified{Provider: "khalti", Reference: "tx", Amount: decimal.RequireFromString("1500.00")}),
	)
	require.NoError(t, err)
	require.Len(t, written, 2)
	require.Equal(t, "42", string(written[0].Key))
	require.Equal(t, "order.created", string(written[0].Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(written[1].Value, &decoded))
	require.Equal(t, "payment.verified", decoded["type"])
	require.Equal(t, "khalti", decoded["data"].(map[string]any)["provider"])

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	require.ErrorIs(t, p.Publish(context.Background(), producer.NewOrderCreated(1, producer.OrderCreated{})), producer.ErrPublisherClosed)
}

func TestKafkaEventPublisherWriteError(t *testing.T) {
	ctrl := gomock.NewController(t)
	writer := mock_producer.NewMockWriter(ctrl)
	boom := errors.New("broker down")
	writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(boom)

	p := producer.NewKafkaEventPublisher(writer)
	err := p.Publish(context.Background(), producer.NewOrderCreated(5, producer.OrderCreated{}))
	require.ErrorIs(t, err, boom)
}

func TestKafkaEventPublisherEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	writer := mock_producer.NewMockWriter(ctrl)

	p := producer.NewKafkaEventPublisher(writer)
	require.NoError(t, p.Publish(context.Background()))
}
