package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_NotifyProductChanged(t *testing.T) {
	producer := mocks.NewSyncProducer(t, ProducerConfig())
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != TopicProductChanged {
			return errors.New("unexpected topic " + msg.Topic)
		}

		raw, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var event ProductChangedEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			return err
		}
		if event.Action != "updated" || event.ProductID != "42" || event.EventType != EventTypeProductChanged || event.EventID == "" {
			return errors.New("unexpected event payload")
		}

		key, _ := msg.Key.Encode()
		if string(key) != "product_42" {
			return errors.New("unexpected key " + string(key))
		}
		return nil
	})

	pub := NewPublisherWithProducer(producer, nil)
	require.NoError(t, pub.NotifyProductChanged(context.Background(), "updated", "42"))
	require.NoError(t, pub.Close())
}

func TestPublisher_SendFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, ProducerConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := NewPublisherWithProducer(producer, nil)
	err := pub.NotifyProductChanged(context.Background(), "deleted", "1")

	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, pub.Close())
}

func message(t *testing.T, eventType string, event ProductChangedEvent) *sarama.ConsumerMessage {
	t.Helper()
	body, err := json.Marshal(event)
	require.NoError(t, err)

	var headers []*sarama.RecordHeader
	if eventType != "" {
		headers = append(headers, &sarama.RecordHeader{Key: []byte("event_type"), Value: []byte(eventType)})
	}
	return &sarama.ConsumerMessage{Topic: TopicProductChanged, Value: body, Headers: headers}
}

func TestConsumer_DispatchesToRegisteredHandler(t *testing.T) {
	c := newConsumer(nil, nil, "storefront", []string{TopicProductChanged})

	var got []ProductChangedEvent
	c.RegisterHandler(EventTypeProductChanged, func(ctx context.Context, event ProductChangedEvent) error {
		got = append(got, event)
		return nil
	})

	h := &consumerGroupHandler{consumer: c}
	h.handleMessage(context.Background(), message(t, EventTypeProductChanged, ProductChangedEvent{EventID: "e1", Action: "created", ProductID: "9"}))
	h.handleMessage(context.Background(), message(t, "", ProductChangedEvent{ProductID: "ignored"}))
	h.handleMessage(context.Background(), message(t, "inventory.adjusted", ProductChangedEvent{ProductID: "ignored"}))
	h.handleMessage(context.Background(), &sarama.ConsumerMessage{
		Value:   []byte("{not json"),
		Headers: []*sarama.RecordHeader{{Key: []byte("event_type"), Value: []byte(EventTypeProductChanged)}},
	})

	require.Len(t, got, 1)
	assert.Equal(t, "e1", got[0].EventID)
	assert.Equal(t, "created", got[0].Action)
	assert.Equal(t, "9", got[0].ProductID)
}

func TestConsumer_HandlerErrorIsNotFatal(t *testing.T) {
	c := newConsumer(nil, nil, "storefront", nil)
	calls := 0
	c.RegisterHandler(EventTypeProductChanged, func(context.Context, ProductChangedEvent) error {
		calls++
		return errors.New("redis down")
	})

	h := &consumerGroupHandler{consumer: c}
	h.handleMessage(context.Background(), message(t, EventTypeProductChanged, ProductChangedEvent{ProductID: "1"}))
	h.handleMessage(context.Background(), message(t, EventTypeProductChanged, ProductChangedEvent{ProductID: "2"}))

	assert.Equal(t, 2, calls)
}
