package service

import (
	"context"
	"encoding/json"
	"testing"

	"staking-core/internal/event"
	"staking-core/internal/service/mq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConsumer 把预置消息同步回放给 handler
type fakeConsumer struct {
	topic    string
	messages []*mq.Message
	results  []error
}

func (c *fakeConsumer) Subscribe(ctx context.Context, topic string, handler func(msg *mq.Message) error) error {
	c.topic = topic
	for _, msg := range c.messages {
		c.results = append(c.results, handler(msg))
	}
	return nil
}

func (c *fakeConsumer) Close() error { return nil }

func stakeEventPayload(t *testing.T, ev event.StakeEvent) []byte {
	t.Helper()
	payload, err := json.Marshal(ev)
	require.NoError(t, err)
	return payload
}

func TestEventWorker_ConsumesStakeTopic(t *testing.T) {
	consumer := &fakeConsumer{
		messages: []*mq.Message{
			{ID: "1-0", Payload: stakeEventPayload(t, event.StakeEvent{
				Type:   event.StakeExpired,
				UserID: 7,
				TxHash: "0xold",
				Amount: "10",
			})},
			{ID: "1-1", Payload: stakeEventPayload(t, event.StakeEvent{
				Type:   event.StakeConfirmed,
				UserID: 7,
				TxHash: "0xnew",
			})},
		},
	}

	worker := NewEventWorker(consumer)
	require.NoError(t, worker.Run(context.Background()))

	assert.Equal(t, event.TopicStake, consumer.topic)
	require.Len(t, consumer.results, 2)
	// 正常事件处理成功，消息可以被 ack
	assert.NoError(t, consumer.results[0])
	assert.NoError(t, consumer.results[1])
}

func TestEventWorker_MalformedPayloadIsSwallowed(t *testing.T) {
	consumer := &fakeConsumer{
		messages: []*mq.Message{
			{ID: "1-0", Payload: []byte("not json")},
		},
	}

	worker := NewEventWorker(consumer)
	require.NoError(t, worker.Run(context.Background()))

	// 坏消息重投无意义，按处理成功消化，不会卡死消费组
	require.Len(t, consumer.results, 1)
	assert.NoError(t, consumer.results[0])
}
