package mq

import (
	"context"
	"fmt"
	"time"

	"staking-core/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaConsumer 实现 Consumer 接口
// Reader 绑定单一 topic (与 KafkaProducer 的 Writer 对称)，
// Subscribe 的 topic 参数须与之一致。
type KafkaConsumer struct {
	reader *kafka.Reader
}

// NewKafkaConsumer 创建 Kafka 消费者
// group: 消费者组，位点按组提交
func NewKafkaConsumer(brokers []string, group, topic string) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  group,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	return &KafkaConsumer{
		reader: reader,
	}
}

// Subscribe 阻塞消费直到 ctx 取消
// 处理失败不提交位点，消息等待重投。
func (c *KafkaConsumer) Subscribe(ctx context.Context, topic string, handler func(msg *Message) error) error {
	logger.Info("Kafka 开始监听", zap.String("topic", topic))

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Warn("Kafka 读取失败", zap.Error(err))
			time.Sleep(1 * time.Second)
			continue
		}

		msg := &Message{
			ID:      fmt.Sprintf("%d-%d", m.Partition, m.Offset),
			Topic:   m.Topic,
			Key:     string(m.Key),
			Payload: m.Value,
		}

		if err := handler(msg); err != nil {
			logger.Warn("消息处理失败", zap.String("id", msg.ID), zap.Error(err))
			continue
		}
		if err := c.reader.CommitMessages(ctx, m); err != nil {
			logger.Warn("Kafka 位点提交失败", zap.String("id", msg.ID), zap.Error(err))
		}
	}
}

// Close 关闭连接
func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
