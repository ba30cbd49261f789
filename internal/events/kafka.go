package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	kafka "github.com/segmentio/kafka-go"
)

// KafkaSink writes changes to one topic keyed by item id, so per-item order is kept
// within a partition.
type KafkaSink struct {
	writer *kafka.Writer
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           10 * time.Millisecond,
			AllowAutoTopicCreation: true,
		},
	}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Send(ctx context.Context, c Change) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(c.ItemID, 10)),
		Value: b,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(c.Kind)},
		},
	})
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
