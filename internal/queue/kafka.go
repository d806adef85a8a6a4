package queue

import (
	"context"
	"encoding/json"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// Kafka publishes transaction events to one topic.
type Kafka struct {
	producer *kafka.Producer
	topic    string
}

var _ Queue = (*Kafka)(nil)

func NewKafka(brokers, topic string) (*Kafka, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
	})
	if err != nil {
		return nil, err
	}
	return &Kafka{
		producer: producer,
		topic:    topic,
	}, nil
}

func (k *Kafka) Publish(ctx context.Context, event *TxEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &k.topic,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(event.Realm),
		Value: value,
	}, nil)
}

func (k *Kafka) Close() {
	k.producer.Close()
}
