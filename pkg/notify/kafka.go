package notify

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog/log"
)

// Kafka publishes events to a topic.
//
// Messages are keyed by the event URI so that all changes of one ledger
// end up in the same partition, in commit order.
type Kafka struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafka creates a synchronous producer for the given brokers.
func NewKafka(brokers []string, topic string) (*Kafka, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("create Kafka producer: %w", err)
	}

	return NewKafkaWithProducer(producer, topic), nil
}

// NewKafkaWithProducer uses an existing producer.
func NewKafkaWithProducer(producer sarama.SyncProducer, topic string) *Kafka {
	return &Kafka{
		producer: producer,
		topic:    topic,
	}
}

func (k *Kafka) Notify(_ context.Context, event Event) error {
	body, err := event.JSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	partition, offset, err := k.producer.SendMessage(&sarama.ProducerMessage{
		Topic:     k.topic,
		Key:       sarama.StringEncoder(event.URI),
		Value:     sarama.ByteEncoder(body),
		Timestamp: event.Time,
	})
	if err != nil {
		return fmt.Errorf("send event to Kafka: %w", err)
	}

	log.Debug().Str("topic", k.topic).Int32("partition", partition).Int64("offset", offset).Str("event", event.ID.String()).Msg("Kafka notification")
	return nil
}

// Close closes the producer.
func (k *Kafka) Close() error {
	return k.producer.Close()
}
