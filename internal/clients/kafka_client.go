package clients

import (
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// KafkaProducer publishes keyed JSON payloads. Delivery reports are drained
// in the background and logged; nothing is re-sent.
type KafkaProducer struct {
	producer *kafka.Producer
}

func NewKafkaProducer(broker string) (*KafkaProducer, error) {
	slog.Info("[KafkaClient] Initializing Kafka Producer...", slog.String("broker", broker))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":   broker,
		"security.protocol":   "PLAINTEXT",
		"api.version.request": "true",
		"enable.idempotence":  true,
		"acks":                "all",
	})
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	go func() {
		for e := range p.Events() {
			if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
				slog.Error("[KafkaClient] Delivery failed",
					slog.String("key", string(m.Key)),
					slog.String("error", m.TopicPartition.Error.Error()))
			}
		}
	}()

	slog.Info("[KafkaClient] Kafka Producer initialized successfully")
	return &KafkaProducer{producer: p}, nil
}

func (kp *KafkaProducer) Publish(topic string, key string, value []byte) error {
	err := kp.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(key),
		Value:          value,
	}, nil)
	if err != nil {
		return fmt.Errorf("[KafkaClient] failed to produce message: %w", err)
	}
	return nil
}

// Flush waits up to timeoutMs for outstanding messages and returns how many
// remain undelivered.
func (kp *KafkaProducer) Flush(timeoutMs int) int {
	return kp.producer.Flush(timeoutMs)
}

func (kp *KafkaProducer) Close() {
	slog.Info("[KafkaClient] Shutting down Kafka producer...")
	if remaining := kp.producer.Flush(5000); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	kp.producer.Close()
	slog.Info("[KafkaClient] Kafka producer shut down")
}
