package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spacesedan/sentiboard/internal/models"
)

type Producer interface {
	Publish(topic string, key string, value []byte) error
	Flush(timeoutMs int) int
}

// KafkaSink publishes each post as JSON keyed by post id.
type KafkaSink struct {
	producer Producer
	topic    string
}

func NewKafkaSink(producer Producer, topic string) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Archive(ctx context.Context, posts []models.LabeledPost) error {
	for _, p := range posts {
		if err := ctx.Err(); err != nil {
			return err
		}
		value, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("[KafkaSink] failed to marshal post %s: %w", p.ID, err)
		}
		if err := s.producer.Publish(s.topic, p.ID, value); err != nil {
			return err
		}
	}

	flushMs := 5000
	if deadline, ok := ctx.Deadline(); ok {
		flushMs = int(time.Until(deadline).Milliseconds())
	}
	if remaining := s.producer.Flush(max(flushMs, 0)); remaining > 0 {
		return fmt.Errorf("[KafkaSink] %d messages still queued for %s", remaining, s.topic)
	}
	return nil
}
