package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// DefaultTopic is the notification event topic.
const DefaultTopic = "spazz.notifications"

// NotificationEvent is the wire payload published per delivery.
type NotificationEvent struct {
	EventID      string    `json:"event_id"`
	TargetID     uint64    `json:"target_id"`
	Message      string    `json:"message"`
	IntensityPct int       `json:"intensity_pct"`
	SentAt       time.Time `json:"sent_at"`
}

// KafkaDeliverer publishes notification events to a Kafka topic; a downstream
// consumer owns the hop to the actual push provider.
type KafkaDeliverer struct {
	writer *kafka.Writer
}

// NewKafkaDeliverer creates a deliverer writing to topic on the given brokers.
func NewKafkaDeliverer(brokers []string, topic string) *KafkaDeliverer {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaDeliverer{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Deliver publishes one event, keyed by target so one entity's notifications
// stay ordered within a partition.
func (k *KafkaDeliverer) Deliver(ctx context.Context, target uint64, message string, intensityPct int) error {
	event := NotificationEvent{
		EventID:      uuid.NewString(),
		TargetID:     target,
		Message:      message,
		IntensityPct: intensityPct,
		SentAt:       time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(target, 10)),
		Value: payload,
	})
}

// Close releases the underlying writer.
func (k *KafkaDeliverer) Close() error {
	return k.writer.Close()
}
