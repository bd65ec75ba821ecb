package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"travelly/internal/shared/config"
	"travelly/pkg/logger"

	"github.com/IBM/sarama"
)

// StatusEvent is the wire payload published when a booking changes status.
// Downstream consumers (email, CRM sync) subscribe to the status topic.
type StatusEvent struct {
	BookingID  string    `json:"booking_id"`
	PublicID   string    `json:"public_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// KafkaNotifier publishes booking status events to Kafka. It satisfies the
// bookings notifier contract: it is invoked only after the owning database
// transaction has committed, and a broker failure never fails the request.
type KafkaNotifier struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewKafkaNotifier creates a synchronous, idempotent producer. Messages are
// keyed by booking id so one booking's events stay ordered on a partition.
func NewKafkaNotifier(cfg *config.Config) (*KafkaNotifier, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.ClientID = cfg.Kafka.ClientID
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = cfg.Kafka.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(cfg.Kafka.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.Kafka.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &KafkaNotifier{
		producer: producer,
		topic:    cfg.Kafka.StatusTopic,
		log:      logger.GetDefault(),
	}, nil
}

// BookingStatusChanged publishes one status transition. Errors are logged,
// not returned; the booking is already committed.
func (n *KafkaNotifier) BookingStatusChanged(ctx context.Context, bookingID, publicID, from, to string) {
	event := StatusEvent{
		BookingID:  bookingID,
		PublicID:   publicID,
		FromStatus: from,
		ToStatus:   to,
		OccurredAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		n.log.ErrorWithContext(ctx, "failed to marshal booking status event", err, map[string]interface{}{
			"booking_id": bookingID,
		})
		return
	}

	message := &sarama.ProducerMessage{
		Topic: n.topic,
		Key:   sarama.StringEncoder(bookingID),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte("booking_status_changed")},
			{Key: []byte("public_id"), Value: []byte(publicID)},
		},
	}

	partition, offset, err := n.producer.SendMessage(message)
	if err != nil {
		n.log.ErrorWithContext(ctx, "failed to publish booking status event", err, map[string]interface{}{
			"booking_id": bookingID,
			"topic":      n.topic,
		})
		return
	}

	n.log.InfoWithContext(ctx, "booking status event published", map[string]interface{}{
		"booking_id": bookingID,
		"topic":      n.topic,
		"partition":  partition,
		"offset":     offset,
	})
}

// Close closes the underlying Kafka producer.
func (n *KafkaNotifier) Close() error {
	if n.producer != nil {
		if err := n.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
	}
	return nil
}

// NoopNotifier swallows events. Used when Kafka is disabled.
type NoopNotifier struct{}

func (NoopNotifier) BookingStatusChanged(ctx context.Context, bookingID, publicID, from, to string) {
}
