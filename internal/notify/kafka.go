package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"

	"github.com/nekogravitycat/campus-booking-backend/internal/logger"
)

// Header keys set on every published message.
const (
	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
	HeaderSource    = "source"
)

var ErrEmptyRecipient = errors.New("notification recipient is empty")

// messageWriter is the subset of *kafka.Writer used by KafkaNotifier.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig configures the Kafka notifier.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	Source       string
	BatchTimeout time.Duration
	MaxAttempts  int
}

// KafkaNotifier publishes notifications to a topic, keyed by recipient so
// messages for one requester stay ordered.
type KafkaNotifier struct {
	writer messageWriter
	source string
	log    *logger.Logger
}

func NewKafkaNotifier(cfg KafkaConfig, log *logger.Logger) (*KafkaNotifier, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  compress.Snappy,
		MaxAttempts:  cfg.MaxAttempts,
		BatchTimeout: cfg.BatchTimeout,
		Logger:       kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			log.Error(fmt.Sprintf(msg, args...), "component", "kafka")
		}),
	}

	log.Info("kafka notifier initialized", "brokers", cfg.Brokers, "topic", cfg.Topic)
	return newKafkaNotifier(writer, cfg.Source, log), nil
}

func newKafkaNotifier(w messageWriter, source string, log *logger.Logger) *KafkaNotifier {
	if source == "" {
		source = "campus-booking"
	}
	return &KafkaNotifier{writer: w, source: source, log: log}
}

func (k *KafkaNotifier) Notify(ctx context.Context, n Notification) error {
	if n.Recipient == "" {
		return ErrEmptyRecipient
	}
	if n.SentAt.IsZero() {
		n.SentAt = time.Now().UTC()
	}

	value, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(n.Recipient),
		Value: value,
		Time:  n.SentAt,
		Headers: []kafka.Header{
			{Key: HeaderEventID, Value: []byte(uuid.NewString())},
			{Key: HeaderEventType, Value: []byte(n.Event)},
			{Key: HeaderSource, Value: []byte(k.source)},
		},
	}

	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	k.log.DebugContext(ctx, "notification published", "event", n.Event, "recipient", n.Recipient)
	return nil
}

// Close flushes pending messages and closes the writer.
func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}
