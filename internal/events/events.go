// Package events publishes one record per catalog operation to Kafka.
// Publishing is optional; with no broker configured a no-op publisher is used.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Event describes one completed tool call.
type Event struct {
	ID         string    `json:"id"`
	Tool       string    `json:"tool"`
	Strategy   string    `json:"strategy,omitempty"`
	Results    int       `json:"results"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"durationMs"`
	At         time.Time `json:"at"`
}

// NewEvent stamps an event with a fresh ID and the current time.
func NewEvent(tool string, started time.Time) Event {
	now := time.Now().UTC()
	return Event{
		ID:         uuid.NewString(),
		Tool:       tool,
		DurationMS: now.Sub(started).Milliseconds(),
		At:         now,
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka writes events as JSON, keyed by tool name.
type Kafka struct {
	w      messageWriter
	logger *zap.Logger
}

func NewKafka(broker, topic string, logger *zap.Logger) *Kafka {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Kafka{
		w: &kafka.Writer{
			Addr:         kafka.TCP(broker),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			Async:        true,
			ErrorLogger:  kafka.LoggerFunc(logger.Sugar().Errorf),
		},
		logger: logger,
	}
}

func (k *Kafka) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return k.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.Tool),
		Value: data,
		Time:  e.At,
	})
}

func (k *Kafka) Close() error {
	return k.w.Close()
}

// New returns a Kafka publisher when broker is set, otherwise Nop.
func New(broker, topic string, logger *zap.Logger) Publisher {
	if broker == "" {
		return Nop{}
	}
	return NewKafka(broker, topic, logger)
}
