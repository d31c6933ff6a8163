// Package events publishes mission lifecycle events to Kafka.
// Publication is fire-and-forget: a broker outage never blocks or
// fails the originating request.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Topic receives all mission lifecycle events.
const Topic = "mission_events"

// Event types.
const (
	MissionCreated       = "mission_created"
	MissionStatusChanged = "mission_status_changed"
	ReportSaved          = "report_saved"
)

// Event is the wire format of a mission lifecycle event.
type Event struct {
	Type      string `json:"type"`
	MissionID uint   `json:"mission_id"`
	UserID    uint   `json:"user_id"`
	Status    string `json:"status,omitempty"`
	Section   string `json:"section,omitempty"`
	At        int64  `json:"at"`
}

// Publisher emits events. A nil *KafkaPublisher is safe to use and
// drops everything, so callers never need a nil check.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
	Close() error
}

// KafkaPublisher writes events to a Kafka topic.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher connects to the broker and verifies reachability.
func NewKafkaPublisher(broker string) (*KafkaPublisher, error) {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}
	conn, err := kafka.Dial("tcp", broker)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	defer conn.Close()
	return &KafkaPublisher{writer: writer}, nil
}

// Publish marshals and sends the event, logging failures instead of
// returning them.
func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) {
	if p == nil {
		return
	}
	if ev.At == 0 {
		ev.At = time.Now().Unix()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		zap.L().Error("failed to marshal event", zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, kafka.Message{Topic: Topic, Value: payload}); err != nil {
		zap.L().Error("failed to publish event", zap.String("type", ev.Type), zap.Error(err))
	}
}

func (p *KafkaPublisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
