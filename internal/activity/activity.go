// Package activity publishes domain events (registrations, content changes,
// follows) to a Kafka topic for downstream consumers. Publishing is
// fire-and-forget and never affects the request that produced the event.
package activity

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	UserRegistered = "user.registered"
	ContentCreated = "content.created"
	ContentDeleted = "content.deleted"
	UserFollowed   = "user.followed"
	UserUnfollowed = "user.unfollowed"
)

type Event struct {
	Type      string            `json:"type"`
	ActorID   string            `json:"actorId"`
	SubjectID string            `json:"subjectId,omitempty"`
	Attrs     map[string]string `json:"attrs,omitempty"`
	At        time.Time         `json:"at"`
}

// Recorder accepts domain events.
type Recorder interface {
	Record(ctx context.Context, e Event)
}

// Nop discards events; used when no brokers are configured.
type Nop struct{}

func (Nop) Record(context.Context, Event) {}

// KafkaPublisher writes events asynchronously to a Kafka topic.
type KafkaPublisher struct {
	writer *kafkago.Writer
	logger *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		Async:        true,
		BatchTimeout: 50 * time.Millisecond,
		Completion: func(messages []kafkago.Message, err error) {
			if err != nil {
				logger.Warn("activity publish failed", zap.Int("messages", len(messages)), zap.Error(err))
			}
		},
	}
	return &KafkaPublisher{writer: w, logger: logger}
}

func (p *KafkaPublisher) Record(ctx context.Context, e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	b, err := json.Marshal(e)
	if err != nil {
		p.logger.Warn("activity marshal failed", zap.String("type", e.Type), zap.Error(err))
		return
	}
	key := e.SubjectID
	if key == "" {
		key = e.ActorID
	}
	if err := p.writer.WriteMessages(ctx, kafkago.Message{Key: []byte(key), Value: b, Time: e.At}); err != nil {
		p.logger.Warn("activity enqueue failed", zap.String("type", e.Type), zap.Error(err))
	}
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
