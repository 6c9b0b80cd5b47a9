// Package kafkamail hands email requests to the mail delivery service over Kafka. Each
// request is one JSON message keyed by job id, so the emails of a job stay ordered.
package kafkamail

import (
	"context"
	"encoding/json"
	"time"

	"relocation/internal/pkg/errs"

	"github.com/segmentio/kafka-go"
)

const DefaultTopic = "relocation.emails"

// Message is the value written to the topic.
type Message struct {
	Kind        string            `json:"kind"`
	Args        map[string]string `json:"args,omitempty"`
	RequestedAt time.Time         `json:"requestedAt"`
}

type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Mailer implements ports.Mailer.
type Mailer struct {
	w   writer
	now func() time.Time
}

// New creates a mailer writing to topic on brokers.
func New(brokers []string, topic string) *Mailer {
	if topic == "" {
		topic = DefaultTopic
	}
	w := kafka.NewWriter(kafka.WriterConfig{Brokers: brokers, Topic: topic, Balancer: &kafka.LeastBytes{}})
	return NewWithWriter(w)
}

func NewWithWriter(w writer) *Mailer {
	return &Mailer{w: w, now: time.Now}
}

func (m *Mailer) Send(ctx context.Context, kind string, args map[string]string) error {
	if kind == "" {
		return errs.NewValueIsRequiredError("email kind")
	}

	value, err := json.Marshal(Message{Kind: kind, Args: args, RequestedAt: m.now().UTC()})
	if err != nil {
		return err
	}

	return m.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(args["jobId"]),
		Value: value,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(kind)},
		},
	})
}

func (m *Mailer) Close() error {
	if m.w == nil {
		return nil
	}
	return m.w.Close()
}
