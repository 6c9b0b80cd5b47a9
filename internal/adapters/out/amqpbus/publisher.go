// Package amqpbus publishes notifications to a RabbitMQ topic exchange for consumers
// outside the service, such as mobile push gateways. Envelopes are routed by
// "job.<kind>.<audience>", so a consumer binds e.g. "job.offer.driver" or "job.#".
package amqpbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"relocation/internal/adapters/out/events"
	"relocation/internal/core/domain/model/intent"
	"relocation/internal/core/domain/model/kernel"

	amqp "github.com/rabbitmq/amqp091-go"
)

const DefaultExchange = "relocation_events"

var ErrChannelClosed = errors.New("amqp channel is closed")

// Channel is the subset of *amqp.Channel used for publishing.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
}

// Publisher implements ports.Notifier on an AMQP channel.
type Publisher struct {
	ch       Channel
	exchange string
	conn     *amqp.Connection
	now      func() time.Time
}

// NewPublisher publishes to exchange on ch. The exchange must exist.
func NewPublisher(ch Channel, exchange string) *Publisher {
	if exchange == "" {
		exchange = DefaultExchange
	}
	return &Publisher{ch: ch, exchange: exchange, now: time.Now}
}

// Dial connects to url, opens a channel and declares a durable topic exchange.
func Dial(url, exchange string) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	p := NewPublisher(ch, exchange)
	p.conn = conn
	return p, nil
}

func (p *Publisher) PushOffer(ctx context.Context, jobID kernel.UUID, driverIDs []kernel.UUID) error {
	return p.Publish(ctx, events.Offer(jobID, driverIDs))
}

func (p *Publisher) PushUpdate(ctx context.Context, jobID kernel.UUID, audience intent.Audience, payload intent.Payload) error {
	return p.Publish(ctx, events.Update(jobID, audience, payload))
}

func (p *Publisher) Publish(ctx context.Context, e events.Envelope) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if p.ch.IsClosed() {
		return ErrChannelClosed
	}

	body, err := json.Marshal(e)
	if err != nil {
		return err
	}

	return p.ch.PublishWithContext(ctx, p.exchange, e.RoutingKey(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now(),
		Type:         e.Kind,
		Body:         body,
	})
}

// Close closes the connection opened by Dial.
func (p *Publisher) Close() error {
	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	return p.conn.Close()
}
