// Package pgrelay fans notifications out to every instance of the service through
// Postgres LISTEN/NOTIFY.
//
// Publisher implements ports.Notifier by sending each envelope as a pg_notify payload.
// Relay listens on the same channel with a lib/pq Listener, including the instance's own
// notifications, and hands every envelope to a local Sink such as the websocket hub.
package pgrelay

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"relocation/internal/adapters/out/events"
	"relocation/internal/core/domain/model/intent"
	"relocation/internal/core/domain/model/kernel"
)

// DefaultChannel is the notification channel used when none is configured.
const DefaultChannel = "relocation_events"

// pg_notify payloads are limited to 8000 bytes.
const maxPayloadSize = 8000

var ErrPayloadTooLarge = errors.New("notification payload exceeds 8000 bytes")

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Publisher sends envelopes with pg_notify.
type Publisher struct {
	db      execer
	channel string
}

// NewPublisher publishes on channel through db, usually a *sql.DB.
func NewPublisher(db execer, channel string) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{db: db, channel: channel}
}

func (p *Publisher) PushOffer(ctx context.Context, jobID kernel.UUID, driverIDs []kernel.UUID) error {
	return p.Publish(ctx, events.Offer(jobID, driverIDs))
}

func (p *Publisher) PushUpdate(ctx context.Context, jobID kernel.UUID, audience intent.Audience, payload intent.Payload) error {
	return p.Publish(ctx, events.Update(jobID, audience, payload))
}

// Publish sends e as one pg_notify payload. An envelope too large for a single payload
// is split by recipients into several envelopes that each fit; ErrPayloadTooLarge is
// returned only when a single recipient's envelope still does not fit.
func (p *Publisher) Publish(ctx context.Context, e events.Envelope) error {
	if err := e.Validate(); err != nil {
		return err
	}
	return p.publish(ctx, e)
}

func (p *Publisher) publish(ctx context.Context, e events.Envelope) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if len(body) > maxPayloadSize {
		if len(e.Recipients) < 2 {
			return ErrPayloadTooLarge
		}
		half := len(e.Recipients) / 2
		head, tail := e, e
		head.Recipients = e.Recipients[:half]
		tail.Recipients = e.Recipients[half:]
		if err := p.publish(ctx, head); err != nil {
			return err
		}
		return p.publish(ctx, tail)
	}

	_, err = p.db.ExecContext(ctx, "SELECT pg_notify($1, $2)", p.channel, string(body))
	return err
}
