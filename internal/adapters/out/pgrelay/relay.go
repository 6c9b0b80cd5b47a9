package pgrelay

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"relocation/internal/adapters/out/events"

	"github.com/lib/pq"
)

const (
	minReconnectInterval = 10 * time.Second
	maxReconnectInterval = time.Minute
	pingInterval         = 90 * time.Second
)

// Sink receives relayed envelopes.
type Sink interface {
	Deliver(ctx context.Context, e events.Envelope) error
}

// Relay forwards notifications from a Postgres channel to a Sink.
type Relay struct {
	listener *pq.Listener
	channel  string
	sink     Sink
	logger   *slog.Logger
}

// NewRelay creates a relay listening on channel over its own connection to dsn.
func NewRelay(dsn, channel string, sink Sink, logger *slog.Logger) *Relay {
	if channel == "" {
		channel = DefaultChannel
	}
	logger = logger.With("component", "pg_relay", "channel", channel)

	listener := pq.NewListener(dsn, minReconnectInterval, maxReconnectInterval,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				logger.Warn("Listener connection event", "event", int(ev), "error", err)
			}
		})

	return &Relay{
		listener: listener,
		channel:  channel,
		sink:     sink,
		logger:   logger,
	}
}

// Run listens until ctx is done, then closes the listener.
func (r *Relay) Run(ctx context.Context) error {
	if err := r.listener.Listen(r.channel); err != nil {
		_ = r.listener.Close()
		return err
	}
	defer func() {
		_ = r.listener.Close()
	}()

	r.logger.InfoContext(ctx, "Relay listening")

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-r.listener.Notify:
			// nil after a reconnect; notifications sent meanwhile are lost.
			if n == nil {
				continue
			}
			r.forward(ctx, n.Extra)
		case <-ticker.C:
			if err := r.listener.Ping(); err != nil {
				r.logger.WarnContext(ctx, "Listener ping failed", "error", err)
			}
		}
	}
}

func (r *Relay) forward(ctx context.Context, payload string) {
	var e events.Envelope
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		r.logger.WarnContext(ctx, "Dropping malformed notification", "error", err)
		return
	}

	if err := r.sink.Deliver(ctx, e); err != nil {
		r.logger.WarnContext(ctx, "Relayed notification not delivered",
			"kind", e.Kind, "job_id", e.JobID, "error", err)
	}
}
