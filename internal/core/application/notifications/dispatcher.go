// Package notifications executes the notification intents produced by committed
// transitions. Execution is asynchronous and best effort: failures are logged and
// counted, never returned to the operation that produced the intents.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"relocation/internal/core/domain/model/intent"
	"relocation/internal/core/ports"
	"relocation/internal/pkg/metrics"
)

// DefaultTimeout bounds a single notifier or mailer call.
const DefaultTimeout = 5 * time.Second

var ErrUnknownIntent = errors.New("unknown intent")

// Dispatcher runs intents after commit on background goroutines. Wait blocks until
// every dispatched batch has finished, for graceful shutdown.
type Dispatcher struct {
	notifier ports.Notifier
	mailer   ports.Mailer
	metrics  *metrics.Metrics
	logger   *slog.Logger
	timeout  time.Duration
	wg       sync.WaitGroup
}

func NewDispatcher(
	notifier ports.Notifier,
	mailer ports.Mailer,
	m *metrics.Metrics,
	logger *slog.Logger,
	timeout time.Duration,
) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{
		notifier: notifier,
		mailer:   mailer,
		metrics:  m,
		logger:   logger.With("component", "notification_dispatcher"),
		timeout:  timeout,
	}
}

// Dispatch schedules intents and returns at once. The batch runs in order on a
// context detached from ctx's cancellation, so an abandoned request does not cancel
// notifications of a transition that already committed.
func (d *Dispatcher) Dispatch(ctx context.Context, intents []intent.Intent) {
	if len(intents) == 0 {
		return
	}

	detached := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for _, i := range intents {
			d.run(detached, i)
		}
	}()
}

// Wait blocks until all dispatched batches complete or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run(ctx context.Context, i intent.Intent) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := d.execute(ctx, i)
	d.metrics.Notifications.WithLabelValues(i.Name(), metrics.Result(err)).Inc()
	if err != nil {
		d.logger.WarnContext(ctx, "Notification failed",
			"intent", i.Name(), "job_id", i.JobID().String(), "error", err)
	}
}

func (d *Dispatcher) execute(ctx context.Context, i intent.Intent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", i.Name(), r)
		}
	}()

	switch v := i.(type) {
	case intent.OfferDrivers:
		return d.notifier.PushOffer(ctx, v.Job, v.Drivers)
	case intent.NotifyClient:
		return d.notifier.PushUpdate(ctx, v.Job, intent.AudienceClient, withEvent(v.Payload, v.Event, v.Client.String()))
	case intent.NotifyDriver:
		return d.notifier.PushUpdate(ctx, v.Job, intent.AudienceDriver, withEvent(v.Payload, v.Event, v.Driver.String()))
	case intent.NotifyAdmin:
		return d.notifier.PushUpdate(ctx, v.Job, intent.AudienceAdmin, withEvent(v.Payload, v.Event, ""))
	case intent.SendEmail:
		return d.mailer.Send(ctx, v.Kind, v.Args)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownIntent, i)
	}
}

func withEvent(p intent.Payload, event, recipient string) intent.Payload {
	out := make(intent.Payload, len(p)+2)
	maps.Copy(out, p)
	out["event"] = event
	if recipient != "" {
		out["recipientId"] = recipient
	}
	return out
}
