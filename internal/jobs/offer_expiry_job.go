package jobs

import (
	"context"
	"log/slog"
	"time"

	"relocation/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultOfferSweepSchedule runs the sweep every 30 seconds.
const DefaultOfferSweepSchedule = "*/30 * * * * *"

// OfferExpiryJob periodically expires pending offers whose TTL has elapsed. A run that
// is still in progress when the next one is due causes that next run to be skipped.
type OfferExpiryJob struct {
	handler  commands.ExpireStaleOffersCommandHandler
	ttl      time.Duration
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewOfferExpiryJob(
	handler commands.ExpireStaleOffersCommandHandler,
	ttl time.Duration,
	schedule string,
	loc *time.Location,
	logger *slog.Logger,
) *OfferExpiryJob {
	if schedule == "" {
		schedule = DefaultOfferSweepSchedule
	}
	if loc == nil {
		loc = time.UTC
	}
	return &OfferExpiryJob{
		handler:  handler,
		ttl:      ttl,
		schedule: schedule,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger: logger.With("component", "offer_expiry_job"),
	}
}

// Start registers the sweep and starts the scheduler.
func (j *OfferExpiryJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() {
		_, _ = j.RunOnce(context.Background())
	}); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Offer expiry job started",
		"schedule", j.schedule, "ttl", j.ttl.String())
	return nil
}

// RunOnce performs a single sweep. Per-job failures are logged; the jobs they concern
// are picked up again on the next run.
func (j *OfferExpiryJob) RunOnce(ctx context.Context) (int, error) {
	cmd, err := commands.NewExpireStaleOffersCommand(j.ttl)
	if err != nil {
		j.logger.ErrorContext(ctx, "Offer expiry job misconfigured", "error", err)
		return 0, err
	}

	expired, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Offer expiry sweep failed", "expired", expired, "error", err)
		return expired, err
	}
	if expired > 0 {
		j.logger.InfoContext(ctx, "Stale offers expired", "expired", expired)
	}
	return expired, nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (j *OfferExpiryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Offer expiry job stopped")
}
