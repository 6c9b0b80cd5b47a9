package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/core/domain/model/offer"
	"relocation/internal/core/domain/services"
	"relocation/internal/pkg/metrics"
)

// ExpireStaleOffersCommandHandler sweeps offers older than the TTL. Each affected job
// is handled in its own transaction under its row lock, so the sweep never writes an
// offer concurrently with a decision on the same job. A job that fails (for example on
// lock timeout) does not stop the sweep; it is retried on the next run.
type ExpireStaleOffersCommandHandler struct {
	uowFactory UoWFactory
	clock      kernel.Clock
	dispatcher IntentDispatcher
	metrics    *metrics.Metrics
}

func NewExpireStaleOffersCommandHandler(
	uowFactory UoWFactory,
	clock kernel.Clock,
	dispatcher IntentDispatcher,
	m *metrics.Metrics,
) ExpireStaleOffersCommandHandler {
	return ExpireStaleOffersCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		dispatcher: dispatcher,
		metrics:    m,
	}
}

// Handle returns how many offers were expired and the joined per-job failures.
func (h ExpireStaleOffersCommandHandler) Handle(ctx context.Context, cmd ExpireStaleOffersCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	now := h.clock.Now()
	cutoff := now.Add(-cmd.TTL())

	jobIDs, err := h.staleJobs(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	var (
		total   int
		failure []error
	)
	for _, jobID := range jobIDs {
		n, err := h.expireForJob(ctx, jobID, cutoff, now)
		if err != nil {
			failure = append(failure, fmt.Errorf("job %s: %w", jobID, err))
			continue
		}
		total += n
	}

	h.metrics.OffersExpired.WithLabelValues("ttl").Add(float64(total))
	return total, errors.Join(failure...)
}

func (h ExpireStaleOffersCommandHandler) staleJobs(ctx context.Context, cutoff time.Time) ([]kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	return uow.OfferRepository().JobsWithPendingOffersBefore(ctx, cutoff)
}

func (h ExpireStaleOffersCommandHandler) expireForJob(
	ctx context.Context,
	jobID kernel.UUID,
	cutoff, now time.Time,
) (int, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if _, err := uow.JobRepository().GetForUpdate(ctx, jobID); err != nil {
		return 0, err
	}

	offerRepo := uow.OfferRepository()
	pending, err := offerRepo.ListPendingByJob(ctx, jobID)
	if err != nil {
		return 0, err
	}

	stale := make([]*offer.Offer, 0, len(pending))
	for _, o := range pending {
		if !o.OfferedAt().After(cutoff) {
			stale = append(stale, o)
		}
	}

	expired, err := services.ExpirePending(stale, now)
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}

	if err = offerRepo.Update(ctx, expired...); err != nil {
		return 0, err
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	h.dispatcher.Dispatch(ctx, services.ExpiredOfferIntents(expired))
	return len(expired), nil
}
