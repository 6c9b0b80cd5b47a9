package commands

import (
	"context"

	"relocation/internal/core/domain/model/job"
	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/core/domain/services"
	"relocation/internal/pkg/metrics"
)

// CancelJobCommandHandler cancels a job and, under the same lock, expires every offer
// still pending for it. The previous driver and the expired candidates are notified.
type CancelJobCommandHandler struct {
	uowFactory UoWFactory
	stateGuard services.StateGuard
	clock      kernel.Clock
	dispatcher IntentDispatcher
	metrics    *metrics.Metrics
}

func NewCancelJobCommandHandler(
	uowFactory UoWFactory,
	stateGuard services.StateGuard,
	clock kernel.Clock,
	dispatcher IntentDispatcher,
	m *metrics.Metrics,
) CancelJobCommandHandler {
	return CancelJobCommandHandler{
		uowFactory: uowFactory,
		stateGuard: stateGuard,
		clock:      clock,
		dispatcher: dispatcher,
		metrics:    m,
	}
}

func (h CancelJobCommandHandler) Handle(ctx context.Context, cmd CancelJobCommand) (snapshot job.Snapshot, err error) {
	defer func() {
		h.metrics.Transitions.WithLabelValues("cancel", metrics.Result(err)).Inc()
	}()

	if err = cmd.Validate(); err != nil {
		return job.Snapshot{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return job.Snapshot{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	jobRepo := uow.JobRepository()
	offerRepo := uow.OfferRepository()

	j, err := jobRepo.GetForUpdate(ctx, cmd.JobID())
	if err != nil {
		return job.Snapshot{}, err
	}

	now := h.clock.Now()
	intents, err := h.stateGuard.Cancel(j, cmd.Reason(), cmd.Actor(), now)
	if err != nil {
		return job.Snapshot{}, err
	}

	pending, err := offerRepo.ListPendingByJob(ctx, j.ID())
	if err != nil {
		return job.Snapshot{}, err
	}

	expired, err := services.ExpirePending(pending, now)
	if err != nil {
		return job.Snapshot{}, err
	}

	if err = jobRepo.Update(ctx, j); err != nil {
		return job.Snapshot{}, err
	}

	if len(expired) > 0 {
		if err = offerRepo.Update(ctx, expired...); err != nil {
			return job.Snapshot{}, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return job.Snapshot{}, err
	}

	h.metrics.OffersExpired.WithLabelValues("cancelled").Add(float64(len(expired)))
	h.dispatcher.Dispatch(ctx, append(intents, services.ExpiredOfferIntents(expired)...))
	return j.Snapshot(), nil
}
