package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/core/domain/model/offer"
	"relocation/internal/core/domain/services"
	"relocation/internal/pkg/errs"
	"relocation/internal/pkg/metrics"
)

// DecideOfferResult is returned to the deciding driver. Reason is set to
// services.ReasonAlreadyAssigned when another driver won the job first.
type DecideOfferResult struct {
	Accepted bool
	Reason   string
}

// DecideOfferCommandHandler runs the atomic accept/decline decision. It is the only
// place where a job acquires its driver.
//
// The whole decision runs inside one transaction that starts by taking the job's row
// lock. Concurrent decisions for the same job therefore execute one at a time whatever
// process they come from, while decisions for different jobs never wait for each other.
// Exactly one acceptance per job can succeed; the others observe already_assigned.
//
// Example:
//
//	cmd, _ := NewDecideOfferCommand(driverID, jobID, true)
//	result, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrLockTimeout):
//	    // contended job, retry later
//	case errors.Is(err, errs.ErrInvalidOffer):
//	    // already answered
//	case err == nil && !result.Accepted:
//	    // declined, or lost the race when result.Reason == "already_assigned"
//	}
type DecideOfferCommandHandler struct {
	uowFactory UoWFactory
	resolver   services.OfferResolver
	clock      kernel.Clock
	dispatcher IntentDispatcher
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func NewDecideOfferCommandHandler(
	uowFactory UoWFactory,
	resolver services.OfferResolver,
	clock kernel.Clock,
	dispatcher IntentDispatcher,
	m *metrics.Metrics,
	logger *slog.Logger,
) DecideOfferCommandHandler {
	return DecideOfferCommandHandler{
		uowFactory: uowFactory,
		resolver:   resolver,
		clock:      clock,
		dispatcher: dispatcher,
		metrics:    m,
		logger:     logger.With("component", "decide_offer_handler"),
	}
}

func (h DecideOfferCommandHandler) Handle(ctx context.Context, cmd DecideOfferCommand) (result DecideOfferResult, err error) {
	started := time.Now()
	defer func() {
		h.metrics.DecisionLatency.Observe(time.Since(started).Seconds())
		h.metrics.Decisions.WithLabelValues(decisionOutcome(result, err)).Inc()
	}()

	if err = cmd.Validate(); err != nil {
		return DecideOfferResult{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return DecideOfferResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	jobRepo := uow.JobRepository()
	offerRepo := uow.OfferRepository()

	j, err := jobRepo.GetForUpdate(ctx, cmd.JobID())
	if err != nil {
		return DecideOfferResult{}, err
	}

	o, err := offerRepo.Find(ctx, cmd.JobID(), cmd.DriverID())
	if err != nil {
		return DecideOfferResult{}, err
	}

	d, err := uow.DriverRepository().Get(ctx, cmd.DriverID())
	if err != nil {
		return DecideOfferResult{}, err
	}

	var pending []*offer.Offer
	if cmd.Accept() {
		if pending, err = offerRepo.ListPendingByJob(ctx, cmd.JobID()); err != nil {
			return DecideOfferResult{}, err
		}
	}

	decision, intents, err := h.resolver.Decide(services.DecideInput{
		Job:     j,
		Offer:   o,
		Driver:  d,
		Pending: pending,
		Accept:  cmd.Accept(),
		Now:     h.clock.Now(),
	})
	if err != nil {
		return DecideOfferResult{}, err
	}

	if decision.Accepted {
		if err = jobRepo.Update(ctx, j); err != nil {
			return DecideOfferResult{}, err
		}
	}

	if err = offerRepo.Update(ctx, append([]*offer.Offer{o}, decision.Expired...)...); err != nil {
		return DecideOfferResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return DecideOfferResult{}, err
	}

	if decision.Accepted {
		h.metrics.OffersExpired.WithLabelValues("assigned").Add(float64(len(decision.Expired)))
		if j.DriverFee() == nil {
			h.logger.WarnContext(ctx, "Driver fee could not be determined",
				"job_id", j.ID().String(), "driver_id", d.ID().String(),
				"distance_km", j.DistanceKm(), "employment_type", d.EmploymentType().String())
		}
	}

	h.dispatcher.Dispatch(ctx, intents)
	return DecideOfferResult{Accepted: decision.Accepted, Reason: decision.Reason}, nil
}

func decisionOutcome(result DecideOfferResult, err error) string {
	switch {
	case err == nil && result.Accepted:
		return "accepted"
	case err == nil && result.Reason != "":
		return result.Reason
	case err == nil:
		return "declined"
	case errors.Is(err, errs.ErrInvalidOffer):
		return "invalid_offer"
	case errors.Is(err, errs.ErrLockTimeout):
		return "lock_timeout"
	case errors.Is(err, errs.ErrObjectNotFound):
		return "not_found"
	default:
		return "error"
	}
}
