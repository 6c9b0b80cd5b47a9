package commands

import (
	"context"

	"relocation/internal/core/domain/model/intent"
	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/core/domain/model/offer"
	"relocation/internal/pkg/metrics"
)

// CreateOffersCommandHandler creates one pending offer per (job, driver) pair while
// holding the job's row lock and, after commit, broadcasts the offer to every
// candidate driver.
//
// Example:
//
//	cmd, _ := NewCreateOffersCommand(jobID, []kernel.UUID{alice, bob})
//	created, err := handler.Handle(ctx, cmd)
//	// created holds only the offers inserted by this call
type CreateOffersCommandHandler struct {
	uowFactory UoWFactory
	clock      kernel.Clock
	dispatcher IntentDispatcher
	metrics    *metrics.Metrics
}

func NewCreateOffersCommandHandler(
	uowFactory UoWFactory,
	clock kernel.Clock,
	dispatcher IntentDispatcher,
	m *metrics.Metrics,
) CreateOffersCommandHandler {
	return CreateOffersCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		dispatcher: dispatcher,
		metrics:    m,
	}
}

// Handle returns the newly created offers. Failures:
//   - ObjectNotFoundError for an unknown job or driver
//   - InvalidStateError when the job is not Created
//   - LockTimeoutError when the job lock is not granted in time
func (h CreateOffersCommandHandler) Handle(ctx context.Context, cmd CreateOffersCommand) (created []*offer.Offer, err error) {
	defer func() {
		h.metrics.Transitions.WithLabelValues("create_offers", metrics.Result(err)).Inc()
	}()

	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	j, err := uow.JobRepository().GetForUpdate(ctx, cmd.JobID())
	if err != nil {
		return nil, err
	}

	if err = j.ValidateCanBeOffered(); err != nil {
		return nil, err
	}

	driverRepo := uow.DriverRepository()
	offerRepo := uow.OfferRepository()
	now := h.clock.Now()
	for _, driverID := range cmd.DriverIDs() {
		if _, err = driverRepo.Get(ctx, driverID); err != nil {
			return nil, err
		}

		o, err := offer.NewOffer(j.ID(), driverID, now)
		if err != nil {
			return nil, err
		}

		inserted, err := offerRepo.Add(ctx, o)
		if err != nil {
			return nil, err
		}
		if inserted {
			created = append(created, o)
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.metrics.OffersCreated.Add(float64(len(created)))
	h.dispatcher.Dispatch(ctx, []intent.Intent{
		intent.OfferDrivers{Job: j.ID(), Drivers: cmd.DriverIDs()},
	})
	return created, nil
}
