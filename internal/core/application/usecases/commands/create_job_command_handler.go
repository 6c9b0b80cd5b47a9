package commands

import (
	"context"

	"relocation/internal/core/domain/model/job"
	"relocation/internal/core/domain/model/kernel"
)

// CreateJobCommandHandler persists a new job in Created or PendingPaid status.
type CreateJobCommandHandler struct {
	uowFactory JobUoWFactory
	clock      kernel.Clock
}

func NewCreateJobCommandHandler(uowFactory JobUoWFactory, clock kernel.Clock) CreateJobCommandHandler {
	return CreateJobCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

func (h CreateJobCommandHandler) Handle(ctx context.Context, cmd CreateJobCommand) (job.Snapshot, error) {
	if err := cmd.Validate(); err != nil {
		return job.Snapshot{}, err
	}

	j, err := job.NewJob(cmd.JobID(), cmd.ClientID(), cmd.Details(), cmd.PaymentRequired(), h.clock.Now())
	if err != nil {
		return job.Snapshot{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return job.Snapshot{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.JobRepository().Add(ctx, j); err != nil {
		return job.Snapshot{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return job.Snapshot{}, err
	}

	return j.Snapshot(), nil
}
