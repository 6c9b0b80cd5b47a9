package commands

import (
	"context"
	"time"

	"relocation/internal/core/domain/model/intent"
	"relocation/internal/core/domain/model/job"
	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/pkg/metrics"
)

// transitionFunc applies one lifecycle operation to a job that is held under its row lock.
type transitionFunc func(j *job.Job, now time.Time) ([]intent.Intent, error)

// transitionRunner is the read-lock-mutate-commit-dispatch cycle shared by the
// single-job lifecycle handlers.
type transitionRunner struct {
	uowFactory JobUoWFactory
	clock      kernel.Clock
	dispatcher IntentDispatcher
	metrics    *metrics.Metrics
}

func (r transitionRunner) run(
	ctx context.Context,
	operation string,
	jobID kernel.UUID,
	apply transitionFunc,
) (snapshot job.Snapshot, err error) {
	defer func() {
		r.metrics.Transitions.WithLabelValues(operation, metrics.Result(err)).Inc()
	}()

	uow := r.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return job.Snapshot{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	jobRepo := uow.JobRepository()
	j, err := jobRepo.GetForUpdate(ctx, jobID)
	if err != nil {
		return job.Snapshot{}, err
	}

	intents, err := apply(j, r.clock.Now())
	if err != nil {
		return job.Snapshot{}, err
	}

	if err = jobRepo.Update(ctx, j); err != nil {
		return job.Snapshot{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return job.Snapshot{}, err
	}

	r.dispatcher.Dispatch(ctx, intents)
	return j.Snapshot(), nil
}
