package commands

import (
	"context"
	"time"

	"relocation/internal/core/domain/model/intent"
	"relocation/internal/core/domain/model/job"
	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/core/domain/services"
	"relocation/internal/pkg/metrics"
)

// StartTripCommandHandler moves a PickedUp job to InProgress.
type StartTripCommandHandler struct {
	runner     transitionRunner
	stateGuard services.StateGuard
}

func NewStartTripCommandHandler(
	uowFactory JobUoWFactory,
	stateGuard services.StateGuard,
	clock kernel.Clock,
	dispatcher IntentDispatcher,
	m *metrics.Metrics,
) StartTripCommandHandler {
	return StartTripCommandHandler{
		runner:     transitionRunner{uowFactory: uowFactory, clock: clock, dispatcher: dispatcher, metrics: m},
		stateGuard: stateGuard,
	}
}

func (h StartTripCommandHandler) Handle(ctx context.Context, cmd StartTripCommand) (job.Snapshot, error) {
	if err := cmd.Validate(); err != nil {
		return job.Snapshot{}, err
	}

	return h.runner.run(ctx, "start", cmd.JobID(), func(j *job.Job, now time.Time) ([]intent.Intent, error) {
		return h.stateGuard.StartInProgress(j, now)
	})
}
