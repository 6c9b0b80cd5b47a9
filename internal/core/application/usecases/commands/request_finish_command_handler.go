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

// RequestFinishCommandHandler records the end of the drive, subject to the
// destination geofence when a position is given.
type RequestFinishCommandHandler struct {
	runner     transitionRunner
	stateGuard services.StateGuard
}

func NewRequestFinishCommandHandler(
	uowFactory JobUoWFactory,
	stateGuard services.StateGuard,
	clock kernel.Clock,
	dispatcher IntentDispatcher,
	m *metrics.Metrics,
) RequestFinishCommandHandler {
	return RequestFinishCommandHandler{
		runner:     transitionRunner{uowFactory: uowFactory, clock: clock, dispatcher: dispatcher, metrics: m},
		stateGuard: stateGuard,
	}
}

func (h RequestFinishCommandHandler) Handle(ctx context.Context, cmd RequestFinishCommand) (job.Snapshot, error) {
	if err := cmd.Validate(); err != nil {
		return job.Snapshot{}, err
	}

	return h.runner.run(ctx, "finish_request", cmd.JobID(), func(j *job.Job, now time.Time) ([]intent.Intent, error) {
		return h.stateGuard.RequestFinish(j, cmd.RouteTrace(), now, cmd.Position())
	})
}
