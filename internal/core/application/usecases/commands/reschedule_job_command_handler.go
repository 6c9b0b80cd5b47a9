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

// RescheduleJobCommandHandler overwrites the schedule of a non-terminal job and records
// the change in its history.
//
// Example:
//
//	cmd, _ := NewRescheduleJobCommand(jobID, "2024-02-01", "09:30", actor)
//	snapshot, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, errs.ErrInvalidState) {
//	    // job already delivered or cancelled
//	}
type RescheduleJobCommandHandler struct {
	runner     transitionRunner
	stateGuard services.StateGuard
}

func NewRescheduleJobCommandHandler(
	uowFactory JobUoWFactory,
	stateGuard services.StateGuard,
	clock kernel.Clock,
	dispatcher IntentDispatcher,
	m *metrics.Metrics,
) RescheduleJobCommandHandler {
	return RescheduleJobCommandHandler{
		runner:     transitionRunner{uowFactory: uowFactory, clock: clock, dispatcher: dispatcher, metrics: m},
		stateGuard: stateGuard,
	}
}

func (h RescheduleJobCommandHandler) Handle(ctx context.Context, cmd RescheduleJobCommand) (job.Snapshot, error) {
	if err := cmd.Validate(); err != nil {
		return job.Snapshot{}, err
	}

	return h.runner.run(ctx, "reschedule", cmd.JobID(), func(j *job.Job, now time.Time) ([]intent.Intent, error) {
		return h.stateGuard.Reschedule(j, cmd.Schedule(), cmd.Actor(), now)
	})
}
