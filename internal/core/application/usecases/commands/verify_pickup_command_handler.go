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

// VerifyPickupCommandHandler accepts pickup evidence for an Assigned job within the
// pickup window.
type VerifyPickupCommandHandler struct {
	runner     transitionRunner
	stateGuard services.StateGuard
}

func NewVerifyPickupCommandHandler(
	uowFactory JobUoWFactory,
	stateGuard services.StateGuard,
	clock kernel.Clock,
	dispatcher IntentDispatcher,
	m *metrics.Metrics,
) VerifyPickupCommandHandler {
	return VerifyPickupCommandHandler{
		runner:     transitionRunner{uowFactory: uowFactory, clock: clock, dispatcher: dispatcher, metrics: m},
		stateGuard: stateGuard,
	}
}

func (h VerifyPickupCommandHandler) Handle(ctx context.Context, cmd VerifyPickupCommand) (job.Snapshot, error) {
	if err := cmd.Validate(); err != nil {
		return job.Snapshot{}, err
	}

	return h.runner.run(ctx, "pickup_verification", cmd.JobID(), func(j *job.Job, now time.Time) ([]intent.Intent, error) {
		return h.stateGuard.ApplyPickupVerification(j, cmd.Payload(), now)
	})
}
