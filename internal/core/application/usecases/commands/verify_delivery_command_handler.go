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

// VerifyDeliveryCommandHandler closes a job as Delivered.
type VerifyDeliveryCommandHandler struct {
	runner     transitionRunner
	stateGuard services.StateGuard
}

func NewVerifyDeliveryCommandHandler(
	uowFactory JobUoWFactory,
	stateGuard services.StateGuard,
	clock kernel.Clock,
	dispatcher IntentDispatcher,
	m *metrics.Metrics,
) VerifyDeliveryCommandHandler {
	return VerifyDeliveryCommandHandler{
		runner:     transitionRunner{uowFactory: uowFactory, clock: clock, dispatcher: dispatcher, metrics: m},
		stateGuard: stateGuard,
	}
}

func (h VerifyDeliveryCommandHandler) Handle(ctx context.Context, cmd VerifyDeliveryCommand) (job.Snapshot, error) {
	if err := cmd.Validate(); err != nil {
		return job.Snapshot{}, err
	}

	return h.runner.run(ctx, "delivery_verification", cmd.JobID(), func(j *job.Job, _ time.Time) ([]intent.Intent, error) {
		return h.stateGuard.ApplyDeliveryVerification(j, cmd.Payload())
	})
}
