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

// ConfirmPaymentCommandHandler moves a PendingPaid job to Created under its row lock.
type ConfirmPaymentCommandHandler struct {
	runner     transitionRunner
	stateGuard services.StateGuard
}

func NewConfirmPaymentCommandHandler(
	uowFactory JobUoWFactory,
	stateGuard services.StateGuard,
	clock kernel.Clock,
	dispatcher IntentDispatcher,
	m *metrics.Metrics,
) ConfirmPaymentCommandHandler {
	return ConfirmPaymentCommandHandler{
		runner:     transitionRunner{uowFactory: uowFactory, clock: clock, dispatcher: dispatcher, metrics: m},
		stateGuard: stateGuard,
	}
}

func (h ConfirmPaymentCommandHandler) Handle(ctx context.Context, cmd ConfirmPaymentCommand) (job.Snapshot, error) {
	if err := cmd.Validate(); err != nil {
		return job.Snapshot{}, err
	}

	return h.runner.run(ctx, "confirm_payment", cmd.JobID(), func(j *job.Job, _ time.Time) ([]intent.Intent, error) {
		return h.stateGuard.ConfirmPayment(j)
	})
}
