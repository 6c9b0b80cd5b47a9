package commands

import (
	"errors"
	"slices"

	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/pkg/errs"
	"relocation/internal/pkg/guard"
)

var ErrVerifyDeliveryCommandIsNotConstructed = errors.New(
	"VerifyDeliveryCommand must be created via NewVerifyDeliveryCommand constructor",
)

// VerifyDeliveryCommand submits the handover evidence that closes a job.
type VerifyDeliveryCommand struct {
	jobID   kernel.UUID
	payload []byte
	guard   guard.ConstructorGuard
}

func NewVerifyDeliveryCommand(jobID kernel.UUID, payload []byte) (VerifyDeliveryCommand, error) {
	var payloadErr error
	if len(payload) == 0 {
		payloadErr = errs.NewValueIsRequiredError("delivery verification")
	}
	if err := errors.Join(jobID.Validate(), payloadErr); err != nil {
		return VerifyDeliveryCommand{}, err
	}

	return VerifyDeliveryCommand{jobID: jobID, payload: slices.Clone(payload), guard: guard.NewConstructorGuard()}, nil
}

func (c VerifyDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrVerifyDeliveryCommandIsNotConstructed)
}

func (c VerifyDeliveryCommand) JobID() kernel.UUID {
	return c.jobID
}

func (c VerifyDeliveryCommand) Payload() []byte {
	return slices.Clone(c.payload)
}
