package commands

import (
	"errors"
	"slices"

	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/pkg/errs"
	"relocation/internal/pkg/guard"
)

var ErrVerifyPickupCommandIsNotConstructed = errors.New(
	"VerifyPickupCommand must be created via NewVerifyPickupCommand constructor",
)

// VerifyPickupCommand submits the driver's pickup evidence. The payload is opaque.
type VerifyPickupCommand struct {
	jobID   kernel.UUID
	payload []byte
	guard   guard.ConstructorGuard
}

func NewVerifyPickupCommand(jobID kernel.UUID, payload []byte) (VerifyPickupCommand, error) {
	var payloadErr error
	if len(payload) == 0 {
		payloadErr = errs.NewValueIsRequiredError("pickup verification")
	}
	if err := errors.Join(jobID.Validate(), payloadErr); err != nil {
		return VerifyPickupCommand{}, err
	}

	return VerifyPickupCommand{jobID: jobID, payload: slices.Clone(payload), guard: guard.NewConstructorGuard()}, nil
}

func (c VerifyPickupCommand) Validate() error {
	return c.guard.Validate(ErrVerifyPickupCommandIsNotConstructed)
}

func (c VerifyPickupCommand) JobID() kernel.UUID {
	return c.jobID
}

func (c VerifyPickupCommand) Payload() []byte {
	return slices.Clone(c.payload)
}
