package commands

import (
	"errors"

	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/pkg/guard"
)

var ErrConfirmPaymentCommandIsNotConstructed = errors.New(
	"ConfirmPaymentCommand must be created via NewConfirmPaymentCommand constructor",
)

// ConfirmPaymentCommand releases a job whose payment has been settled by the payment
// collaborator.
type ConfirmPaymentCommand struct {
	jobID kernel.UUID
	guard guard.ConstructorGuard
}

func NewConfirmPaymentCommand(jobID kernel.UUID) (ConfirmPaymentCommand, error) {
	if err := jobID.Validate(); err != nil {
		return ConfirmPaymentCommand{}, err
	}
	return ConfirmPaymentCommand{jobID: jobID, guard: guard.NewConstructorGuard()}, nil
}

func (c ConfirmPaymentCommand) Validate() error {
	return c.guard.Validate(ErrConfirmPaymentCommandIsNotConstructed)
}

func (c ConfirmPaymentCommand) JobID() kernel.UUID {
	return c.jobID
}
