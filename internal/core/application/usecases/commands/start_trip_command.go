package commands

import (
	"errors"

	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/pkg/guard"
)

var ErrStartTripCommandIsNotConstructed = errors.New(
	"StartTripCommand must be created via NewStartTripCommand constructor",
)

// StartTripCommand marks a picked-up job as being driven.
type StartTripCommand struct {
	jobID kernel.UUID
	guard guard.ConstructorGuard
}

func NewStartTripCommand(jobID kernel.UUID) (StartTripCommand, error) {
	if err := jobID.Validate(); err != nil {
		return StartTripCommand{}, err
	}
	return StartTripCommand{jobID: jobID, guard: guard.NewConstructorGuard()}, nil
}

func (c StartTripCommand) Validate() error {
	return c.guard.Validate(ErrStartTripCommandIsNotConstructed)
}

func (c StartTripCommand) JobID() kernel.UUID {
	return c.jobID
}
