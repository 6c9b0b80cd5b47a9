package commands

import (
	"errors"

	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/pkg/guard"
)

var ErrDecideOfferCommandIsNotConstructed = errors.New(
	"DecideOfferCommand must be created via NewDecideOfferCommand constructor",
)

// DecideOfferCommand is a driver's answer to the offer of a job.
type DecideOfferCommand struct {
	driverID kernel.UUID
	jobID    kernel.UUID
	accept   bool
	guard    guard.ConstructorGuard
}

func NewDecideOfferCommand(driverID, jobID kernel.UUID, accept bool) (DecideOfferCommand, error) {
	if err := errors.Join(driverID.Validate(), jobID.Validate()); err != nil {
		return DecideOfferCommand{}, err
	}
	return DecideOfferCommand{driverID: driverID, jobID: jobID, accept: accept, guard: guard.NewConstructorGuard()}, nil
}

func (c DecideOfferCommand) Validate() error {
	return c.guard.Validate(ErrDecideOfferCommandIsNotConstructed)
}

func (c DecideOfferCommand) DriverID() kernel.UUID {
	return c.driverID
}

func (c DecideOfferCommand) JobID() kernel.UUID {
	return c.jobID
}

func (c DecideOfferCommand) Accept() bool {
	return c.accept
}
