package commands

import (
	"errors"
	"slices"

	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/pkg/errs"
	"relocation/internal/pkg/guard"
)

var ErrCreateOffersCommandIsNotConstructed = errors.New(
	"CreateOffersCommand must be created via NewCreateOffersCommand constructor",
)

// CreateOffersCommand offers a Created job to a set of candidate drivers. Drivers that
// already hold an offer for the job are skipped, so repeating the command is harmless.
type CreateOffersCommand struct {
	jobID     kernel.UUID
	driverIDs []kernel.UUID
	guard     guard.ConstructorGuard
}

// NewCreateOffersCommand validates the ids and drops duplicate drivers, keeping the
// first occurrence.
func NewCreateOffersCommand(jobID kernel.UUID, driverIDs []kernel.UUID) (CreateOffersCommand, error) {
	var driversErr error
	if len(driverIDs) == 0 {
		driversErr = errs.NewValueIsRequiredError("driver ids")
	}

	unique := make([]kernel.UUID, 0, len(driverIDs))
	errList := []error{jobID.Validate(), driversErr}
	for _, id := range driverIDs {
		if err := id.Validate(); err != nil {
			errList = append(errList, err)
			continue
		}
		if !slices.ContainsFunc(unique, id.IsEqual) {
			unique = append(unique, id)
		}
	}

	if err := errors.Join(errList...); err != nil {
		return CreateOffersCommand{}, err
	}

	return CreateOffersCommand{jobID: jobID, driverIDs: unique, guard: guard.NewConstructorGuard()}, nil
}

func (c CreateOffersCommand) Validate() error {
	return c.guard.Validate(ErrCreateOffersCommandIsNotConstructed)
}

func (c CreateOffersCommand) JobID() kernel.UUID {
	return c.jobID
}

func (c CreateOffersCommand) DriverIDs() []kernel.UUID {
	return slices.Clone(c.driverIDs)
}
