package commands

import (
	"errors"
	"strings"

	"relocation/internal/core/domain/model/driver"
	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/pkg/errs"
	"relocation/internal/pkg/guard"
)

var ErrRegisterDriverCommandIsNotConstructed = errors.New(
	"RegisterDriverCommand must be created via NewRegisterDriverCommand constructor",
)

// RegisterDriverCommand makes a driver known to the dispatch core so that jobs can be
// offered to them. The identity itself is managed outside the core; driverID is the
// identity's id.
type RegisterDriverCommand struct { //nolint:recvcheck //using for validation
	driverID       kernel.UUID
	name           string
	employmentType driver.EmploymentType

	guard guard.ConstructorGuard
}

func NewRegisterDriverCommand(driverID kernel.UUID, name, employmentType string) (RegisterDriverCommand, error) {
	cmd := RegisterDriverCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		cmd.setDriverID(driverID),
		cmd.setName(name),
		cmd.setEmploymentType(employmentType),
	); err != nil {
		return RegisterDriverCommand{}, err
	}

	return cmd, nil
}

func (c RegisterDriverCommand) Validate() error {
	return c.guard.Validate(ErrRegisterDriverCommandIsNotConstructed)
}

func (c RegisterDriverCommand) DriverID() kernel.UUID {
	return c.driverID
}

func (c RegisterDriverCommand) Name() string {
	return c.name
}

func (c RegisterDriverCommand) EmploymentType() driver.EmploymentType {
	return c.employmentType
}

func (c *RegisterDriverCommand) setDriverID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.driverID = id
	return nil
}

func (c *RegisterDriverCommand) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}
	c.name = name
	return nil
}

func (c *RegisterDriverCommand) setEmploymentType(name string) error {
	t, err := driver.ParseEmploymentType(name)
	if err != nil {
		return err
	}
	c.employmentType = t
	return nil
}
