package driver

import (
	"errors"
	"strings"

	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/pkg/errs"
	"relocation/internal/pkg/guard"
)

var (
	// ErrNameIsRequired is returned when a driver is registered without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrDriverIsNotConstructed is returned when using a zero Driver.
	ErrDriverIsNotConstructed = errors.New("Driver must be created via NewDriver constructor")
)

// Driver is a registered driver that jobs can be offered to.
//
// Business rules:
//   - Driver must have a valid UUID and a non-empty name
//   - Employment type must be FREELANCE or CONTRACTED
type Driver struct {
	id             kernel.UUID
	name           string
	employmentType EmploymentType
	guard          guard.ConstructorGuard
}

// NewDriver validates all parameters and joins every violation into one error.
//
// Example:
//
//	d, err := driver.NewDriver(kernel.NewUUID(), "Alice", driver.Freelance)
//	if err != nil {
//	    return err
//	}
func NewDriver(id kernel.UUID, name string, employmentType EmploymentType) (*Driver, error) {
	d := &Driver{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		d.setID(id),
		d.setName(name),
		d.setEmploymentType(employmentType),
	); err != nil {
		return nil, err
	}

	return d, nil
}

// RestoreDriver rebuilds a driver loaded from storage, applying the same rules as NewDriver.
func RestoreDriver(id kernel.UUID, name string, employmentType EmploymentType) (*Driver, error) {
	return NewDriver(id, name, employmentType)
}

func (d *Driver) Validate() error {
	if d == nil {
		return ErrDriverIsNotConstructed
	}
	return d.guard.Validate(ErrDriverIsNotConstructed)
}

func (d *Driver) IsEqual(other *Driver) bool {
	return other != nil && d.id.IsEqual(other.id)
}

func (d *Driver) ID() kernel.UUID {
	return d.id
}

func (d *Driver) Name() string {
	return d.name
}

func (d *Driver) EmploymentType() EmploymentType {
	return d.employmentType
}

func (d *Driver) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

func (d *Driver) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameIsRequired
	}
	d.name = name
	return nil
}

func (d *Driver) setEmploymentType(t EmploymentType) error {
	if err := t.Validate(); err != nil {
		return err
	}
	d.employmentType = t
	return nil
}
