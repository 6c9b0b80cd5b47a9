package job

import (
	"errors"
	"strings"

	"relocation/internal/pkg/errs"
	"relocation/internal/pkg/guard"
)

var ErrVehicleIsNotConstructed = errs.NewValueIsRequiredError("vehicle must be created via NewVehicle")

// Vehicle describes the car being relocated. Plate is optional for unregistered vehicles.
type Vehicle struct {
	make  string
	model string
	plate string
	guard guard.ConstructorGuard
}

func NewVehicle(manufacturer, model, plate string) (Vehicle, error) {
	v := Vehicle{
		make:  strings.TrimSpace(manufacturer),
		model: strings.TrimSpace(model),
		plate: strings.ToUpper(strings.TrimSpace(plate)),
		guard: guard.NewConstructorGuard(),
	}

	var makeErr, modelErr error
	if v.make == "" {
		makeErr = errs.NewValueIsRequiredError("vehicle make")
	}
	if v.model == "" {
		modelErr = errs.NewValueIsRequiredError("vehicle model")
	}
	if err := errors.Join(makeErr, modelErr); err != nil {
		return Vehicle{}, err
	}
	return v, nil
}

func (v Vehicle) Validate() error {
	return v.guard.Validate(ErrVehicleIsNotConstructed)
}

func (v Vehicle) Make() string {
	return v.make
}

func (v Vehicle) Model() string {
	return v.model
}

func (v Vehicle) Plate() string {
	return v.plate
}

func (v Vehicle) String() string {
	if v.plate == "" {
		return v.make + " " + v.model
	}
	return v.make + " " + v.model + " (" + v.plate + ")"
}
