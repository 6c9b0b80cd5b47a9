package driver

import (
	"fmt"
	"strings"

	"relocation/internal/pkg/errs"
)

// EmploymentType determines how a driver is paid for a job.
type EmploymentType string

const (
	Freelance  EmploymentType = "FREELANCE"
	Contracted EmploymentType = "CONTRACTED"
)

// ParseEmploymentType normalizes name and checks it is a known type.
func ParseEmploymentType(name string) (EmploymentType, error) {
	t := EmploymentType(strings.ToUpper(strings.TrimSpace(name)))
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

func (t EmploymentType) Validate() error {
	switch t {
	case Freelance, Contracted:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause(
			"employment type",
			fmt.Errorf("%q is not one of %s, %s", string(t), Freelance, Contracted),
		)
	}
}

func (t EmploymentType) String() string {
	return string(t)
}
