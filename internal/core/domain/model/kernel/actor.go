package kernel

import (
	"errors"
	"fmt"

	"relocation/internal/pkg/errs"
	"relocation/internal/pkg/guard"
)

// Role is the kind of party performing an operation.
type Role string

const (
	RoleClient Role = "client"
	RoleDriver Role = "driver"
	RoleAdmin  Role = "admin"
	RoleSystem Role = "system"
)

var ErrActorIsNotConstructed = errs.NewValueIsRequiredError("actor must be created via NewActor")

func (r Role) Validate() error {
	switch r {
	case RoleClient, RoleDriver, RoleAdmin, RoleSystem:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", string(r)))
	}
}

// Actor is an already authenticated identity. Authentication happens outside the core.
type Actor struct {
	id    UUID
	role  Role
	guard guard.ConstructorGuard
}

func NewActor(id UUID, role Role) (Actor, error) {
	if err := errors.Join(id.Validate(), role.Validate()); err != nil {
		return Actor{}, err
	}
	return Actor{id: id, role: role, guard: guard.NewConstructorGuard()}, nil
}

func (a Actor) Validate() error {
	return a.guard.Validate(ErrActorIsNotConstructed)
}

func (a Actor) ID() UUID {
	return a.id
}

func (a Actor) Role() Role {
	return a.role
}

func (a Actor) String() string {
	return string(a.role) + ":" + a.id.String()
}
