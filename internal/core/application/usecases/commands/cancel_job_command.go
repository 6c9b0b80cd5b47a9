package commands

import (
	"errors"
	"strings"

	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/pkg/errs"
	"relocation/internal/pkg/guard"
)

var ErrCancelJobCommandIsNotConstructed = errors.New(
	"CancelJobCommand must be created via NewCancelJobCommand constructor",
)

// CancelJobCommand closes a job before delivery on behalf of actor.
type CancelJobCommand struct {
	jobID  kernel.UUID
	reason string
	actor  kernel.Actor
	guard  guard.ConstructorGuard
}

func NewCancelJobCommand(jobID kernel.UUID, reason string, actor kernel.Actor) (CancelJobCommand, error) {
	reason = strings.TrimSpace(reason)
	var reasonErr error
	if reason == "" {
		reasonErr = errs.NewValueIsRequiredError("cancellation reason")
	}
	if err := errors.Join(jobID.Validate(), reasonErr, actor.Validate()); err != nil {
		return CancelJobCommand{}, err
	}

	return CancelJobCommand{jobID: jobID, reason: reason, actor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (c CancelJobCommand) Validate() error {
	return c.guard.Validate(ErrCancelJobCommandIsNotConstructed)
}

func (c CancelJobCommand) JobID() kernel.UUID {
	return c.jobID
}

func (c CancelJobCommand) Reason() string {
	return c.reason
}

func (c CancelJobCommand) Actor() kernel.Actor {
	return c.actor
}
