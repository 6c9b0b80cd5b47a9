package commands

import (
	"errors"

	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/pkg/guard"
)

var ErrRescheduleJobCommandIsNotConstructed = errors.New(
	"RescheduleJobCommand must be created via NewRescheduleJobCommand constructor",
)

// RescheduleJobCommand moves a job's pickup to a new date and time on behalf of actor.
type RescheduleJobCommand struct {
	jobID    kernel.UUID
	schedule kernel.Schedule
	actor    kernel.Actor
	guard    guard.ConstructorGuard
}

func NewRescheduleJobCommand(jobID kernel.UUID, date, clock string, actor kernel.Actor) (RescheduleJobCommand, error) {
	schedule, scheduleErr := kernel.NewSchedule(date, clock)
	if err := errors.Join(jobID.Validate(), scheduleErr, actor.Validate()); err != nil {
		return RescheduleJobCommand{}, err
	}

	return RescheduleJobCommand{
		jobID:    jobID,
		schedule: schedule,
		actor:    actor,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c RescheduleJobCommand) Validate() error {
	return c.guard.Validate(ErrRescheduleJobCommandIsNotConstructed)
}

func (c RescheduleJobCommand) JobID() kernel.UUID {
	return c.jobID
}

func (c RescheduleJobCommand) Schedule() kernel.Schedule {
	return c.schedule
}

func (c RescheduleJobCommand) Actor() kernel.Actor {
	return c.actor
}
