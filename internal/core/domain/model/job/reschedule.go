package job

import (
	"time"

	"relocation/internal/core/domain/model/kernel"
)

// RescheduleRecord is one immutable entry of a job's reschedule history.
type RescheduleRecord struct {
	previous  kernel.Schedule
	next      kernel.Schedule
	changedAt time.Time
	changedBy kernel.UUID
}

// RestoreRescheduleRecord rebuilds a history entry loaded from storage.
func RestoreRescheduleRecord(
	previous, next kernel.Schedule,
	changedAt time.Time,
	changedBy kernel.UUID,
) RescheduleRecord {
	return RescheduleRecord{previous: previous, next: next, changedAt: changedAt, changedBy: changedBy}
}

func (r RescheduleRecord) Previous() kernel.Schedule {
	return r.previous
}

func (r RescheduleRecord) Next() kernel.Schedule {
	return r.next
}

func (r RescheduleRecord) ChangedAt() time.Time {
	return r.changedAt
}

func (r RescheduleRecord) ChangedBy() kernel.UUID {
	return r.changedBy
}
