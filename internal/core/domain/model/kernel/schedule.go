package kernel

import (
	"fmt"
	"time"

	"relocation/internal/pkg/errs"
	"relocation/internal/pkg/guard"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var ErrScheduleIsNotConstructed = errs.NewValueIsRequiredError("schedule must be created via NewSchedule")

// Schedule is the civil date and wall-clock time a pickup is planned for.
// It carries no zone; Instant resolves it in the service's configured location.
type Schedule struct {
	date  string
	time  string
	guard guard.ConstructorGuard
}

func NewSchedule(date, clock string) (Schedule, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return Schedule{}, errs.NewValueIsInvalidErrorWithCause("date", fmt.Errorf("%q is not YYYY-MM-DD", date))
	}
	if _, err := time.Parse(TimeLayout, clock); err != nil {
		return Schedule{}, errs.NewValueIsInvalidErrorWithCause("time", fmt.Errorf("%q is not HH:MM", clock))
	}
	return Schedule{date: date, time: clock, guard: guard.NewConstructorGuard()}, nil
}

func (s Schedule) Validate() error {
	return s.guard.Validate(ErrScheduleIsNotConstructed)
}

func (s Schedule) Date() string {
	return s.date
}

func (s Schedule) Time() string {
	return s.time
}

// Instant returns the scheduled moment in loc. A nil loc means UTC.
func (s Schedule) Instant(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, s.date+" "+s.time, loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (s Schedule) IsEqual(other Schedule) bool {
	return s.date == other.date && s.time == other.time
}

func (s Schedule) String() string {
	return s.date + " " + s.time
}
