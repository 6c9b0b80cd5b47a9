// Package guard provides ConstructorGuard, a marker embedded in value objects,
// aggregates and commands to tell values built by their constructor apart from
// zero values.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error is supplied.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard records whether its owner was created through a constructor.
// The zero value reports "not constructed".
//
// Example:
//
//	type Schedule struct {
//	    date  string
//	    guard guard.ConstructorGuard
//	}
//
//	func NewSchedule(date string) (Schedule, error) {
//	    return Schedule{date: date, guard: guard.NewConstructorGuard()}, nil
//	}
//
//	func (s Schedule) Validate() error {
//	    return s.guard.Validate(ErrScheduleIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard marked as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is nil)
// if the guard is a zero value, and nil otherwise.
func (g ConstructorGuard) Validate(validationError error) error {
	if g.isConstructed {
		return nil
	}
	if validationError == nil {
		return ErrDefaultConstructorGuard
	}
	return validationError
}
