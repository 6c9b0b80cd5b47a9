package job

import (
	"fmt"
	"strings"

	"relocation/internal/pkg/errs"
)

// Status represents the lifecycle state of a job.
//
// State transitions:
//
//	PendingPaid ──> Created ──> Assigned ──> PickedUp ──> InProgress ──> RequestFinish ──> Delivered
//	     │             │           │            │             │               │
//	     └─────────────┴───────────┴────────────┴─────────────┴───────────────┴──> Cancelled
//
// Delivered and Cancelled are terminal.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	Unknown Status = iota
	PendingPaid
	Created
	Assigned
	PickedUp
	InProgress
	RequestFinish
	Delivered
	Cancelled
)

var statusNames = map[Status]string{
	PendingPaid:   "PENDINGPAID",
	Created:       "CREATED",
	Assigned:      "ASSIGNED",
	PickedUp:      "PICKED_UP",
	InProgress:    "IN_PROGRESS",
	RequestFinish: "REQUEST_FINISH",
	Delivered:     "DELIVERED",
	Cancelled:     "CANCELLED",
}

// ParseStatus converts the persisted or wire name of a status back to a Status.
func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", name))
}

func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsTerminal reports whether no further transition is possible from s.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// RequiresDriver reports whether a job in status s must have a driver assigned.
func (s Status) RequiresDriver() bool {
	switch s {
	case Assigned, PickedUp, InProgress, RequestFinish, Delivered:
		return true
	default:
		return false
	}
}

// RequiresStartedAt reports whether a job in status s must carry a start timestamp.
func (s Status) RequiresStartedAt() bool {
	return s == InProgress || s == RequestFinish || s == Delivered
}

// ValidateCanHaveDriver checks that driver presence agrees with the status.
func (s Status) ValidateCanHaveDriver(hasDriver bool) error {
	if hasDriver != s.RequiresDriver() {
		return errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status for driver presence %t", s, hasDriver),
		)
	}
	return nil
}

// ValidateCanHaveStartedAt checks that start timestamp presence agrees with the status.
func (s Status) ValidateCanHaveStartedAt(hasStartedAt bool) error {
	if hasStartedAt != s.RequiresStartedAt() {
		return errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status for startedAt presence %t", s, hasStartedAt),
		)
	}
	return nil
}

func (s Status) ConfirmPayment() (Status, error) {
	return s.advance("confirm payment", PendingPaid, Created)
}

func (s Status) Assign() (Status, error) {
	return s.advance("assign", Created, Assigned)
}

func (s Status) PickUp() (Status, error) {
	return s.advance("pickup verification", Assigned, PickedUp)
}

func (s Status) Start() (Status, error) {
	return s.advance("start", PickedUp, InProgress)
}

func (s Status) RequestFinish() (Status, error) {
	return s.advance("finish request", InProgress, RequestFinish)
}

func (s Status) Deliver() (Status, error) {
	return s.advance("delivery verification", RequestFinish, Delivered)
}

// Cancel transitions any non-terminal status to Cancelled.
func (s Status) Cancel() (Status, error) {
	if err := s.ValidateMutable("cancel"); err != nil {
		return Unknown, err
	}
	return Cancelled, nil
}

// ValidateMutable fails with an InvalidStateError when s is terminal or not a valid status.
func (s Status) ValidateMutable(operation string) error {
	if s.Validate() != nil || s.IsTerminal() {
		return errs.NewInvalidStateError(operation, s.String())
	}
	return nil
}

func (s Status) advance(operation string, from, to Status) (Status, error) {
	if s != from {
		return Unknown, errs.NewInvalidStateError(operation, s.String())
	}
	return to, nil
}
