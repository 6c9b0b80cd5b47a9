package offer

import (
	"fmt"
	"strings"

	"relocation/internal/pkg/errs"
)

// Status is the resolution state of an offer.
//
//	Pending ──┬──> Accepted
//	          ├──> Declined
//	          └──> Expired ──> Declined (late answer after another driver won)
type Status int

const (
	Unknown Status = iota
	Pending
	Accepted
	Declined
	Expired
)

var statusNames = map[Status]string{
	Pending:  "PENDING",
	Accepted: "ACCEPTED",
	Declined: "DECLINED",
	Expired:  "EXPIRED",
}

func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("offer status", fmt.Errorf("%q is not a valid status", name))
}

func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("offer status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

func (s Status) IsResolved() bool {
	return s == Accepted || s == Declined || s == Expired
}
