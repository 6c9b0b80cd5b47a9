package services

import (
	"errors"
	"strconv"
	"time"

	"relocation/internal/core/domain/model/driver"
	"relocation/internal/core/domain/model/intent"
	"relocation/internal/core/domain/model/job"
	"relocation/internal/core/domain/model/offer"
	"relocation/internal/pkg/errs"
)

// ReasonAlreadyAssigned is reported to a driver who accepted after another driver won.
const ReasonAlreadyAssigned = "already_assigned"

// Decision is the outcome of a driver's response to an offer. Losing the race for a
// job is a normal outcome, not an error.
type Decision struct {
	Accepted bool
	Reason   string
	// Expired are the competing offers closed by a successful acceptance.
	Expired []*offer.Offer
}

// DecideInput carries the aggregates loaded by the caller while holding the job lock.
type DecideInput struct {
	Job    *job.Job
	Offer  *offer.Offer
	Driver *driver.Driver
	// Pending are the job's pending offers. The decided offer may be among them.
	Pending []*offer.Offer
	Accept  bool
	Now     time.Time
}

// OfferResolver is a domain service that resolves a driver's answer to an offer
// against the current state of the job.
//
// Key responsibilities:
//   - Rejecting responses to offers that are no longer pending
//   - Declining late acceptances once the job has a driver
//   - Assigning the job, computing the fee and expiring competing offers on acceptance
//
// The resolver relies on its caller holding the job's exclusive lock for the whole
// read-decide-write cycle; under that lock at most one acceptance per job can succeed.
//
// Example usage:
//
//	resolver := services.NewOfferResolver(services.NewCompensationCalculator())
//	decision, intents, err := resolver.Decide(services.DecideInput{
//	    Job: j, Offer: o, Driver: d, Pending: pending, Accept: true, Now: now,
//	})
//	if err != nil {
//	    return err // InvalidOfferError, InvalidStateError
//	}
//	// persist j, o and decision.Expired, commit, then dispatch intents
type OfferResolver struct {
	compensation CompensationCalculator
}

func NewOfferResolver(compensation CompensationCalculator) OfferResolver {
	return OfferResolver{compensation: compensation}
}

// Decide mutates the job and offers in place and returns the decision together with
// the notification intents it requires.
func (r OfferResolver) Decide(in DecideInput) (Decision, []intent.Intent, error) {
	if err := errors.Join(in.Job.Validate(), in.Offer.Validate(), in.Driver.Validate()); err != nil {
		return Decision{}, nil, err
	}

	o, j := in.Offer, in.Job
	if !o.JobID().IsEqual(j.ID()) || !o.DriverID().IsEqual(in.Driver.ID()) {
		return Decision{}, nil, errs.NewInvalidOfferError(o.ID(), offer.ReasonDriverMismatch)
	}

	// The winner's commit expires every competing offer, so a losing driver usually
	// finds its offer Expired rather than Pending.
	if d := j.Driver(); d != nil && !d.IsEqual(o.DriverID()) && o.Status() == offer.Expired {
		if err := o.DeclineExpired(in.Now); err != nil {
			return Decision{}, nil, err
		}
		return Decision{Accepted: false, Reason: ReasonAlreadyAssigned}, nil, nil
	}

	if !o.IsPending() {
		return Decision{}, nil, errs.NewInvalidOfferError(o.ID(), offer.ReasonAlreadyResolved+" as "+o.Status().String())
	}

	if d := j.Driver(); d != nil && !d.IsEqual(o.DriverID()) {
		if err := o.Decline(in.Now); err != nil {
			return Decision{}, nil, err
		}
		return Decision{Accepted: false, Reason: ReasonAlreadyAssigned}, nil, nil
	}

	if !in.Accept {
		if err := o.Decline(in.Now); err != nil {
			return Decision{}, nil, err
		}
		return Decision{Accepted: false}, []intent.Intent{
			intent.NotifyAdmin{Job: j.ID(), Event: intent.EventOfferDeclined, Payload: intent.Payload{
				"jobId":    j.ID().String(),
				"driverId": o.DriverID().String(),
			}},
		}, nil
	}

	return r.accept(in)
}

func (r OfferResolver) accept(in DecideInput) (Decision, []intent.Intent, error) {
	j, o := in.Job, in.Offer

	fee := r.compensation.Compute(j.DistanceKm(), in.Driver.EmploymentType())
	if err := j.Assign(o.DriverID(), fee); err != nil {
		return Decision{}, nil, err
	}
	if err := o.Accept(in.Now); err != nil {
		return Decision{}, nil, err
	}

	expired := make([]*offer.Offer, 0, len(in.Pending))
	for _, p := range in.Pending {
		if p.ID().IsEqual(o.ID()) || !p.IsPending() {
			continue
		}
		if err := p.Expire(in.Now); err != nil {
			return Decision{}, nil, err
		}
		expired = append(expired, p)
	}

	payload := intent.Payload{
		"jobId":    j.ID().String(),
		"status":   j.Status().String(),
		"driverId": o.DriverID().String(),
	}
	args := map[string]string{
		"jobId":      j.ID().String(),
		"driverName": in.Driver.Name(),
		"date":       j.Schedule().Date(),
		"time":       j.Schedule().Time(),
	}
	if fee != nil {
		formatted := strconv.FormatFloat(*fee, 'f', 2, 64)
		payload["driverFee"] = formatted
		args["driverFee"] = formatted
	}

	intents := []intent.Intent{
		intent.NotifyDriver{Job: j.ID(), Driver: o.DriverID(), Event: intent.EventJobAssigned, Payload: payload},
		intent.NotifyClient{Job: j.ID(), Client: j.ClientID(), Event: intent.EventJobAssigned, Payload: payload},
		intent.NotifyAdmin{Job: j.ID(), Event: intent.EventJobAssigned, Payload: payload},
		intent.SendEmail{Job: j.ID(), Kind: intent.EventJobAssigned, Args: args},
	}
	intents = append(intents, ExpiredOfferIntents(expired)...)

	return Decision{Accepted: true, Expired: expired}, intents, nil
}

// ExpiredOfferIntents tells each driver whose offer was closed that it is gone.
func ExpiredOfferIntents(expired []*offer.Offer) []intent.Intent {
	intents := make([]intent.Intent, 0, len(expired))
	for _, e := range expired {
		intents = append(intents, intent.NotifyDriver{
			Job:     e.JobID(),
			Driver:  e.DriverID(),
			Event:   intent.EventOfferExpired,
			Payload: intent.Payload{"jobId": e.JobID().String()},
		})
	}
	return intents
}

// ExpirePending closes every pending offer in offers at now and returns the ones it changed.
func ExpirePending(offers []*offer.Offer, now time.Time) ([]*offer.Offer, error) {
	expired := make([]*offer.Offer, 0, len(offers))
	for _, o := range offers {
		if !o.IsPending() {
			continue
		}
		if err := o.Expire(now); err != nil {
			return nil, err
		}
		expired = append(expired, o)
	}
	return expired, nil
}
