package offer

import (
	"errors"
	"time"

	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/pkg/errs"
	"relocation/internal/pkg/guard"
)

// Reasons attached to InvalidOfferError.
const (
	ReasonAlreadyResolved = "already resolved"
	ReasonDriverMismatch  = "offer belongs to another driver"
)

var ErrOfferIsNotConstructed = errors.New("Offer must be created via NewOffer or RestoreOffer")

// Offer proposes a job to a single driver.
type Offer struct {
	id          kernel.UUID
	jobID       kernel.UUID
	driverID    kernel.UUID
	status      Status
	offeredAt   time.Time
	respondedAt *time.Time
	guard       guard.ConstructorGuard
}

// NewOffer creates a Pending offer of jobID to driverID at now.
func NewOffer(jobID, driverID kernel.UUID, now time.Time) (*Offer, error) {
	if err := errors.Join(jobID.Validate(), driverID.Validate()); err != nil {
		return nil, err
	}

	return &Offer{
		id:        kernel.NewUUID(),
		jobID:     jobID,
		driverID:  driverID,
		status:    Pending,
		offeredAt: now.UTC(),
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// RestoreOffer rebuilds an offer from storage. A Pending offer must not carry a
// response time and a resolved one must.
func RestoreOffer(
	id, jobID, driverID kernel.UUID,
	status Status,
	offeredAt time.Time,
	respondedAt *time.Time,
) (*Offer, error) {
	var respondedErr error
	if status.IsResolved() != (respondedAt != nil) {
		respondedErr = errs.NewValueIsInvalidError("offer responded at does not match status " + status.String())
	}

	if err := errors.Join(
		id.Validate(),
		jobID.Validate(),
		driverID.Validate(),
		status.Validate(),
		respondedErr,
	); err != nil {
		return nil, err
	}

	o := &Offer{
		id:        id,
		jobID:     jobID,
		driverID:  driverID,
		status:    status,
		offeredAt: offeredAt,
		guard:     guard.NewConstructorGuard(),
	}
	if respondedAt != nil {
		t := *respondedAt
		o.respondedAt = &t
	}
	return o, nil
}

func (o *Offer) Validate() error {
	if o == nil {
		return ErrOfferIsNotConstructed
	}
	return o.guard.Validate(ErrOfferIsNotConstructed)
}

func (o *Offer) ID() kernel.UUID {
	return o.id
}

func (o *Offer) JobID() kernel.UUID {
	return o.jobID
}

func (o *Offer) DriverID() kernel.UUID {
	return o.driverID
}

func (o *Offer) Status() Status {
	return o.status
}

func (o *Offer) OfferedAt() time.Time {
	return o.offeredAt
}

func (o *Offer) RespondedAt() *time.Time {
	if o.respondedAt == nil {
		return nil
	}
	t := *o.respondedAt
	return &t
}

func (o *Offer) IsPending() bool {
	return o.status == Pending
}

// Accept resolves the offer as the winning one.
func (o *Offer) Accept(now time.Time) error {
	return o.resolve(Accepted, now)
}

// Decline resolves the offer as refused, either by the driver or because the job
// was already taken.
func (o *Offer) Decline(now time.Time) error {
	return o.resolve(Declined, now)
}

// Expire resolves the offer because the job went to another driver, was cancelled,
// or the offer outlived its TTL.
func (o *Offer) Expire(now time.Time) error {
	return o.resolve(Expired, now)
}

// DeclineExpired records a driver's late answer on an offer that was expired because
// the job went to another driver. Only Expired offers move, and only to Declined, so the
// offer never returns to Pending and a repeated answer fails.
func (o *Offer) DeclineExpired(now time.Time) error {
	if o.status != Expired {
		return errs.NewInvalidOfferError(o.id, ReasonAlreadyResolved+" as "+o.status.String())
	}
	at := now.UTC()
	o.status = Declined
	o.respondedAt = &at
	return nil
}

func (o *Offer) resolve(to Status, now time.Time) error {
	if o.status != Pending {
		return errs.NewInvalidOfferError(o.id, ReasonAlreadyResolved+" as "+o.status.String())
	}
	at := now.UTC()
	o.status = to
	o.respondedAt = &at
	return nil
}
