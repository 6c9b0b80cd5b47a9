package job

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/pkg/errs"
	"relocation/internal/pkg/guard"
)

const (
	// PickupWindow is how far, in either direction, now may be from the scheduled
	// pickup instant for a pickup verification to be accepted. Bounds are inclusive.
	PickupWindow = 24 * time.Hour

	// FinishGeofenceKm is the maximum distance from the destination at which a
	// driver may request to finish a trip.
	FinishGeofenceKm = 100.0
)

var ErrJobIsNotConstructed = errors.New("Job must be created via NewJob or RestoreJob")

// Details are the intake attributes of a job, fixed at creation except for the
// schedule which may be changed by Reschedule.
type Details struct {
	Schedule    kernel.Schedule
	Origin      kernel.Place
	Destination kernel.Place
	Vehicle     Vehicle
	Price       float64
	DistanceKm  float64
}

func (d Details) validate() error {
	var priceErr, distanceErr error
	if math.IsNaN(d.Price) || math.IsInf(d.Price, 0) || d.Price < 0 {
		priceErr = errs.NewValueIsInvalidErrorWithCause("price", fmt.Errorf("%v is not a non-negative amount", d.Price))
	}
	if math.IsNaN(d.DistanceKm) || math.IsInf(d.DistanceKm, 0) || d.DistanceKm < 0 {
		distanceErr = errs.NewValueIsInvalidErrorWithCause("distance", fmt.Errorf("%v is not a non-negative distance", d.DistanceKm))
	}
	return errors.Join(
		d.Schedule.Validate(),
		d.Origin.Validate(),
		d.Destination.Validate(),
		d.Vehicle.Validate(),
		priceErr,
		distanceErr,
	)
}

// Cancellation records why, when and by whom a job was cancelled.
type Cancellation struct {
	reason string
	at     time.Time
	by     kernel.Actor
}

func RestoreCancellation(reason string, at time.Time, by kernel.Actor) Cancellation {
	return Cancellation{reason: reason, at: at, by: by}
}

func (c Cancellation) Reason() string {
	return c.reason
}

func (c Cancellation) At() time.Time {
	return c.at
}

func (c Cancellation) By() kernel.Actor {
	return c.by
}

// Job is the aggregate root of a vehicle relocation. It owns the lifecycle status and
// every artefact attached by a transition: assignment, fee, timestamps, verification
// payloads, route trace, reschedule history and cancellation.
//
// Job maintains these invariants:
//   - driver is set if and only if the status requires one (see Status.RequiresDriver)
//   - startedAt is set if and only if the status requires one (see Status.RequiresStartedAt)
//   - status only moves along the forward order or to Cancelled
//   - reschedule history is append-only
//
// Verification payloads and the route trace are opaque and never interpreted.
type Job struct {
	id                   kernel.UUID
	clientID             kernel.UUID
	driverID             *kernel.UUID
	status               Status
	details              Details
	driverFee            *float64
	startedAt            *time.Time
	tripDuration         *time.Duration
	routeTrace           []byte
	pickupVerification   []byte
	deliveryVerification []byte
	reschedules          []RescheduleRecord
	cancellation         *Cancellation
	createdAt            time.Time
	guard                guard.ConstructorGuard
}

// NewJob creates a job as produced by intake. A job that must be paid for first starts
// in PendingPaid, otherwise it starts in Created and can be offered to drivers at once.
//
// Example:
//
//	schedule, _ := kernel.NewSchedule("2024-01-15", "10:00")
//	origin, _ := kernel.NewPlace("Hauptstrasse 1, Berlin", nil)
//	destination, _ := kernel.NewPlace("Rue de Rivoli 1, Paris", &paris)
//	vehicle, _ := job.NewVehicle("VW", "Golf", "B-XY 123")
//	j, err := job.NewJob(kernel.NewUUID(), clientID, job.Details{
//	    Schedule: schedule, Origin: origin, Destination: destination,
//	    Vehicle: vehicle, Price: 450, DistanceKm: 1050,
//	}, false, time.Now())
func NewJob(id, clientID kernel.UUID, details Details, paymentRequired bool, now time.Time) (*Job, error) {
	status := Created
	if paymentRequired {
		status = PendingPaid
	}

	if err := errors.Join(id.Validate(), clientID.Validate(), details.validate()); err != nil {
		return nil, err
	}

	return &Job{
		id:        id,
		clientID:  clientID,
		status:    status,
		details:   details,
		createdAt: now.UTC(),
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Snapshot is the full state of a job. It is used to restore a job from storage and to
// hand a read-only copy to queries and adapters.
type Snapshot struct {
	ID                   kernel.UUID
	ClientID             kernel.UUID
	DriverID             *kernel.UUID
	Status               Status
	Details              Details
	DriverFee            *float64
	StartedAt            *time.Time
	TripDuration         *time.Duration
	RouteTrace           []byte
	PickupVerification   []byte
	DeliveryVerification []byte
	Reschedules          []RescheduleRecord
	Cancellation         *Cancellation
	CreatedAt            time.Time
}

// RestoreJob rebuilds a job from persisted state and re-checks the driver and
// startedAt invariants so that corrupt rows are rejected when loaded.
func RestoreJob(s Snapshot) (*Job, error) {
	var driverErr error
	if s.DriverID != nil {
		driverErr = s.DriverID.Validate()
	}

	if err := errors.Join(
		s.ID.Validate(),
		s.ClientID.Validate(),
		s.Status.Validate(),
		s.Details.validate(),
		driverErr,
		s.Status.ValidateCanHaveDriver(s.DriverID != nil),
		s.Status.ValidateCanHaveStartedAt(s.StartedAt != nil),
	); err != nil {
		return nil, err
	}

	return &Job{
		id:                   s.ID,
		clientID:             s.ClientID,
		driverID:             copyPtr(s.DriverID),
		status:               s.Status,
		details:              s.Details,
		driverFee:            copyPtr(s.DriverFee),
		startedAt:            copyPtr(s.StartedAt),
		tripDuration:         copyPtr(s.TripDuration),
		routeTrace:           slices.Clone(s.RouteTrace),
		pickupVerification:   slices.Clone(s.PickupVerification),
		deliveryVerification: slices.Clone(s.DeliveryVerification),
		reschedules:          slices.Clone(s.Reschedules),
		cancellation:         copyPtr(s.Cancellation),
		createdAt:            s.CreatedAt,
		guard:                guard.NewConstructorGuard(),
	}, nil
}

func (j *Job) Validate() error {
	if j == nil {
		return ErrJobIsNotConstructed
	}
	return j.guard.Validate(ErrJobIsNotConstructed)
}

// Snapshot returns a deep copy of the job's state.
func (j *Job) Snapshot() Snapshot {
	return Snapshot{
		ID:                   j.id,
		ClientID:             j.clientID,
		DriverID:             copyPtr(j.driverID),
		Status:               j.status,
		Details:              j.details,
		DriverFee:            copyPtr(j.driverFee),
		StartedAt:            copyPtr(j.startedAt),
		TripDuration:         copyPtr(j.tripDuration),
		RouteTrace:           slices.Clone(j.routeTrace),
		PickupVerification:   slices.Clone(j.pickupVerification),
		DeliveryVerification: slices.Clone(j.deliveryVerification),
		Reschedules:          slices.Clone(j.reschedules),
		Cancellation:         copyPtr(j.cancellation),
		CreatedAt:            j.createdAt,
	}
}

func (j *Job) IsEqual(other *Job) bool {
	return other != nil && j.id.IsEqual(other.id)
}

func (j *Job) ID() kernel.UUID {
	return j.id
}

func (j *Job) ClientID() kernel.UUID {
	return j.clientID
}

// Driver returns the assigned driver, or nil when the job has none.
func (j *Job) Driver() *kernel.UUID {
	return copyPtr(j.driverID)
}

// IsAssignedTo reports whether driverID is the job's current driver.
func (j *Job) IsAssignedTo(driverID kernel.UUID) bool {
	return j.driverID != nil && j.driverID.IsEqual(driverID)
}

func (j *Job) Status() Status {
	return j.status
}

func (j *Job) Schedule() kernel.Schedule {
	return j.details.Schedule
}

func (j *Job) Origin() kernel.Place {
	return j.details.Origin
}

func (j *Job) Destination() kernel.Place {
	return j.details.Destination
}

func (j *Job) Vehicle() Vehicle {
	return j.details.Vehicle
}

func (j *Job) Price() float64 {
	return j.details.Price
}

func (j *Job) DistanceKm() float64 {
	return j.details.DistanceKm
}

// DriverFee returns the fee computed on assignment. It is nil before assignment and
// when the fee could not be determined.
func (j *Job) DriverFee() *float64 {
	return copyPtr(j.driverFee)
}

func (j *Job) StartedAt() *time.Time {
	return copyPtr(j.startedAt)
}

func (j *Job) TripDuration() *time.Duration {
	return copyPtr(j.tripDuration)
}

func (j *Job) RouteTrace() []byte {
	return slices.Clone(j.routeTrace)
}

func (j *Job) PickupVerification() []byte {
	return slices.Clone(j.pickupVerification)
}

func (j *Job) DeliveryVerification() []byte {
	return slices.Clone(j.deliveryVerification)
}

func (j *Job) Reschedules() []RescheduleRecord {
	return slices.Clone(j.reschedules)
}

func (j *Job) Cancellation() *Cancellation {
	return copyPtr(j.cancellation)
}

func (j *Job) CreatedAt() time.Time {
	return j.createdAt
}

// ValidateCanBeOffered fails with an InvalidStateError unless the job is waiting for
// a driver. Offers may only be created for Created jobs.
func (j *Job) ValidateCanBeOffered() error {
	if j.status != Created {
		return errs.NewInvalidStateError("create offers", j.status.String())
	}
	return nil
}

// ConfirmPayment releases a PendingPaid job for dispatch.
func (j *Job) ConfirmPayment() error {
	next, err := j.status.ConfirmPayment()
	if err != nil {
		return err
	}
	j.status = next
	return nil
}

// Assign gives the job to driverID and stores the driver's fee. A nil fee is legal:
// a failed fee calculation must not prevent the assignment.
func (j *Job) Assign(driverID kernel.UUID, fee *float64) error {
	if err := driverID.Validate(); err != nil {
		return err
	}

	next, err := j.status.Assign()
	if err != nil {
		return err
	}

	j.status = next
	j.driverID = &driverID
	j.driverFee = copyPtr(fee)
	return nil
}

// VerifyPickup stores the pickup verification payload and moves the job to PickedUp.
//
// The job must be Assigned, and now must lie within PickupWindow of the scheduled
// pickup instant, where the schedule is read as a civil time in loc (nil means UTC).
// Errors:
//   - InvalidStateError when the job is not Assigned (checked first)
//   - InvalidWindowError when now is outside the window
//   - ValueIsRequiredError when payload is empty
func (j *Job) VerifyPickup(payload []byte, now time.Time, loc *time.Location) error {
	next, err := j.status.PickUp()
	if err != nil {
		return err
	}

	scheduled := j.details.Schedule.Instant(loc)
	if delta := now.Sub(scheduled); delta > PickupWindow || delta < -PickupWindow {
		return errs.NewInvalidWindowError(scheduled, now, PickupWindow)
	}

	if len(payload) == 0 {
		return errs.NewValueIsRequiredError("pickup verification")
	}

	j.status = next
	j.pickupVerification = slices.Clone(payload)
	return nil
}

// Start marks the trip as in progress at now.
func (j *Job) Start(now time.Time) error {
	next, err := j.status.Start()
	if err != nil {
		return err
	}

	startedAt := now.UTC()
	j.status = next
	j.startedAt = &startedAt
	return nil
}

// RequestFinish records the route trace and the trip duration and moves the job to
// RequestFinish. When position is given and the destination has coordinates, the
// haversine distance between them must not exceed FinishGeofenceKm.
func (j *Job) RequestFinish(routeTrace []byte, now time.Time, position *kernel.GeoPoint) error {
	next, err := j.status.RequestFinish()
	if err != nil {
		return err
	}

	if position != nil {
		if destination, ok := j.details.Destination.Coordinates(); ok {
			distance, err := position.DistanceKm(destination)
			if err != nil {
				return err
			}
			if distance > FinishGeofenceKm {
				return errs.NewTooFarFromDestinationError(distance, FinishGeofenceKm)
			}
		}
	}

	duration := max(now.Sub(*j.startedAt), 0)
	j.status = next
	j.tripDuration = &duration
	j.routeTrace = slices.Clone(routeTrace)
	return nil
}

// Deliver stores the delivery verification payload and closes the job as Delivered.
// Only RequestFinish may move to Delivered: a delivered job always keeps the driver and
// start time it gained on the way, and statuses only ever move forward, so no earlier
// status can skip ahead to delivery.
func (j *Job) Deliver(payload []byte) error {
	next, err := j.status.Deliver()
	if err != nil {
		return err
	}

	if len(payload) == 0 {
		return errs.NewValueIsRequiredError("delivery verification")
	}

	j.status = next
	j.deliveryVerification = slices.Clone(payload)
	return nil
}

// Cancel closes the job as Cancelled. The driver and start timestamp are cleared to
// keep the invariants; callers that need to notify the previous driver read Driver
// before calling Cancel.
func (j *Job) Cancel(reason string, by kernel.Actor, now time.Time) error {
	next, err := j.status.Cancel()
	if err != nil {
		return err
	}

	reason = strings.TrimSpace(reason)
	var reasonErr error
	if reason == "" {
		reasonErr = errs.NewValueIsRequiredError("cancellation reason")
	}
	if err := errors.Join(reasonErr, by.Validate()); err != nil {
		return err
	}

	j.status = next
	j.driverID = nil
	j.startedAt = nil
	j.cancellation = &Cancellation{reason: reason, at: now.UTC(), by: by}
	return nil
}

// Reschedule replaces the schedule and appends one history record. The new schedule
// is not checked for being in the future.
func (j *Job) Reschedule(next kernel.Schedule, by kernel.Actor, now time.Time) error {
	if err := j.status.ValidateMutable("reschedule"); err != nil {
		return err
	}
	if err := errors.Join(next.Validate(), by.Validate()); err != nil {
		return err
	}

	j.reschedules = append(j.reschedules, RescheduleRecord{
		previous:  j.details.Schedule,
		next:      next,
		changedAt: now.UTC(),
		changedBy: by.ID(),
	})
	j.details.Schedule = next
	return nil
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
