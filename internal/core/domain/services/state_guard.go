package services

import (
	"strconv"
	"time"

	"relocation/internal/core/domain/model/intent"
	"relocation/internal/core/domain/model/job"
	"relocation/internal/core/domain/model/kernel"
)

// StateGuard applies lifecycle transitions to a job and describes the notifications
// each successful transition calls for. It performs no I/O: every method mutates the
// job in place and returns the intents for the post-commit dispatcher. On error the
// job is left unchanged and no intents are returned.
//
// The guard is stateless apart from the location used to read civil schedules as
// instants, and is safe for concurrent use.
type StateGuard struct {
	location *time.Location
}

// NewStateGuard returns a guard that reads schedules in loc. A nil loc means UTC.
func NewStateGuard(loc *time.Location) StateGuard {
	if loc == nil {
		loc = time.UTC
	}
	return StateGuard{location: loc}
}

// Location returns the zone schedules are interpreted in.
func (g StateGuard) Location() *time.Location {
	return g.location
}

// ConfirmPayment releases a PendingPaid job for dispatch.
func (g StateGuard) ConfirmPayment(j *job.Job) ([]intent.Intent, error) {
	if err := j.ConfirmPayment(); err != nil {
		return nil, err
	}
	return []intent.Intent{
		intent.NotifyAdmin{Job: j.ID(), Event: intent.EventJobReadyForDispatch, Payload: statusPayload(j)},
	}, nil
}

// Reschedule overwrites the job's schedule and records the change.
func (g StateGuard) Reschedule(
	j *job.Job,
	next kernel.Schedule,
	by kernel.Actor,
	now time.Time,
) ([]intent.Intent, error) {
	previous := j.Schedule()
	if err := j.Reschedule(next, by, now); err != nil {
		return nil, err
	}

	payload := statusPayload(j)
	payload["previousDate"] = previous.Date()
	payload["previousTime"] = previous.Time()
	payload["newDate"] = next.Date()
	payload["newTime"] = next.Time()
	payload["changedBy"] = by.String()

	return g.everyone(j, intent.EventJobRescheduled, payload, map[string]string{
		"jobId":        j.ID().String(),
		"previousDate": previous.Date(),
		"previousTime": previous.Time(),
		"newDate":      next.Date(),
		"newTime":      next.Time(),
	}), nil
}

// ApplyPickupVerification accepts the driver's pickup evidence.
func (g StateGuard) ApplyPickupVerification(j *job.Job, payload []byte, now time.Time) ([]intent.Intent, error) {
	if err := j.VerifyPickup(payload, now, g.location); err != nil {
		return nil, err
	}
	return g.clientAndAdmin(j, intent.EventJobPickedUp), nil
}

func (g StateGuard) StartInProgress(j *job.Job, now time.Time) ([]intent.Intent, error) {
	if err := j.Start(now); err != nil {
		return nil, err
	}
	return g.clientAndAdmin(j, intent.EventJobStarted), nil
}

// RequestFinish closes the driving part of the trip. position may be nil.
func (g StateGuard) RequestFinish(
	j *job.Job,
	routeTrace []byte,
	now time.Time,
	position *kernel.GeoPoint,
) ([]intent.Intent, error) {
	if err := j.RequestFinish(routeTrace, now, position); err != nil {
		return nil, err
	}

	intents := g.clientAndAdmin(j, intent.EventJobFinishRequested)
	args := map[string]string{"jobId": j.ID().String()}
	if d := j.TripDuration(); d != nil {
		args["tripDuration"] = d.Round(time.Minute).String()
	}
	return append(intents, intent.SendEmail{Job: j.ID(), Kind: intent.EventJobFinishRequested, Args: args}), nil
}

func (g StateGuard) ApplyDeliveryVerification(j *job.Job, payload []byte) ([]intent.Intent, error) {
	if err := j.Deliver(payload); err != nil {
		return nil, err
	}
	return g.everyone(j, intent.EventJobDelivered, statusPayload(j), map[string]string{
		"jobId": j.ID().String(),
	}), nil
}

// Cancel closes the job. The driver who held the job, if any, is still notified.
func (g StateGuard) Cancel(j *job.Job, reason string, by kernel.Actor, now time.Time) ([]intent.Intent, error) {
	previousDriver := j.Driver()
	if err := j.Cancel(reason, by, now); err != nil {
		return nil, err
	}

	payload := statusPayload(j)
	payload["reason"] = j.Cancellation().Reason()
	payload["cancelledBy"] = by.String()

	intents := []intent.Intent{
		intent.NotifyClient{Job: j.ID(), Client: j.ClientID(), Event: intent.EventJobCancelled, Payload: payload},
	}
	if previousDriver != nil {
		intents = append(intents,
			intent.NotifyDriver{Job: j.ID(), Driver: *previousDriver, Event: intent.EventJobCancelled, Payload: payload})
	}
	return append(intents,
		intent.NotifyAdmin{Job: j.ID(), Event: intent.EventJobCancelled, Payload: payload},
		intent.SendEmail{Job: j.ID(), Kind: intent.EventJobCancelled, Args: map[string]string{
			"jobId":  j.ID().String(),
			"reason": j.Cancellation().Reason(),
		}},
	), nil
}

func (g StateGuard) clientAndAdmin(j *job.Job, event string) []intent.Intent {
	payload := statusPayload(j)
	return []intent.Intent{
		intent.NotifyClient{Job: j.ID(), Client: j.ClientID(), Event: event, Payload: payload},
		intent.NotifyAdmin{Job: j.ID(), Event: event, Payload: payload},
	}
}

// everyone notifies the client, the driver when there is one and admins, then emails.
func (g StateGuard) everyone(j *job.Job, event string, payload intent.Payload, args map[string]string) []intent.Intent {
	intents := []intent.Intent{
		intent.NotifyClient{Job: j.ID(), Client: j.ClientID(), Event: event, Payload: payload},
	}
	if d := j.Driver(); d != nil {
		intents = append(intents, intent.NotifyDriver{Job: j.ID(), Driver: *d, Event: event, Payload: payload})
	}
	return append(intents,
		intent.NotifyAdmin{Job: j.ID(), Event: event, Payload: payload},
		intent.SendEmail{Job: j.ID(), Kind: event, Args: args},
	)
}

func statusPayload(j *job.Job) intent.Payload {
	p := intent.Payload{
		"jobId":  j.ID().String(),
		"status": j.Status().String(),
	}
	if fee := j.DriverFee(); fee != nil {
		p["driverFee"] = strconv.FormatFloat(*fee, 'f', 2, 64)
	}
	return p
}
