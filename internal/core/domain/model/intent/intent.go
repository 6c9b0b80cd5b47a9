// Package intent defines the notification intents returned by job transitions.
//
// Transitions never talk to the outside world. They describe the side effects they
// want as a list of intents, and the post-commit dispatcher executes that list once
// the transaction that produced it has been committed.
package intent

import (
	"relocation/internal/core/domain/model/kernel"
)

// Event names carried by notification intents.
const (
	EventOffer               = "offer"
	EventOfferDeclined       = "offer_declined"
	EventOfferExpired        = "offer_expired"
	EventJobReadyForDispatch = "job_ready_for_dispatch"
	EventJobAssigned         = "job_assigned"
	EventJobRescheduled      = "job_rescheduled"
	EventJobPickedUp         = "job_picked_up"
	EventJobStarted          = "job_started"
	EventJobFinishRequested  = "job_finish_requested"
	EventJobDelivered        = "job_delivered"
	EventJobCancelled        = "job_cancelled"
)

// Audience is the party a push update is addressed to.
type Audience string

const (
	AudienceClient Audience = "client"
	AudienceDriver Audience = "driver"
	AudienceAdmin  Audience = "admin"
)

// Payload is the small, JSON-friendly body attached to an event.
type Payload map[string]any

// Intent is one side effect requested by a transition. The set of implementations is
// closed: NotifyClient, NotifyDriver, NotifyAdmin, SendEmail and OfferDrivers.
type Intent interface {
	JobID() kernel.UUID
	// Name identifies the intent kind in logs and metrics.
	Name() string
	sealed()
}

// NotifyClient pushes Event to the job's client.
type NotifyClient struct {
	Job     kernel.UUID
	Client  kernel.UUID
	Event   string
	Payload Payload
}

// NotifyDriver pushes Event to one driver.
type NotifyDriver struct {
	Job     kernel.UUID
	Driver  kernel.UUID
	Event   string
	Payload Payload
}

// NotifyAdmin pushes Event to every admin observer.
type NotifyAdmin struct {
	Job     kernel.UUID
	Event   string
	Payload Payload
}

// SendEmail hands an email of Kind to the mailer. Args fill the template.
type SendEmail struct {
	Job  kernel.UUID
	Kind string
	Args map[string]string
}

// OfferDrivers broadcasts a new offer for Job to every candidate driver.
type OfferDrivers struct {
	Job     kernel.UUID
	Drivers []kernel.UUID
}

func (i NotifyClient) JobID() kernel.UUID { return i.Job }
func (i NotifyDriver) JobID() kernel.UUID { return i.Job }
func (i NotifyAdmin) JobID() kernel.UUID  { return i.Job }
func (i SendEmail) JobID() kernel.UUID    { return i.Job }
func (i OfferDrivers) JobID() kernel.UUID { return i.Job }

func (NotifyClient) Name() string { return "notify_client" }
func (NotifyDriver) Name() string { return "notify_driver" }
func (NotifyAdmin) Name() string  { return "notify_admin" }
func (SendEmail) Name() string    { return "send_email" }
func (OfferDrivers) Name() string { return "offer_drivers" }

func (NotifyClient) sealed() {}
func (NotifyDriver) sealed() {}
func (NotifyAdmin) sealed()  {}
func (SendEmail) sealed()    {}
func (OfferDrivers) sealed() {}
