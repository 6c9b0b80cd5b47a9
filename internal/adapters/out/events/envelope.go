// Package events defines the wire form of real-time notifications shared by the push
// adapters: the websocket hub, the Postgres LISTEN/NOTIFY relay and the AMQP bus.
package events

import (
	"errors"

	"relocation/internal/core/domain/model/intent"
	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/pkg/errs"
)

// Envelope kinds.
const (
	KindOffer  = "offer"
	KindUpdate = "update"
)

// Envelope is one notification addressed to an audience. Recipients lists the client or
// driver ids it is for; admin envelopes go to every admin and carry no recipients.
type Envelope struct {
	Kind       string          `json:"kind"`
	JobID      string          `json:"jobId"`
	Audience   intent.Audience `json:"audience"`
	Recipients []string        `json:"recipients,omitempty"`
	Payload    intent.Payload  `json:"payload,omitempty"`
}

// Offer builds the envelope announcing a new offer of jobID to driverIDs.
func Offer(jobID kernel.UUID, driverIDs []kernel.UUID) Envelope {
	recipients := make([]string, 0, len(driverIDs))
	for _, id := range driverIDs {
		recipients = append(recipients, id.String())
	}

	return Envelope{
		Kind:       KindOffer,
		JobID:      jobID.String(),
		Audience:   intent.AudienceDriver,
		Recipients: recipients,
		Payload: intent.Payload{
			"event": intent.EventOffer,
			"jobId": jobID.String(),
		},
	}
}

// Update builds the envelope of a job update. The recipient of a client or driver update
// is read from the payload's "recipientId" key.
func Update(jobID kernel.UUID, audience intent.Audience, payload intent.Payload) Envelope {
	e := Envelope{
		Kind:     KindUpdate,
		JobID:    jobID.String(),
		Audience: audience,
		Payload:  payload,
	}
	if audience != intent.AudienceAdmin {
		if recipient, ok := payload["recipientId"].(string); ok && recipient != "" {
			e.Recipients = []string{recipient}
		}
	}
	return e
}

// Validate reports envelopes that cannot be routed.
func (e Envelope) Validate() error {
	var kindErr, audienceErr, recipientsErr error
	if e.Kind != KindOffer && e.Kind != KindUpdate {
		kindErr = errs.NewValueIsInvalidError("envelope kind")
	}

	switch e.Audience {
	case intent.AudienceAdmin:
	case intent.AudienceClient, intent.AudienceDriver:
		if len(e.Recipients) == 0 {
			recipientsErr = errs.NewValueIsRequiredError("envelope recipients")
		}
	default:
		audienceErr = errs.NewValueIsInvalidError("envelope audience")
	}

	var jobErr error
	if e.JobID == "" {
		jobErr = errs.NewValueIsRequiredError("envelope job id")
	}

	return errors.Join(kindErr, audienceErr, recipientsErr, jobErr)
}

// RoutingKey names the topic of the envelope on a message bus, e.g. "job.update.client".
func (e Envelope) RoutingKey() string {
	return "job." + e.Kind + "." + string(e.Audience)
}
