package ports

import (
	"context"

	"relocation/internal/core/domain/model/intent"
	"relocation/internal/core/domain/model/kernel"
)

// Notifier delivers real-time events. Delivery is attempted at most once and is best
// effort: callers never roll back or retry a transition because a push failed.
type Notifier interface {
	// PushOffer pushes an offer event for jobID to each of driverIDs.
	PushOffer(ctx context.Context, jobID kernel.UUID, driverIDs []kernel.UUID) error

	// PushUpdate pushes payload about jobID to audience. For the client and driver
	// audiences payload carries the recipient under the "recipientId" key.
	PushUpdate(ctx context.Context, jobID kernel.UUID, audience intent.Audience, payload intent.Payload) error
}

// Mailer hands an email of a given kind to the mail delivery collaborator. Like
// Notifier it is best effort.
type Mailer interface {
	Send(ctx context.Context, kind string, args map[string]string) error
}
