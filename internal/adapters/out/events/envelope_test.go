package events_test

import (
	"testing"

	"relocation/internal/adapters/out/events"
	"relocation/internal/core/domain/model/intent"
	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
)

func TestEnvelope(t *testing.T) {
	jobID := kernel.NewUUID()
	driverA, driverB := kernel.NewUUID(), kernel.NewUUID()

	t.Run("should address an offer to every candidate driver", func(t *testing.T) {
		e := events.Offer(jobID, []kernel.UUID{driverA, driverB})

		assert.Equal(t, events.KindOffer, e.Kind)
		assert.Equal(t, intent.AudienceDriver, e.Audience)
		assert.Equal(t, []string{driverA.String(), driverB.String()}, e.Recipients)
		assert.Equal(t, intent.EventOffer, e.Payload["event"])
		assert.Equal(t, "job.offer.driver", e.RoutingKey())
		assert.NoError(t, e.Validate())
	})

	t.Run("should take the recipient of a client update from the payload", func(t *testing.T) {
		clientID := kernel.NewUUID().String()

		e := events.Update(jobID, intent.AudienceClient, intent.Payload{"recipientId": clientID})

		assert.Equal(t, []string{clientID}, e.Recipients)
		assert.Equal(t, "job.update.client", e.RoutingKey())
		assert.NoError(t, e.Validate())
	})

	t.Run("should not address admin updates to a recipient", func(t *testing.T) {
		e := events.Update(jobID, intent.AudienceAdmin, intent.Payload{"recipientId": "ignored"})

		assert.Empty(t, e.Recipients)
		assert.NoError(t, e.Validate())
	})

	t.Run("should reject a driver update without recipient", func(t *testing.T) {
		e := events.Update(jobID, intent.AudienceDriver, intent.Payload{})

		assert.ErrorIs(t, e.Validate(), errs.ErrValueIsRequired)
	})

	t.Run("should reject an unknown audience and kind", func(t *testing.T) {
		e := events.Envelope{Kind: "other", JobID: jobID.String(), Audience: "nobody"}

		assert.ErrorIs(t, e.Validate(), errs.ErrValueIsInvalid)
	})
}
