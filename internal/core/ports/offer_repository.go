package ports

import (
	"context"
	"time"

	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/core/domain/model/offer"
)

// OfferRepository defines the persistence contract for offers. Offers are written only
// while the owning job is locked with JobRepository.GetForUpdate.
type OfferRepository interface {
	// Add inserts the offer unless one already exists for the same (job, driver) pair.
	// It reports whether a row was inserted; an existing pair is not an error.
	Add(ctx context.Context, o *offer.Offer) (bool, error)

	// Update persists the status and response time of the given offers.
	Update(ctx context.Context, offers ...*offer.Offer) error

	// Find returns the offer of jobID to driverID, or an ObjectNotFoundError.
	Find(ctx context.Context, jobID, driverID kernel.UUID) (*offer.Offer, error)

	// ListByJob returns every offer of a job, oldest first.
	ListByJob(ctx context.Context, jobID kernel.UUID) ([]*offer.Offer, error)

	// ListPendingByJob returns the job's pending offers, oldest first.
	ListPendingByJob(ctx context.Context, jobID kernel.UUID) ([]*offer.Offer, error)

	// JobsWithPendingOffersBefore returns the distinct jobs that have a pending offer
	// created at or before cutoff.
	JobsWithPendingOffersBefore(ctx context.Context, cutoff time.Time) ([]kernel.UUID, error)
}
