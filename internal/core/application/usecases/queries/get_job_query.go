// Package queries contains read operations. Queries never take row locks and never
// dispatch notifications.
package queries

import (
	"errors"
	"time"

	"relocation/internal/core/domain/model/job"
	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/core/domain/model/offer"
	"relocation/internal/pkg/guard"
)

var ErrGetJobQueryIsNotConstructed = errors.New(
	"GetJobQuery must be created via NewGetJobQuery constructor",
)

// GetJobQuery retrieves a job with its offers.
//
// Example:
//
//	query, _ := NewGetJobQuery(jobID)
//	view, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to get job: %w", err)
//	}
//	fmt.Printf("job %s is %s with %d offers\n", view.Job.ID, view.Job.Status, len(view.Offers))
type GetJobQuery struct {
	jobID kernel.UUID
	guard guard.ConstructorGuard
}

func NewGetJobQuery(jobID kernel.UUID) (GetJobQuery, error) {
	if err := jobID.Validate(); err != nil {
		return GetJobQuery{}, err
	}
	return GetJobQuery{jobID: jobID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetJobQuery) Validate() error {
	return q.guard.Validate(ErrGetJobQueryIsNotConstructed)
}

func (q GetJobQuery) JobID() kernel.UUID {
	return q.jobID
}

// OfferView is the read model of one offer.
type OfferView struct {
	ID          kernel.UUID
	DriverID    kernel.UUID
	Status      offer.Status
	OfferedAt   time.Time
	RespondedAt *time.Time
}

// GetJobQueryResponse is a job snapshot together with its offers, oldest first.
type GetJobQueryResponse struct {
	Job    job.Snapshot
	Offers []OfferView
}
