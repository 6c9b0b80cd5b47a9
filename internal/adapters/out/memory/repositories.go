package memory

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"relocation/internal/core/domain/model/driver"
	"relocation/internal/core/domain/model/job"
	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/core/domain/model/offer"
	"relocation/internal/pkg/errs"
)

type jobRepository struct {
	uow *UnitOfWork
}

func (r *jobRepository) Add(_ context.Context, aggregate *job.Job) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if !r.uow.active() {
		return ErrNoActiveTransaction
	}

	if _, ok := r.lookup(aggregate.ID()); ok {
		return errs.NewValueIsInvalidError("job id")
	}

	r.uow.staged.jobs[aggregate.ID()] = aggregate.Snapshot()
	return nil
}

func (r *jobRepository) Update(_ context.Context, aggregate *job.Job) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if !r.uow.active() {
		return ErrNoActiveTransaction
	}

	if _, ok := r.lookup(aggregate.ID()); !ok {
		return errs.NewObjectNotFoundError("job", aggregate.ID().String())
	}

	r.uow.staged.jobs[aggregate.ID()] = aggregate.Snapshot()
	return nil
}

func (r *jobRepository) Get(_ context.Context, id kernel.UUID) (*job.Job, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	snapshot, ok := r.lookup(id)
	if !ok {
		return nil, errs.NewObjectNotFoundError("job", id.String())
	}
	return job.RestoreJob(snapshot)
}

// GetForUpdate waits for the job's semaphore and reads the job once it is held.
func (r *jobRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*job.Job, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if !r.uow.active() {
		return nil, ErrNoActiveTransaction
	}

	if _, ok := r.lookup(id); !ok {
		return nil, errs.NewObjectNotFoundError("job", id.String())
	}

	if err := r.uow.lock(ctx, id); err != nil {
		return nil, err
	}

	return r.Get(ctx, id)
}

func (r *jobRepository) lookup(id kernel.UUID) (job.Snapshot, bool) {
	if r.uow.active() {
		if snapshot, ok := r.uow.staged.jobs[id]; ok {
			return snapshot, true
		}
	}

	r.uow.store.mu.RLock()
	defer r.uow.store.mu.RUnlock()

	snapshot, ok := r.uow.store.jobs[id]
	return snapshot, ok
}

type offerRepository struct {
	uow *UnitOfWork
}

// Add stages the offer unless the (job, driver) pair is already taken.
func (r *offerRepository) Add(_ context.Context, o *offer.Offer) (bool, error) {
	if err := o.Validate(); err != nil {
		return false, err
	}
	if !r.uow.active() {
		return false, ErrNoActiveTransaction
	}

	existing := r.rows(func(row offerRow) bool {
		return row.jobID == o.JobID() && row.driverID == o.DriverID()
	})
	if len(existing) > 0 {
		return false, nil
	}

	r.uow.staged.offers[o.ID()] = fromOffer(o)
	return true, nil
}

func (r *offerRepository) Update(_ context.Context, offers ...*offer.Offer) error {
	if !r.uow.active() {
		return ErrNoActiveTransaction
	}

	for _, o := range offers {
		if err := o.Validate(); err != nil {
			return err
		}

		found := r.rows(func(row offerRow) bool { return row.id == o.ID() })
		if len(found) == 0 {
			return errs.NewObjectNotFoundError("offer", o.ID().String())
		}

		r.uow.staged.offers[o.ID()] = fromOffer(o)
	}
	return nil
}

func (r *offerRepository) Find(_ context.Context, jobID, driverID kernel.UUID) (*offer.Offer, error) {
	if err := errors.Join(jobID.Validate(), driverID.Validate()); err != nil {
		return nil, err
	}

	found := r.rows(func(row offerRow) bool {
		return row.jobID == jobID && row.driverID == driverID
	})
	if len(found) == 0 {
		return nil, errs.NewObjectNotFoundError("offer", jobID.String()+"/"+driverID.String())
	}
	return toOffer(found[0])
}

func (r *offerRepository) ListByJob(_ context.Context, jobID kernel.UUID) ([]*offer.Offer, error) {
	return toOffers(r.rows(func(row offerRow) bool { return row.jobID == jobID }))
}

func (r *offerRepository) ListPendingByJob(_ context.Context, jobID kernel.UUID) ([]*offer.Offer, error) {
	return toOffers(r.rows(func(row offerRow) bool {
		return row.jobID == jobID && row.status == offer.Pending
	}))
}

func (r *offerRepository) JobsWithPendingOffersBefore(_ context.Context, cutoff time.Time) ([]kernel.UUID, error) {
	stale := r.rows(func(row offerRow) bool {
		return row.status == offer.Pending && !row.offeredAt.After(cutoff)
	})

	ids := make([]kernel.UUID, 0, len(stale))
	for _, row := range stale {
		if !slices.Contains(ids, row.jobID) {
			ids = append(ids, row.jobID)
		}
	}
	return ids, nil
}

// rows returns the matching offers as seen by this unit, oldest first.
func (r *offerRepository) rows(match func(offerRow) bool) []offerRow {
	byID := make(map[kernel.UUID]offerRow)

	r.uow.store.mu.RLock()
	for id, row := range r.uow.store.offers {
		if match(row) {
			byID[id] = row
		}
	}
	r.uow.store.mu.RUnlock()

	if r.uow.active() {
		for id, row := range r.uow.staged.offers {
			if match(row) {
				byID[id] = row
			} else {
				delete(byID, id)
			}
		}
	}

	result := make([]offerRow, 0, len(byID))
	for _, row := range byID {
		result = append(result, row)
	}
	slices.SortFunc(result, func(a, b offerRow) int {
		if c := a.offeredAt.Compare(b.offeredAt); c != 0 {
			return c
		}
		return strings.Compare(a.id.String(), b.id.String())
	})
	return result
}

func fromOffer(o *offer.Offer) offerRow {
	return offerRow{
		id:          o.ID(),
		jobID:       o.JobID(),
		driverID:    o.DriverID(),
		status:      o.Status(),
		offeredAt:   o.OfferedAt(),
		respondedAt: o.RespondedAt(),
	}
}

func toOffer(row offerRow) (*offer.Offer, error) {
	return offer.RestoreOffer(row.id, row.jobID, row.driverID, row.status, row.offeredAt, row.respondedAt)
}

func toOffers(rows []offerRow) ([]*offer.Offer, error) {
	offers := make([]*offer.Offer, 0, len(rows))
	for _, row := range rows {
		o, err := toOffer(row)
		if err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, nil
}

type driverRepository struct {
	uow *UnitOfWork
}

func (r *driverRepository) Add(_ context.Context, aggregate *driver.Driver) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if !r.uow.active() {
		return ErrNoActiveTransaction
	}

	if _, ok := r.lookup(aggregate.ID()); ok {
		return errs.NewValueIsInvalidError("driver id")
	}

	r.uow.staged.drivers[aggregate.ID()] = driverRow{
		id:             aggregate.ID(),
		name:           aggregate.Name(),
		employmentType: aggregate.EmploymentType(),
	}
	return nil
}

func (r *driverRepository) Get(_ context.Context, id kernel.UUID) (*driver.Driver, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	row, ok := r.lookup(id)
	if !ok {
		return nil, errs.NewObjectNotFoundError("driver", id.String())
	}
	return driver.RestoreDriver(row.id, row.name, row.employmentType)
}

func (r *driverRepository) lookup(id kernel.UUID) (driverRow, bool) {
	if r.uow.active() {
		if row, ok := r.uow.staged.drivers[id]; ok {
			return row, true
		}
	}

	r.uow.store.mu.RLock()
	defer r.uow.store.mu.RUnlock()

	row, ok := r.uow.store.drivers[id]
	return row, ok
}
