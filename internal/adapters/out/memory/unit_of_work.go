package memory

import (
	"context"
	"time"

	"relocation/internal/core/domain/model/job"
	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/core/ports"
	"relocation/internal/pkg/errs"
)

// changes is the write set of one unit of work.
type changes struct {
	jobs    map[kernel.UUID]job.Snapshot
	offers  map[kernel.UUID]offerRow
	drivers map[kernel.UUID]driverRow
}

func newChanges() *changes {
	return &changes{
		jobs:    make(map[kernel.UUID]job.Snapshot),
		offers:  make(map[kernel.UUID]offerRow),
		drivers: make(map[kernel.UUID]driverRow),
	}
}

// UnitOfWork stages writes until Commit and holds the job locks taken by GetForUpdate.
// It must not be shared between goroutines.
type UnitOfWork struct {
	store  *Store
	staged *changes
	held   map[kernel.UUID]chan struct{}
}

// Begin starts a transaction. Calling it again on an active unit is a no-op.
func (uow *UnitOfWork) Begin(_ context.Context) error {
	if uow.staged != nil {
		return nil
	}

	uow.staged = newChanges()
	uow.held = make(map[kernel.UUID]chan struct{})
	return nil
}

// Commit applies the staged writes and releases the held job locks.
func (uow *UnitOfWork) Commit(_ context.Context) error {
	if uow.staged == nil {
		return ErrNoActiveTransaction
	}

	uow.store.apply(uow.staged)
	uow.finish()
	return nil
}

// Rollback drops the staged writes and releases the held job locks.
func (uow *UnitOfWork) Rollback(_ context.Context) error {
	if uow.staged == nil {
		return ErrNoActiveTransaction
	}

	uow.finish()
	return nil
}

func (uow *UnitOfWork) JobRepository() ports.JobRepository {
	return &jobRepository{uow: uow}
}

func (uow *UnitOfWork) OfferRepository() ports.OfferRepository {
	return &offerRepository{uow: uow}
}

func (uow *UnitOfWork) DriverRepository() ports.DriverRepository {
	return &driverRepository{uow: uow}
}

func (uow *UnitOfWork) finish() {
	for _, ch := range uow.held {
		<-ch
	}
	uow.held = nil
	uow.staged = nil
}

// lock takes the job's semaphore unless this unit already holds it.
func (uow *UnitOfWork) lock(ctx context.Context, id kernel.UUID) error {
	if _, ok := uow.held[id]; ok {
		return nil
	}

	ch := uow.store.lockFor(id)

	var timeout <-chan time.Time
	if uow.store.lockTimeout > 0 {
		timer := time.NewTimer(uow.store.lockTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case ch <- struct{}{}:
		uow.held[id] = ch
		return nil
	case <-timeout:
		return errs.NewLockTimeoutError("job", id.String())
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (uow *UnitOfWork) active() bool {
	return uow.staged != nil
}
