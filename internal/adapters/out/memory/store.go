// Package memory provides a single-process implementation of the Unit of Work pattern.
//
// The Store keeps committed jobs, offers and drivers in maps guarded by one mutex. A
// UnitOfWork stages its writes and applies them atomically on Commit. Row locks are
// emulated with one semaphore per job: GetForUpdate waits for it at most lockTimeout
// and then fails with a LockTimeoutError, like the Postgres adapter does.
//
// Usage:
//
//	store := memory.NewStore(2 * time.Second)
//	uow := store.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() {
//	    _ = uow.Rollback(ctx)
//	}()
//
// The store is meant for local runs and tests. It does not coordinate across processes.
package memory

import (
	"errors"
	"sync"
	"time"

	"relocation/internal/core/domain/model/driver"
	"relocation/internal/core/domain/model/job"
	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/core/domain/model/offer"
	"relocation/internal/core/ports"
)

// ErrNoActiveTransaction is returned by Commit, Rollback and the write methods of the
// repositories when Begin was not called.
var ErrNoActiveTransaction = errors.New("no active transaction")

type offerRow struct {
	id          kernel.UUID
	jobID       kernel.UUID
	driverID    kernel.UUID
	status      offer.Status
	offeredAt   time.Time
	respondedAt *time.Time
}

type driverRow struct {
	id             kernel.UUID
	name           string
	employmentType driver.EmploymentType
}

type pairKey struct {
	jobID    kernel.UUID
	driverID kernel.UUID
}

// Store holds committed state and the per-job locks.
type Store struct {
	mu          sync.RWMutex
	jobs        map[kernel.UUID]job.Snapshot
	offers      map[kernel.UUID]offerRow
	offerIndex  map[pairKey]kernel.UUID
	drivers     map[kernel.UUID]driverRow
	lockTimeout time.Duration

	locksMu sync.Mutex
	locks   map[kernel.UUID]chan struct{}
}

// NewStore creates an empty store. A non-positive lockTimeout makes GetForUpdate wait
// until its context is done.
func NewStore(lockTimeout time.Duration) *Store {
	return &Store{
		jobs:        make(map[kernel.UUID]job.Snapshot),
		offers:      make(map[kernel.UUID]offerRow),
		offerIndex:  make(map[pairKey]kernel.UUID),
		drivers:     make(map[kernel.UUID]driverRow),
		lockTimeout: lockTimeout,
		locks:       make(map[kernel.UUID]chan struct{}),
	}
}

// Create implements ports.UnitOfWorkFactory.
func (s *Store) Create() ports.UnitOfWork {
	return &UnitOfWork{store: s}
}

func (s *Store) lockFor(id kernel.UUID) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	ch, ok := s.locks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[id] = ch
	}
	return ch
}

// apply writes a committed change set. Conflicting inserts are dropped.
func (s *Store) apply(c *changes) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, snapshot := range c.jobs {
		s.jobs[id] = snapshot
	}
	for id, row := range c.drivers {
		s.drivers[id] = row
	}
	for id, row := range c.offers {
		key := pairKey{jobID: row.jobID, driverID: row.driverID}
		if existing, ok := s.offerIndex[key]; ok && existing != id {
			continue
		}
		s.offers[id] = row
		s.offerIndex[key] = id
	}
}
