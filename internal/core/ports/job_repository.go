// Package ports defines the interfaces between the relocation core and its
// infrastructure: persistence of jobs, offers and drivers, the transaction boundary,
// and the best-effort notification and email collaborators.
package ports

import (
	"context"

	"relocation/internal/core/domain/model/job"
	"relocation/internal/core/domain/model/kernel"
)

// JobRepository defines the persistence contract for job aggregates, including their
// reschedule history.
type JobRepository interface {
	// Add persists a new job.
	Add(ctx context.Context, aggregate *job.Job) error

	// Update persists changes to an existing job and appends new reschedule records.
	Update(ctx context.Context, aggregate *job.Job) error

	// Get reads a job without locking it. Returns an ObjectNotFoundError when absent.
	Get(ctx context.Context, id kernel.UUID) (*job.Job, error)

	// GetForUpdate reads a job and takes its exclusive row lock for the rest of the
	// current transaction. This lock serializes every write to the job and to its
	// offers, across processes.
	//
	// The wait for the lock is bounded. When it is exceeded the call fails with a
	// LockTimeoutError, which callers may retry. Must be called inside a transaction.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*job.Job, error)
}
