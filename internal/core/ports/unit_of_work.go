package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
// This ensures proper isolation between concurrent operations.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork represents a business transaction boundary.
// Client code must explicitly manage transaction lifecycle.
type UnitOfWork interface {
	// Begin starts a new transaction.
	Begin(ctx context.Context) error

	// Commit commits the current transaction. Row locks taken inside it are released.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction.
	// Returns error if no active transaction, so it is safe to defer after Commit.
	Rollback(ctx context.Context) error

	// JobRepository returns a repository bound to the current transaction.
	JobRepository() JobRepository

	// OfferRepository returns a repository bound to the current transaction.
	OfferRepository() OfferRepository

	// DriverRepository returns a repository bound to the current transaction.
	DriverRepository() DriverRepository
}
