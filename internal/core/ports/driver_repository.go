package ports

import (
	"context"

	"relocation/internal/core/domain/model/driver"
	"relocation/internal/core/domain/model/kernel"
)

// DriverRepository defines the persistence contract for drivers.
type DriverRepository interface {
	Add(ctx context.Context, aggregate *driver.Driver) error

	// Get returns the driver or an ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error)
}
