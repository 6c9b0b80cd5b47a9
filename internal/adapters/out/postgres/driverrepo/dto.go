// Package driverrepo persists the driver read model with GORM.
package driverrepo

import (
	"relocation/internal/core/domain/model/driver"
	"relocation/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

type DriverDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name           string    `gorm:"type:varchar(255);not null"`
	EmploymentType string    `gorm:"type:varchar(16);not null"`
}

func (DriverDTO) TableName() string {
	return "drivers"
}

func fromDomain(d *driver.Driver) DriverDTO {
	return DriverDTO{
		ID:             d.ID().Bytes(),
		Name:           d.Name(),
		EmploymentType: d.EmploymentType().String(),
	}
}

func toDomain(dto DriverDTO) (*driver.Driver, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	return driver.RestoreDriver(id, dto.Name, driver.EmploymentType(dto.EmploymentType))
}
