// Package offerrepo persists offers with GORM. The unique (job_id, driver_id) index
// keeps at most one offer per driver and job.
package offerrepo

import (
	"time"

	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/core/domain/model/offer"

	"github.com/google/uuid"
)

type OfferDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	JobID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_offers_job_driver,priority:1"`
	DriverID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_offers_job_driver,priority:2;index"`
	Status      string    `gorm:"type:varchar(16);not null;index"`
	OfferedAt   time.Time `gorm:"not null;index"`
	RespondedAt *time.Time
}

func (OfferDTO) TableName() string {
	return "offers"
}

func fromDomain(o *offer.Offer) OfferDTO {
	return OfferDTO{
		ID:          o.ID().Bytes(),
		JobID:       o.JobID().Bytes(),
		DriverID:    o.DriverID().Bytes(),
		Status:      o.Status().String(),
		OfferedAt:   o.OfferedAt(),
		RespondedAt: o.RespondedAt(),
	}
}

func toDomain(dto OfferDTO) (*offer.Offer, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	jobID, err := kernel.UUIDFromBytes(dto.JobID[:])
	if err != nil {
		return nil, err
	}

	driverID, err := kernel.UUIDFromBytes(dto.DriverID[:])
	if err != nil {
		return nil, err
	}

	status, err := offer.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	var respondedAt *time.Time
	if dto.RespondedAt != nil {
		t := dto.RespondedAt.UTC()
		respondedAt = &t
	}

	return offer.RestoreOffer(id, jobID, driverID, status, dto.OfferedAt.UTC(), respondedAt)
}
