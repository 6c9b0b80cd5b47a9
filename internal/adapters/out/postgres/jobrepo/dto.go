// Package jobrepo persists job aggregates and their reschedule history with GORM.
package jobrepo

import (
	"errors"
	"time"

	"relocation/internal/core/domain/model/job"
	"relocation/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// JobDTO is the jobs table row. Status is stored by name.
type JobDTO struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ClientID             uuid.UUID  `gorm:"type:uuid;not null;index"`
	DriverID             *uuid.UUID `gorm:"type:uuid;index"`
	Status               string     `gorm:"type:varchar(32);not null;index"`
	ScheduleDate         string     `gorm:"type:varchar(10);not null"`
	ScheduleTime         string     `gorm:"type:varchar(5);not null"`
	Origin               PlaceDTO   `gorm:"embedded;embeddedPrefix:origin_"`
	Destination          PlaceDTO   `gorm:"embedded;embeddedPrefix:destination_"`
	Vehicle              VehicleDTO `gorm:"embedded;embeddedPrefix:vehicle_"`
	Price                float64    `gorm:"type:numeric(12,2);not null"`
	DistanceKm           float64    `gorm:"not null"`
	DriverFee            *float64   `gorm:"type:numeric(12,2)"`
	StartedAt            *time.Time
	TripDurationMs       *int64
	RouteTrace           []byte `gorm:"type:bytea"`
	PickupVerification   []byte `gorm:"type:bytea"`
	DeliveryVerification []byte `gorm:"type:bytea"`
	CancellationReason   *string
	CancelledAt          *time.Time
	CancelledByID        *uuid.UUID `gorm:"type:uuid"`
	CancelledByRole      *string    `gorm:"type:varchar(16)"`
	CreatedAt            time.Time  `gorm:"not null"`

	Reschedules []RescheduleDTO `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
}

func (JobDTO) TableName() string {
	return "jobs"
}

// PlaceDTO is an address with optional coordinates, embedded twice in the jobs table.
type PlaceDTO struct {
	Address string `gorm:"type:varchar(512);not null"`
	Lat     *float64
	Lon     *float64
}

type VehicleDTO struct {
	Make  string `gorm:"type:varchar(128);not null"`
	Model string `gorm:"type:varchar(128);not null"`
	Plate string `gorm:"type:varchar(32)"`
}

// RescheduleDTO is one row of the append-only reschedule history. Seq is the position
// in the history and makes re-inserting an existing record a no-op.
type RescheduleDTO struct {
	JobID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq          int       `gorm:"primaryKey;autoIncrement:false"`
	PreviousDate string    `gorm:"type:varchar(10);not null"`
	PreviousTime string    `gorm:"type:varchar(5);not null"`
	NextDate     string    `gorm:"type:varchar(10);not null"`
	NextTime     string    `gorm:"type:varchar(5);not null"`
	ChangedAt    time.Time `gorm:"not null"`
	ChangedBy    uuid.UUID `gorm:"type:uuid;not null"`
}

func (RescheduleDTO) TableName() string {
	return "job_reschedules"
}

func fromDomain(j *job.Job) JobDTO {
	s := j.Snapshot()

	dto := JobDTO{
		ID:                   s.ID.Bytes(),
		ClientID:             s.ClientID.Bytes(),
		Status:               s.Status.String(),
		ScheduleDate:         s.Details.Schedule.Date(),
		ScheduleTime:         s.Details.Schedule.Time(),
		Origin:               placeFromDomain(s.Details.Origin),
		Destination:          placeFromDomain(s.Details.Destination),
		Vehicle:              VehicleDTO{Make: s.Details.Vehicle.Make(), Model: s.Details.Vehicle.Model(), Plate: s.Details.Vehicle.Plate()},
		Price:                s.Details.Price,
		DistanceKm:           s.Details.DistanceKm,
		DriverFee:            s.DriverFee,
		StartedAt:            s.StartedAt,
		RouteTrace:           s.RouteTrace,
		PickupVerification:   s.PickupVerification,
		DeliveryVerification: s.DeliveryVerification,
		CreatedAt:            s.CreatedAt,
	}

	if s.DriverID != nil {
		raw := s.DriverID.Bytes()
		dto.DriverID = &raw
	}
	if s.TripDuration != nil {
		ms := s.TripDuration.Milliseconds()
		dto.TripDurationMs = &ms
	}
	if c := s.Cancellation; c != nil {
		reason, at := c.Reason(), c.At()
		by, role := c.By().ID().Bytes(), string(c.By().Role())
		dto.CancellationReason = &reason
		dto.CancelledAt = &at
		dto.CancelledByID = &by
		dto.CancelledByRole = &role
	}

	dto.Reschedules = make([]RescheduleDTO, 0, len(s.Reschedules))
	for i, r := range s.Reschedules {
		dto.Reschedules = append(dto.Reschedules, RescheduleDTO{
			JobID:        dto.ID,
			Seq:          i,
			PreviousDate: r.Previous().Date(),
			PreviousTime: r.Previous().Time(),
			NextDate:     r.Next().Date(),
			NextTime:     r.Next().Time(),
			ChangedAt:    r.ChangedAt(),
			ChangedBy:    r.ChangedBy().Bytes(),
		})
	}

	return dto
}

func placeFromDomain(p kernel.Place) PlaceDTO {
	dto := PlaceDTO{Address: p.Address()}
	if point, ok := p.Coordinates(); ok {
		lat, lon := point.Lat(), point.Lon()
		dto.Lat, dto.Lon = &lat, &lon
	}
	return dto
}

func toDomain(dto JobDTO) (*job.Job, error) {
	id, idErr := kernel.UUIDFromBytes(dto.ID[:])
	clientID, clientErr := kernel.UUIDFromBytes(dto.ClientID[:])
	status, statusErr := job.ParseStatus(dto.Status)
	schedule, scheduleErr := kernel.NewSchedule(dto.ScheduleDate, dto.ScheduleTime)
	origin, originErr := placeToDomain(dto.Origin)
	destination, destinationErr := placeToDomain(dto.Destination)
	vehicle, vehicleErr := job.NewVehicle(dto.Vehicle.Make, dto.Vehicle.Model, dto.Vehicle.Plate)
	if err := errors.Join(idErr, clientErr, statusErr, scheduleErr, originErr, destinationErr, vehicleErr); err != nil {
		return nil, err
	}

	s := job.Snapshot{
		ID:       id,
		ClientID: clientID,
		Status:   status,
		Details: job.Details{
			Schedule:    schedule,
			Origin:      origin,
			Destination: destination,
			Vehicle:     vehicle,
			Price:       dto.Price,
			DistanceKm:  dto.DistanceKm,
		},
		DriverFee:            dto.DriverFee,
		StartedAt:            utc(dto.StartedAt),
		RouteTrace:           dto.RouteTrace,
		PickupVerification:   dto.PickupVerification,
		DeliveryVerification: dto.DeliveryVerification,
		CreatedAt:            dto.CreatedAt.UTC(),
	}

	if dto.DriverID != nil {
		driverID, err := kernel.UUIDFromBytes((*dto.DriverID)[:])
		if err != nil {
			return nil, err
		}
		s.DriverID = &driverID
	}
	if dto.TripDurationMs != nil {
		d := time.Duration(*dto.TripDurationMs) * time.Millisecond
		s.TripDuration = &d
	}
	if dto.CancellationReason != nil && dto.CancelledAt != nil && dto.CancelledByID != nil && dto.CancelledByRole != nil {
		byID, err := kernel.UUIDFromBytes((*dto.CancelledByID)[:])
		if err != nil {
			return nil, err
		}
		by, err := kernel.NewActor(byID, kernel.Role(*dto.CancelledByRole))
		if err != nil {
			return nil, err
		}
		c := job.RestoreCancellation(*dto.CancellationReason, dto.CancelledAt.UTC(), by)
		s.Cancellation = &c
	}

	for _, r := range dto.Reschedules {
		record, err := rescheduleToDomain(r)
		if err != nil {
			return nil, err
		}
		s.Reschedules = append(s.Reschedules, record)
	}

	return job.RestoreJob(s)
}

func placeToDomain(dto PlaceDTO) (kernel.Place, error) {
	if dto.Lat == nil || dto.Lon == nil {
		return kernel.NewPlace(dto.Address, nil)
	}

	point, err := kernel.NewGeoPoint(*dto.Lat, *dto.Lon)
	if err != nil {
		return kernel.Place{}, err
	}
	return kernel.NewPlace(dto.Address, &point)
}

func rescheduleToDomain(dto RescheduleDTO) (job.RescheduleRecord, error) {
	previous, previousErr := kernel.NewSchedule(dto.PreviousDate, dto.PreviousTime)
	next, nextErr := kernel.NewSchedule(dto.NextDate, dto.NextTime)
	changedBy, changedByErr := kernel.UUIDFromBytes(dto.ChangedBy[:])
	if err := errors.Join(previousErr, nextErr, changedByErr); err != nil {
		return job.RescheduleRecord{}, err
	}
	return job.RestoreRescheduleRecord(previous, next, dto.ChangedAt.UTC(), changedBy), nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
