package commands

import (
	"errors"

	"relocation/internal/core/domain/model/job"
	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/pkg/errs"
	"relocation/internal/pkg/guard"
)

var ErrCreateJobCommandIsNotConstructed = errors.New(
	"CreateJobCommand must be created via NewCreateJobCommand constructor",
)

// PlaceInput is an address with optional coordinates as received from intake.
type PlaceInput struct {
	Address string
	Lat     *float64
	Lon     *float64
}

func (p PlaceInput) toPlace(param string) (kernel.Place, error) {
	if (p.Lat == nil) != (p.Lon == nil) {
		return kernel.Place{}, errs.NewValueIsRequiredError(param + " coordinates need both lat and lon")
	}

	var point *kernel.GeoPoint
	if p.Lat != nil {
		gp, err := kernel.NewGeoPoint(*p.Lat, *p.Lon)
		if err != nil {
			return kernel.Place{}, err
		}
		point = &gp
	}
	return kernel.NewPlace(p.Address, point)
}

// JobInput carries the intake attributes of a new job.
type JobInput struct {
	Date            string
	Time            string
	Origin          PlaceInput
	Destination     PlaceInput
	VehicleMake     string
	VehicleModel    string
	VehiclePlate    string
	Price           float64
	DistanceKm      float64
	PaymentRequired bool
}

// CreateJobCommand stands in for the intake pipeline: it registers a job for a
// client, either ready for dispatch or awaiting payment.
type CreateJobCommand struct { //nolint:recvcheck //using for validation
	jobID           kernel.UUID
	clientID        kernel.UUID
	details         job.Details
	paymentRequired bool

	guard guard.ConstructorGuard
}

func NewCreateJobCommand(jobID, clientID kernel.UUID, in JobInput) (CreateJobCommand, error) {
	schedule, scheduleErr := kernel.NewSchedule(in.Date, in.Time)
	origin, originErr := in.Origin.toPlace("origin")
	destination, destinationErr := in.Destination.toPlace("destination")
	vehicle, vehicleErr := job.NewVehicle(in.VehicleMake, in.VehicleModel, in.VehiclePlate)

	if err := errors.Join(
		jobID.Validate(),
		clientID.Validate(),
		scheduleErr,
		originErr,
		destinationErr,
		vehicleErr,
	); err != nil {
		return CreateJobCommand{}, err
	}

	return CreateJobCommand{
		jobID:    jobID,
		clientID: clientID,
		details: job.Details{
			Schedule:    schedule,
			Origin:      origin,
			Destination: destination,
			Vehicle:     vehicle,
			Price:       in.Price,
			DistanceKm:  in.DistanceKm,
		},
		paymentRequired: in.PaymentRequired,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

func (c CreateJobCommand) Validate() error {
	return c.guard.Validate(ErrCreateJobCommandIsNotConstructed)
}

func (c CreateJobCommand) JobID() kernel.UUID {
	return c.jobID
}

func (c CreateJobCommand) ClientID() kernel.UUID {
	return c.clientID
}

func (c CreateJobCommand) Details() job.Details {
	return c.details
}

func (c CreateJobCommand) PaymentRequired() bool {
	return c.paymentRequired
}
