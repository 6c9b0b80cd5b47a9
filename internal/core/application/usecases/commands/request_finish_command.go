package commands

import (
	"errors"
	"slices"

	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/pkg/errs"
	"relocation/internal/pkg/guard"
)

var ErrRequestFinishCommandIsNotConstructed = errors.New(
	"RequestFinishCommand must be created via NewRequestFinishCommand constructor",
)

// RequestFinishCommand ends the driving part of a trip. The route trace is opaque and
// optional; so is the driver's current position, which enables the destination geofence.
type RequestFinishCommand struct {
	jobID      kernel.UUID
	routeTrace []byte
	position   *kernel.GeoPoint
	guard      guard.ConstructorGuard
}

func NewRequestFinishCommand(jobID kernel.UUID, routeTrace []byte, lat, lon *float64) (RequestFinishCommand, error) {
	var positionErr error
	var position *kernel.GeoPoint
	switch {
	case lat == nil && lon == nil:
	case lat == nil || lon == nil:
		positionErr = errs.NewValueIsRequiredError("position needs both lat and lon")
	default:
		p, err := kernel.NewGeoPoint(*lat, *lon)
		positionErr = err
		position = &p
	}

	if err := errors.Join(jobID.Validate(), positionErr); err != nil {
		return RequestFinishCommand{}, err
	}

	return RequestFinishCommand{
		jobID:      jobID,
		routeTrace: slices.Clone(routeTrace),
		position:   position,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c RequestFinishCommand) Validate() error {
	return c.guard.Validate(ErrRequestFinishCommandIsNotConstructed)
}

func (c RequestFinishCommand) JobID() kernel.UUID {
	return c.jobID
}

func (c RequestFinishCommand) RouteTrace() []byte {
	return slices.Clone(c.routeTrace)
}

// Position returns the driver's reported position, or nil when none was given.
func (c RequestFinishCommand) Position() *kernel.GeoPoint {
	return c.position
}
