package kernel

import (
	"strings"

	"relocation/internal/pkg/errs"
	"relocation/internal/pkg/guard"
)

var ErrPlaceIsNotConstructed = errs.NewValueIsRequiredError("place must be created via NewPlace")

// Place is an address with optional coordinates. Geofence checks are skipped
// for places without coordinates.
type Place struct {
	address string
	point   *GeoPoint
	guard   guard.ConstructorGuard
}

func NewPlace(address string, point *GeoPoint) (Place, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return Place{}, errs.NewValueIsRequiredError("address")
	}
	if point != nil {
		if err := point.Validate(); err != nil {
			return Place{}, err
		}
		p := *point
		point = &p
	}
	return Place{address: address, point: point, guard: guard.NewConstructorGuard()}, nil
}

func (p Place) Validate() error {
	return p.guard.Validate(ErrPlaceIsNotConstructed)
}

func (p Place) Address() string {
	return p.address
}

// Coordinates returns the place's coordinates and whether it has any.
func (p Place) Coordinates() (GeoPoint, bool) {
	if p.point == nil {
		return GeoPoint{}, false
	}
	return *p.point, true
}
