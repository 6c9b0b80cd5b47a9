package http

import (
	"encoding/json"
	"time"

	"relocation/internal/core/application/usecases/queries"
	"relocation/internal/core/domain/model/driver"
	"relocation/internal/core/domain/model/job"
	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/core/domain/model/offer"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type NewDriver struct {
	ID             string `json:"id,omitempty"`
	Name           string `json:"name"`
	EmploymentType string `json:"employmentType"`
}

type Driver struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	EmploymentType string `json:"employmentType"`
}

type Schedule struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type Place struct {
	Address string   `json:"address"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

type Vehicle struct {
	Make  string `json:"make"`
	Model string `json:"model"`
	Plate string `json:"plate,omitempty"`
}

type NewJob struct {
	ID              string   `json:"id,omitempty"`
	ClientID        string   `json:"clientId"`
	Schedule        Schedule `json:"schedule"`
	Origin          Place    `json:"origin"`
	Destination     Place    `json:"destination"`
	Vehicle         Vehicle  `json:"vehicle"`
	Price           float64  `json:"price"`
	DistanceKm      float64  `json:"distanceKm"`
	PaymentRequired bool     `json:"paymentRequired"`
}

type Reschedule struct {
	Previous  Schedule  `json:"previous"`
	Next      Schedule  `json:"next"`
	ChangedAt time.Time `json:"changedAt"`
	ChangedBy string    `json:"changedBy"`
}

type CancellationRecord struct {
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
	ByID   string    `json:"byId"`
	ByRole string    `json:"byRole"`
}

type Job struct {
	ID                   string              `json:"id"`
	ClientID             string              `json:"clientId"`
	DriverID             *string             `json:"driverId,omitempty"`
	Status               string              `json:"status"`
	Schedule             Schedule            `json:"schedule"`
	Origin               Place               `json:"origin"`
	Destination          Place               `json:"destination"`
	Vehicle              Vehicle             `json:"vehicle"`
	Price                float64             `json:"price"`
	DistanceKm           float64             `json:"distanceKm"`
	DriverFee            *float64            `json:"driverFee,omitempty"`
	StartedAt            *time.Time          `json:"startedAt,omitempty"`
	TripDurationSeconds  *float64            `json:"tripDurationSeconds,omitempty"`
	RouteTrace           json.RawMessage     `json:"routeTrace,omitempty"`
	PickupVerification   json.RawMessage     `json:"pickupVerification,omitempty"`
	DeliveryVerification json.RawMessage     `json:"deliveryVerification,omitempty"`
	Reschedules          []Reschedule        `json:"reschedules"`
	Cancellation         *CancellationRecord `json:"cancellation,omitempty"`
	CreatedAt            time.Time           `json:"createdAt"`
}

type Offer struct {
	ID          string     `json:"id"`
	DriverID    string     `json:"driverId"`
	Status      string     `json:"status"`
	OfferedAt   time.Time  `json:"offeredAt"`
	RespondedAt *time.Time `json:"respondedAt,omitempty"`
}

type OfferList struct {
	Offers []Offer `json:"offers"`
}

type JobView struct {
	Job    Job     `json:"job"`
	Offers []Offer `json:"offers"`
}

type NewOffers struct {
	DriverIDs []string `json:"driverIds"`
}

type Decision struct {
	Accept bool `json:"accept"`
}

type DecisionResult struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

type Verification struct {
	Verification json.RawMessage `json:"verification"`
}

type GeoPosition struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type FinishRequest struct {
	RouteTrace json.RawMessage `json:"routeTrace,omitempty"`
	Position   *GeoPosition    `json:"position,omitempty"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

func toDriver(d *driver.Driver) Driver {
	return Driver{
		ID:             d.ID().String(),
		Name:           d.Name(),
		EmploymentType: d.EmploymentType().String(),
	}
}

func toSchedule(s kernel.Schedule) Schedule {
	return Schedule{Date: s.Date(), Time: s.Time()}
}

func toPlace(p kernel.Place) Place {
	out := Place{Address: p.Address()}
	if point, ok := p.Coordinates(); ok {
		lat, lon := point.Lat(), point.Lon()
		out.Lat, out.Lon = &lat, &lon
	}
	return out
}

func toJob(s job.Snapshot) Job {
	out := Job{
		ID:                   s.ID.String(),
		ClientID:             s.ClientID.String(),
		Status:               s.Status.String(),
		Schedule:             toSchedule(s.Details.Schedule),
		Origin:               toPlace(s.Details.Origin),
		Destination:          toPlace(s.Details.Destination),
		Vehicle:              Vehicle{Make: s.Details.Vehicle.Make(), Model: s.Details.Vehicle.Model(), Plate: s.Details.Vehicle.Plate()},
		Price:                s.Details.Price,
		DistanceKm:           s.Details.DistanceKm,
		DriverFee:            s.DriverFee,
		StartedAt:            s.StartedAt,
		RouteTrace:           rawJSON(s.RouteTrace),
		PickupVerification:   rawJSON(s.PickupVerification),
		DeliveryVerification: rawJSON(s.DeliveryVerification),
		Reschedules:          make([]Reschedule, 0, len(s.Reschedules)),
		CreatedAt:            s.CreatedAt,
	}

	if s.DriverID != nil {
		id := s.DriverID.String()
		out.DriverID = &id
	}
	if s.TripDuration != nil {
		seconds := s.TripDuration.Seconds()
		out.TripDurationSeconds = &seconds
	}
	for _, r := range s.Reschedules {
		out.Reschedules = append(out.Reschedules, Reschedule{
			Previous:  toSchedule(r.Previous()),
			Next:      toSchedule(r.Next()),
			ChangedAt: r.ChangedAt(),
			ChangedBy: r.ChangedBy().String(),
		})
	}
	if c := s.Cancellation; c != nil {
		out.Cancellation = &CancellationRecord{
			Reason: c.Reason(),
			At:     c.At(),
			ByID:   c.By().ID().String(),
			ByRole: string(c.By().Role()),
		}
	}
	return out
}

func toOffer(o *offer.Offer) Offer {
	return Offer{
		ID:          o.ID().String(),
		DriverID:    o.DriverID().String(),
		Status:      o.Status().String(),
		OfferedAt:   o.OfferedAt(),
		RespondedAt: o.RespondedAt(),
	}
}

func toOfferView(o queries.OfferView) Offer {
	return Offer{
		ID:          o.ID.String(),
		DriverID:    o.DriverID.String(),
		Status:      o.Status.String(),
		OfferedAt:   o.OfferedAt,
		RespondedAt: o.RespondedAt,
	}
}

// rawJSON passes stored payloads through when they are JSON, which is all this
// adapter writes. Anything else is left out of the response.
func rawJSON(b []byte) json.RawMessage {
	if len(b) == 0 || !json.Valid(b) {
		return nil
	}
	return json.RawMessage(b)
}
