package http

import (
	"errors"
	"log/slog"
	"net/http"

	"relocation/internal/core/application/usecases/commands"
	"relocation/internal/core/application/usecases/queries"
	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"
)

// Handlers groups the use cases exposed over HTTP.
type Handlers struct {
	RegisterDriver commands.RegisterDriverCommandHandler
	CreateJob      commands.CreateJobCommandHandler
	ConfirmPayment commands.ConfirmPaymentCommandHandler
	CreateOffers   commands.CreateOffersCommandHandler
	DecideOffer    commands.DecideOfferCommandHandler
	RescheduleJob  commands.RescheduleJobCommandHandler
	VerifyPickup   commands.VerifyPickupCommandHandler
	StartTrip      commands.StartTripCommandHandler
	RequestFinish  commands.RequestFinishCommandHandler
	VerifyDelivery commands.VerifyDeliveryCommandHandler
	CancelJob      commands.CancelJobCommandHandler
	GetJob         queries.GetJobQueryHandler
}

// Server translates HTTP requests into commands and queries and their results back
// into JSON.
type Server struct {
	h      Handlers
	logger *slog.Logger
}

func NewServer(h Handlers, logger *slog.Logger) *Server {
	return &Server{h: h, logger: logger.With("component", "http_server")}
}

// RegisterDriver handles POST /api/v1/drivers.
func (s *Server) RegisterDriver(c echo.Context) error {
	var body NewDriver
	if err := c.Bind(&body); err != nil {
		return s.badRequest(c, "Invalid request body")
	}

	id, err := optionalID(body.ID)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewRegisterDriverCommand(id, body.Name, body.EmploymentType)
	if err != nil {
		return s.fail(c, err)
	}
	if err := s.h.RegisterDriver.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusCreated, Driver{
		ID:             cmd.DriverID().String(),
		Name:           cmd.Name(),
		EmploymentType: cmd.EmploymentType().String(),
	})
}

// CreateJob handles POST /api/v1/jobs.
func (s *Server) CreateJob(c echo.Context) error {
	var body NewJob
	if err := c.Bind(&body); err != nil {
		return s.badRequest(c, "Invalid request body")
	}

	id, err := optionalID(body.ID)
	if err != nil {
		return s.fail(c, err)
	}
	clientID, err := kernel.UUIDFromString(body.ClientID)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewCreateJobCommand(id, clientID, commands.JobInput{
		Date:            body.Schedule.Date,
		Time:            body.Schedule.Time,
		Origin:          commands.PlaceInput{Address: body.Origin.Address, Lat: body.Origin.Lat, Lon: body.Origin.Lon},
		Destination:     commands.PlaceInput{Address: body.Destination.Address, Lat: body.Destination.Lat, Lon: body.Destination.Lon},
		VehicleMake:     body.Vehicle.Make,
		VehicleModel:    body.Vehicle.Model,
		VehiclePlate:    body.Vehicle.Plate,
		Price:           body.Price,
		DistanceKm:      body.DistanceKm,
		PaymentRequired: body.PaymentRequired,
	})
	if err != nil {
		return s.fail(c, err)
	}

	snapshot, err := s.h.CreateJob.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, toJob(snapshot))
}

// GetJob handles GET /api/v1/jobs/{jobId}.
func (s *Server) GetJob(c echo.Context) error {
	jobID, err := jobIDParam(c)
	if err != nil {
		return s.fail(c, err)
	}

	q, err := queries.NewGetJobQuery(jobID)
	if err != nil {
		return s.fail(c, err)
	}
	view, err := s.h.GetJob.Handle(c.Request().Context(), q)
	if err != nil {
		return s.fail(c, err)
	}

	resp := JobView{Job: toJob(view.Job), Offers: make([]Offer, 0, len(view.Offers))}
	for _, o := range view.Offers {
		resp.Offers = append(resp.Offers, toOfferView(o))
	}
	return c.JSON(http.StatusOK, resp)
}

// ConfirmPayment handles POST /api/v1/jobs/{jobId}/payment.
func (s *Server) ConfirmPayment(c echo.Context) error {
	jobID, err := jobIDParam(c)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewConfirmPaymentCommand(jobID)
	if err != nil {
		return s.fail(c, err)
	}
	snapshot, err := s.h.ConfirmPayment.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toJob(snapshot))
}

// CreateOffers handles POST /api/v1/jobs/{jobId}/offers.
func (s *Server) CreateOffers(c echo.Context) error {
	jobID, err := jobIDParam(c)
	if err != nil {
		return s.fail(c, err)
	}

	var body NewOffers
	if err := c.Bind(&body); err != nil {
		return s.badRequest(c, "Invalid request body")
	}
	driverIDs, err := kernel.UUIDsFromStrings(body.DriverIDs)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewCreateOffersCommand(jobID, driverIDs)
	if err != nil {
		return s.fail(c, err)
	}
	created, err := s.h.CreateOffers.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}

	resp := OfferList{Offers: make([]Offer, 0, len(created))}
	for _, o := range created {
		resp.Offers = append(resp.Offers, toOffer(o))
	}
	return c.JSON(http.StatusCreated, resp)
}

// DecideOffer handles POST /api/v1/jobs/{jobId}/decision. The deciding driver is the
// actor.
func (s *Server) DecideOffer(c echo.Context) error {
	jobID, err := jobIDParam(c)
	if err != nil {
		return s.fail(c, err)
	}
	actor, err := actorFrom(c)
	if err != nil {
		return s.fail(c, err)
	}
	if actor.Role() != kernel.RoleDriver {
		return c.JSON(http.StatusForbidden, Error{Code: http.StatusForbidden, Message: "Only drivers decide offers"})
	}

	var body Decision
	if err := c.Bind(&body); err != nil {
		return s.badRequest(c, "Invalid request body")
	}

	cmd, err := commands.NewDecideOfferCommand(actor.ID(), jobID, body.Accept)
	if err != nil {
		return s.fail(c, err)
	}
	result, err := s.h.DecideOffer.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, DecisionResult{Accepted: result.Accepted, Reason: result.Reason})
}

// RescheduleJob handles POST /api/v1/jobs/{jobId}/reschedule.
func (s *Server) RescheduleJob(c echo.Context) error {
	jobID, err := jobIDParam(c)
	if err != nil {
		return s.fail(c, err)
	}
	actor, err := actorFrom(c)
	if err != nil {
		return s.fail(c, err)
	}

	var body Schedule
	if err := c.Bind(&body); err != nil {
		return s.badRequest(c, "Invalid request body")
	}

	cmd, err := commands.NewRescheduleJobCommand(jobID, body.Date, body.Time, actor)
	if err != nil {
		return s.fail(c, err)
	}
	snapshot, err := s.h.RescheduleJob.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toJob(snapshot))
}

// VerifyPickup handles POST /api/v1/jobs/{jobId}/pickup.
func (s *Server) VerifyPickup(c echo.Context) error {
	jobID, err := jobIDParam(c)
	if err != nil {
		return s.fail(c, err)
	}

	var body Verification
	if err := c.Bind(&body); err != nil {
		return s.badRequest(c, "Invalid request body")
	}

	cmd, err := commands.NewVerifyPickupCommand(jobID, body.Verification)
	if err != nil {
		return s.fail(c, err)
	}
	snapshot, err := s.h.VerifyPickup.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toJob(snapshot))
}

// StartTrip handles POST /api/v1/jobs/{jobId}/start.
func (s *Server) StartTrip(c echo.Context) error {
	jobID, err := jobIDParam(c)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewStartTripCommand(jobID)
	if err != nil {
		return s.fail(c, err)
	}
	snapshot, err := s.h.StartTrip.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toJob(snapshot))
}

// RequestFinish handles POST /api/v1/jobs/{jobId}/finish-request. The body is optional.
func (s *Server) RequestFinish(c echo.Context) error {
	jobID, err := jobIDParam(c)
	if err != nil {
		return s.fail(c, err)
	}

	var body FinishRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&body); err != nil {
			return s.badRequest(c, "Invalid request body")
		}
	}

	var lat, lon *float64
	if body.Position != nil {
		lat, lon = &body.Position.Lat, &body.Position.Lon
	}

	cmd, err := commands.NewRequestFinishCommand(jobID, body.RouteTrace, lat, lon)
	if err != nil {
		return s.fail(c, err)
	}
	snapshot, err := s.h.RequestFinish.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toJob(snapshot))
}

// VerifyDelivery handles POST /api/v1/jobs/{jobId}/delivery.
func (s *Server) VerifyDelivery(c echo.Context) error {
	jobID, err := jobIDParam(c)
	if err != nil {
		return s.fail(c, err)
	}

	var body Verification
	if err := c.Bind(&body); err != nil {
		return s.badRequest(c, "Invalid request body")
	}

	cmd, err := commands.NewVerifyDeliveryCommand(jobID, body.Verification)
	if err != nil {
		return s.fail(c, err)
	}
	snapshot, err := s.h.VerifyDelivery.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toJob(snapshot))
}

// CancelJob handles POST /api/v1/jobs/{jobId}/cancel.
func (s *Server) CancelJob(c echo.Context) error {
	jobID, err := jobIDParam(c)
	if err != nil {
		return s.fail(c, err)
	}
	actor, err := actorFrom(c)
	if err != nil {
		return s.fail(c, err)
	}

	var body CancelRequest
	if err := c.Bind(&body); err != nil {
		return s.badRequest(c, "Invalid request body")
	}

	cmd, err := commands.NewCancelJobCommand(jobID, body.Reason, actor)
	if err != nil {
		return s.fail(c, err)
	}
	snapshot, err := s.h.CancelJob.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toJob(snapshot))
}

func (s *Server) badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: message})
}

func jobIDParam(c echo.Context) (kernel.UUID, error) {
	var raw string
	err := runtime.BindStyledParameterWithOptions("simple", "jobId", c.Param("jobId"), &raw,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause("job id", err)
	}
	return kernel.UUIDFromString(raw)
}

func actorFrom(c echo.Context) (kernel.Actor, error) {
	id, err := kernel.UUIDFromString(c.Request().Header.Get(HeaderActorID))
	if err != nil {
		return kernel.Actor{}, errors.Join(ErrActorRequired, err)
	}
	actor, err := kernel.NewActor(id, kernel.Role(c.Request().Header.Get(HeaderActorRole)))
	if err != nil {
		return kernel.Actor{}, errors.Join(ErrActorRequired, err)
	}
	return actor, nil
}

func optionalID(raw string) (kernel.UUID, error) {
	if raw == "" {
		return kernel.NewUUID(), nil
	}
	return kernel.UUIDFromString(raw)
}
