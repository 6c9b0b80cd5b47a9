package http

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// RouterOptions carries the collaborators mounted next to the API routes.
type RouterOptions struct {
	// Gatherer serves GET /metrics when set.
	Gatherer prometheus.Gatherer
	// WebSocket serves GET /ws when set.
	WebSocket http.Handler
	Logger    *slog.Logger
}

// NewRouter builds the echo instance with every route of the service. Requests under
// /api/v1 are validated against the embedded OpenAPI document first.
func NewRouter(s *Server, opts RouterOptions) (*echo.Echo, error) {
	doc, err := LoadSpec()
	if err != nil {
		return nil, err
	}
	validator, err := OpenAPIValidator(doc)
	if err != nil {
		return nil, err
	}
	registerSwaggerDoc()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	if opts.Logger != nil {
		e.Use(requestLogger(opts.Logger))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	if opts.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	if opts.WebSocket != nil {
		e.GET("/ws", echo.WrapHandler(opts.WebSocket))
	}

	api := e.Group("/api/v1", validator)
	api.POST("/drivers", s.RegisterDriver)
	api.POST("/jobs", s.CreateJob)
	api.GET("/jobs/:jobId", s.GetJob)
	api.POST("/jobs/:jobId/payment", s.ConfirmPayment)
	api.POST("/jobs/:jobId/offers", s.CreateOffers)
	api.POST("/jobs/:jobId/decision", s.DecideOffer)
	api.POST("/jobs/:jobId/reschedule", s.RescheduleJob)
	api.POST("/jobs/:jobId/pickup", s.VerifyPickup)
	api.POST("/jobs/:jobId/start", s.StartTrip)
	api.POST("/jobs/:jobId/finish-request", s.RequestFinish)
	api.POST("/jobs/:jobId/delivery", s.VerifyDelivery)
	api.POST("/jobs/:jobId/cancel", s.CancelJob)

	return e, nil
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	logger = logger.With("component", "http")
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				logger.WarnContext(c.Request().Context(), "Request", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.InfoContext(c.Request().Context(), "Request", attrs...)
			return nil
		},
	})
}
