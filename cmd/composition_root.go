package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	httpadapter "relocation/internal/adapters/in/http"
	"relocation/internal/adapters/out/amqpbus"
	"relocation/internal/adapters/out/kafkamail"
	"relocation/internal/adapters/out/memory"
	"relocation/internal/adapters/out/pgrelay"
	"relocation/internal/adapters/out/postgres"
	"relocation/internal/adapters/out/wshub"
	"relocation/internal/core/application/notifications"
	"relocation/internal/core/application/usecases/commands"
	"relocation/internal/core/application/usecases/queries"
	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/core/domain/services"
	"relocation/internal/core/ports"
	"relocation/internal/jobs"
	"relocation/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

// CompositionRoot owns every long-lived collaborator of the process. gormDB is nil
// when the service runs on the in-memory store.
type CompositionRoot struct {
	cfg        Config
	logger     *slog.Logger
	clock      kernel.Clock
	gormDB     *gorm.DB
	uowFactory ports.UnitOfWorkFactory
	registry   *prometheus.Registry
	metrics    *metrics.Metrics
	hub        *wshub.Hub
	notifier   ports.Notifier
	mailer     ports.Mailer
	dispatcher *notifications.Dispatcher
	relay      *pgrelay.Relay
	closers    []func() error
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	c := &CompositionRoot{
		cfg:      cfg,
		logger:   logger,
		clock:    kernel.SystemClock{},
		gormDB:   gormDB,
		registry: prometheus.NewRegistry(),
	}

	c.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.metrics = metrics.New(c.registry)

	switch cfg.Storage {
	case StorageMemory:
		c.uowFactory = memory.NewStore(cfg.LockTimeout)
	default:
		if gormDB == nil {
			return nil, errors.New("postgres storage requires a database connection")
		}
		c.uowFactory = postgres.NewGormUnitOfWorkFactory(gormDB, cfg.LockTimeout)
	}

	c.hub = wshub.NewHub(logger)
	if err := c.wireNotifier(); err != nil {
		return nil, err
	}
	c.wireMailer()
	c.dispatcher = notifications.NewDispatcher(c.notifier, c.mailer, c.metrics, logger, cfg.NotifyTimeout)

	return c, nil
}

func (c *CompositionRoot) wireNotifier() error {
	switch c.cfg.Notifier {
	case NotifierPG:
		sqlDB, err := c.gormDB.DB()
		if err != nil {
			return fmt.Errorf("pg notifier: %w", err)
		}
		c.notifier = pgrelay.NewPublisher(sqlDB, c.cfg.PGNotifyChannel)
		c.relay = pgrelay.NewRelay(c.cfg.DSN(), c.cfg.PGNotifyChannel, c.hub, c.logger)
	case NotifierAMQP:
		publisher, err := amqpbus.Dial(c.cfg.AMQPURL, c.cfg.AMQPExchange)
		if err != nil {
			return fmt.Errorf("amqp notifier: %w", err)
		}
		c.notifier = publisher
		c.closers = append(c.closers, publisher.Close)
	default:
		c.notifier = c.hub
	}
	return nil
}

func (c *CompositionRoot) wireMailer() {
	if len(c.cfg.KafkaBrokers) == 0 {
		c.mailer = notifications.NewLogMailer(c.logger)
		return
	}
	mailer := kafkamail.New(c.cfg.KafkaBrokers, c.cfg.KafkaEmailTopic)
	c.mailer = mailer
	c.closers = append(c.closers, mailer.Close)
}

func (c *CompositionRoot) stateGuard() services.StateGuard {
	return services.NewStateGuard(c.cfg.ScheduleLocation)
}

func (c *CompositionRoot) jobUoWFactory() commands.JobUoWFactory {
	return FuncJobUoWFactory(func() commands.JobUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) driverUoWFactory() commands.DriverUoWFactory {
	return FuncDriverUoWFactory(func() commands.DriverUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) crossUoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateRegisterDriverCommandHandler() commands.RegisterDriverCommandHandler {
	return commands.NewRegisterDriverCommandHandler(c.driverUoWFactory())
}

func (c *CompositionRoot) CreateCreateJobCommandHandler() commands.CreateJobCommandHandler {
	return commands.NewCreateJobCommandHandler(c.jobUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateConfirmPaymentCommandHandler() commands.ConfirmPaymentCommandHandler {
	return commands.NewConfirmPaymentCommandHandler(c.jobUoWFactory(), c.stateGuard(), c.clock, c.dispatcher, c.metrics)
}

func (c *CompositionRoot) CreateCreateOffersCommandHandler() commands.CreateOffersCommandHandler {
	return commands.NewCreateOffersCommandHandler(c.crossUoWFactory(), c.clock, c.dispatcher, c.metrics)
}

func (c *CompositionRoot) CreateDecideOfferCommandHandler() commands.DecideOfferCommandHandler {
	resolver := services.NewOfferResolver(services.NewCompensationCalculator())
	return commands.NewDecideOfferCommandHandler(c.crossUoWFactory(), resolver, c.clock, c.dispatcher, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateRescheduleJobCommandHandler() commands.RescheduleJobCommandHandler {
	return commands.NewRescheduleJobCommandHandler(c.jobUoWFactory(), c.stateGuard(), c.clock, c.dispatcher, c.metrics)
}

func (c *CompositionRoot) CreateVerifyPickupCommandHandler() commands.VerifyPickupCommandHandler {
	return commands.NewVerifyPickupCommandHandler(c.jobUoWFactory(), c.stateGuard(), c.clock, c.dispatcher, c.metrics)
}

func (c *CompositionRoot) CreateStartTripCommandHandler() commands.StartTripCommandHandler {
	return commands.NewStartTripCommandHandler(c.jobUoWFactory(), c.stateGuard(), c.clock, c.dispatcher, c.metrics)
}

func (c *CompositionRoot) CreateRequestFinishCommandHandler() commands.RequestFinishCommandHandler {
	return commands.NewRequestFinishCommandHandler(c.jobUoWFactory(), c.stateGuard(), c.clock, c.dispatcher, c.metrics)
}

func (c *CompositionRoot) CreateVerifyDeliveryCommandHandler() commands.VerifyDeliveryCommandHandler {
	return commands.NewVerifyDeliveryCommandHandler(c.jobUoWFactory(), c.stateGuard(), c.clock, c.dispatcher, c.metrics)
}

func (c *CompositionRoot) CreateCancelJobCommandHandler() commands.CancelJobCommandHandler {
	return commands.NewCancelJobCommandHandler(c.crossUoWFactory(), c.stateGuard(), c.clock, c.dispatcher, c.metrics)
}

func (c *CompositionRoot) CreateExpireStaleOffersCommandHandler() commands.ExpireStaleOffersCommandHandler {
	return commands.NewExpireStaleOffersCommandHandler(c.crossUoWFactory(), c.clock, c.dispatcher, c.metrics)
}

func (c *CompositionRoot) CreateGetJobQueryHandler() queries.GetJobQueryHandler {
	return queries.NewGetJobQueryHandler(c.uowFactory)
}

// Router builds the HTTP entry point with every handler wired.
func (c *CompositionRoot) Router() (*echo.Echo, error) {
	server := httpadapter.NewServer(httpadapter.Handlers{
		RegisterDriver: c.CreateRegisterDriverCommandHandler(),
		CreateJob:      c.CreateCreateJobCommandHandler(),
		ConfirmPayment: c.CreateConfirmPaymentCommandHandler(),
		CreateOffers:   c.CreateCreateOffersCommandHandler(),
		DecideOffer:    c.CreateDecideOfferCommandHandler(),
		RescheduleJob:  c.CreateRescheduleJobCommandHandler(),
		VerifyPickup:   c.CreateVerifyPickupCommandHandler(),
		StartTrip:      c.CreateStartTripCommandHandler(),
		RequestFinish:  c.CreateRequestFinishCommandHandler(),
		VerifyDelivery: c.CreateVerifyDeliveryCommandHandler(),
		CancelJob:      c.CreateCancelJobCommandHandler(),
		GetJob:         c.CreateGetJobQueryHandler(),
	}, c.logger)

	return httpadapter.NewRouter(server, httpadapter.RouterOptions{
		Gatherer:  c.registry,
		WebSocket: c.hub,
		Logger:    c.logger,
	})
}

func (c *CompositionRoot) JobManager() *jobs.JobManager {
	expiry := jobs.NewOfferExpiryJob(
		c.CreateExpireStaleOffersCommandHandler(),
		c.cfg.OfferTTL,
		c.cfg.OfferSweepSchedule,
		c.cfg.ScheduleLocation,
		c.logger,
	)
	return jobs.NewJobManager(expiry)
}

// Relay returns the NOTIFY listener feeding this instance's web socket sessions, or
// nil when the pg notifier is not configured.
func (c *CompositionRoot) Relay() *pgrelay.Relay {
	return c.relay
}

// Shutdown waits for in-flight notifications and closes the outbound brokers.
func (c *CompositionRoot) Shutdown(ctx context.Context) error {
	var problems []error
	if err := c.dispatcher.Wait(ctx); err != nil {
		problems = append(problems, fmt.Errorf("notifications: %w", err))
	}
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil {
			problems = append(problems, err)
		}
	}
	return errors.Join(problems...)
}

type FuncJobUoWFactory func() commands.JobUoW

func (f FuncJobUoWFactory) Create() commands.JobUoW {
	return f()
}

type FuncDriverUoWFactory func() commands.DriverUoW

func (f FuncDriverUoWFactory) Create() commands.DriverUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
