package postgres_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	postgres_adapter "relocation/internal/adapters/out/postgres"
	"relocation/internal/core/application/usecases/commands"
	"relocation/internal/core/application/usecases/queries"
	"relocation/internal/core/domain/model/driver"
	"relocation/internal/core/domain/model/intent"
	"relocation/internal/core/domain/model/job"
	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/core/domain/model/offer"
	"relocation/internal/core/domain/services"
	"relocation/internal/core/ports"
	"relocation/internal/pkg/errs"
	"relocation/internal/pkg/metrics"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var now = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

type uowFactory func() commands.UoW

func (f uowFactory) Create() commands.UoW {
	return f()
}

type discardDispatcher struct{}

func (discardDispatcher) Dispatch(context.Context, []intent.Intent) {}

// UnitOfWorkIntegrationTestSuite exercises transactions, row locks and the dispatch
// handlers against a real PostgreSQL.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(postgres_adapter.AutoMigrate(db))

	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db, 5*time.Second)
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE offers, job_reschedules, jobs, drivers").Error
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) commandsFactory() commands.UoWFactory {
	return uowFactory(func() commands.UoW { return suite.factory.Create() })
}

func (suite *UnitOfWorkIntegrationTestSuite) seedJob(ctx context.Context) *job.Job {
	schedule, err := kernel.NewSchedule("2024-01-15", "10:00")
	suite.Require().NoError(err)
	origin, err := kernel.NewPlace("Depot", nil)
	suite.Require().NoError(err)
	destination, err := kernel.NewPlace("Showroom", nil)
	suite.Require().NoError(err)
	vehicle, err := job.NewVehicle("VW", "Golf", "")
	suite.Require().NoError(err)

	j, err := job.NewJob(kernel.NewUUID(), kernel.NewUUID(), job.Details{
		Schedule: schedule, Origin: origin, Destination: destination,
		Vehicle: vehicle, Price: 250, DistanceKm: 420,
	}, false, now)
	suite.Require().NoError(err)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.JobRepository().Add(ctx, j))
	suite.Require().NoError(uow.Commit(ctx))
	return j
}

func (suite *UnitOfWorkIntegrationTestSuite) seedDrivers(ctx context.Context, n int) []kernel.UUID {
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	ids := make([]kernel.UUID, 0, n)
	for range n {
		d, err := driver.NewDriver(kernel.NewUUID(), "Driver", driver.Freelance)
		suite.Require().NoError(err)
		suite.Require().NoError(uow.DriverRepository().Add(ctx, d))
		ids = append(ids, d.ID())
	}

	suite.Require().NoError(uow.Commit(ctx))
	return ids
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := suite.T().Context()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "Multiple begin calls should be safe")
	suite.Require().NoError(uow.Commit(ctx))

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Rollback(ctx))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionErrors() {
	ctx := suite.T().Context()
	uow := suite.factory.Create()

	suite.Require().ErrorIs(uow.Commit(ctx), gorm.ErrInvalidTransaction)
	suite.Require().ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RollbackDiscardsWrites() {
	ctx := suite.T().Context()
	j := suite.seedJob(ctx)
	driverIDs := suite.seedDrivers(ctx, 1)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	o, err := offer.NewOffer(j.ID(), driverIDs[0], now)
	suite.Require().NoError(err)
	_, err = uow.OfferRepository().Add(ctx, o)
	suite.Require().NoError(err)
	suite.Require().NoError(uow.Rollback(ctx))

	_, err = suite.factory.Create().OfferRepository().Find(ctx, j.ID(), driverIDs[0])
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TracksWrittenAggregates() {
	ctx := suite.T().Context()
	driverIDs := suite.seedDrivers(ctx, 1)
	j := suite.seedJob(ctx)

	uow := suite.factory.Create().(*postgres_adapter.GormUnitOfWork)
	suite.Require().NoError(uow.Begin(ctx))
	o, err := offer.NewOffer(j.ID(), driverIDs[0], now)
	suite.Require().NoError(err)
	_, err = uow.OfferRepository().Add(ctx, o)
	suite.Require().NoError(err)

	suite.Equal([]kernel.UUID{o.ID()}, uow.TrackedIDs())
	suite.Require().NoError(uow.Commit(ctx))
}

// TestDecideOffer_SingleWinner races every candidate's acceptance over separate
// connections. The row lock must let exactly one of them win.
func (suite *UnitOfWorkIntegrationTestSuite) TestDecideOffer_SingleWinner() {
	ctx := suite.T().Context()
	const candidates = 8

	j := suite.seedJob(ctx)
	driverIDs := suite.seedDrivers(ctx, candidates)
	m := metrics.NewNop()
	clock := kernel.ClockFunc(func() time.Time { return now })

	created, err := commands.NewCreateOffersCommandHandler(suite.commandsFactory(), clock, discardDispatcher{}, m).
		Handle(ctx, mustCreateOffers(suite, j.ID(), driverIDs))
	suite.Require().NoError(err)
	suite.Require().Len(created, candidates)

	decide := commands.NewDecideOfferCommandHandler(
		suite.commandsFactory(),
		services.NewOfferResolver(services.NewCompensationCalculator()),
		clock,
		discardDispatcher{},
		m,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	var (
		wg       sync.WaitGroup
		winners  atomic.Int32
		assigned atomic.Int32
		failures atomic.Int32
		start    = make(chan struct{})
	)
	for _, driverID := range driverIDs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			cmd, cmdErr := commands.NewDecideOfferCommand(driverID, j.ID(), true)
			suite.NoError(cmdErr)
			result, decideErr := decide.Handle(ctx, cmd)
			switch {
			case decideErr != nil:
				failures.Add(1)
			case result.Accepted:
				winners.Add(1)
			case result.Reason == services.ReasonAlreadyAssigned:
				assigned.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	suite.Equal(int32(1), winners.Load())
	suite.Equal(int32(candidates-1), assigned.Load())
	suite.Zero(failures.Load())

	view, err := queries.NewGetJobQueryHandler(suite.factory).Handle(ctx, mustGetJob(suite, j.ID()))
	suite.Require().NoError(err)
	suite.Equal(job.Assigned, view.Job.Status)
	suite.Require().NotNil(view.Job.DriverFee)
	suite.InDelta(115.0, *view.Job.DriverFee, 0.001)

	accepted := 0
	for _, o := range view.Offers {
		if o.Status == offer.Accepted {
			accepted++
			suite.Equal(*view.Job.DriverID, o.DriverID)
			continue
		}
		suite.Equal(offer.Declined, o.Status)
	}
	suite.Equal(1, accepted)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestDecideOffer_LockTimeout() {
	ctx := suite.T().Context()
	j := suite.seedJob(ctx)
	driverIDs := suite.seedDrivers(ctx, 1)
	clock := kernel.ClockFunc(func() time.Time { return now })

	shortFactory := postgres_adapter.NewGormUnitOfWorkFactory(suite.db, 100*time.Millisecond)
	factory := uowFactory(func() commands.UoW { return shortFactory.Create() })

	_, err := commands.NewCreateOffersCommandHandler(factory, clock, discardDispatcher{}, metrics.NewNop()).
		Handle(ctx, mustCreateOffers(suite, j.ID(), driverIDs))
	suite.Require().NoError(err)

	holder := suite.factory.Create()
	suite.Require().NoError(holder.Begin(ctx))
	defer func() {
		_ = holder.Rollback(ctx)
	}()
	_, err = holder.JobRepository().GetForUpdate(ctx, j.ID())
	suite.Require().NoError(err)

	decide := commands.NewDecideOfferCommandHandler(
		factory,
		services.NewOfferResolver(services.NewCompensationCalculator()),
		clock,
		discardDispatcher{},
		metrics.NewNop(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	cmd, err := commands.NewDecideOfferCommand(driverIDs[0], j.ID(), true)
	suite.Require().NoError(err)

	_, err = decide.Handle(ctx, cmd)
	suite.Require().ErrorIs(err, errs.ErrLockTimeout)
}

func mustCreateOffers(suite *UnitOfWorkIntegrationTestSuite, jobID kernel.UUID, driverIDs []kernel.UUID) commands.CreateOffersCommand {
	cmd, err := commands.NewCreateOffersCommand(jobID, driverIDs)
	suite.Require().NoError(err)
	return cmd
}

func mustGetJob(suite *UnitOfWorkIntegrationTestSuite, jobID kernel.UUID) queries.GetJobQuery {
	q, err := queries.NewGetJobQuery(jobID)
	suite.Require().NoError(err)
	return q
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
