package commands_test

import (
	"context"
	"testing"
	"time"

	"relocation/internal/core/application/usecases/commands"
	"relocation/internal/core/domain/model/driver"
	"relocation/internal/core/domain/model/intent"
	"relocation/internal/core/domain/model/job"
	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/core/domain/model/offer"
	"relocation/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

var fixedClock = kernel.ClockFunc(func() time.Time { return now })

type MockJobRepository struct{ mock.Mock }

func (m *MockJobRepository) Add(ctx context.Context, j *job.Job) error {
	args := m.Called(ctx, j)
	return args.Error(0)
}

func (m *MockJobRepository) Update(ctx context.Context, j *job.Job) error {
	args := m.Called(ctx, j)
	return args.Error(0)
}

func (m *MockJobRepository) Get(ctx context.Context, id kernel.UUID) (*job.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*job.Job), args.Error(1)
}

func (m *MockJobRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*job.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*job.Job), args.Error(1)
}

type MockOfferRepository struct{ mock.Mock }

func (m *MockOfferRepository) Add(ctx context.Context, o *offer.Offer) (bool, error) {
	args := m.Called(ctx, o)
	return args.Bool(0), args.Error(1)
}

func (m *MockOfferRepository) Update(ctx context.Context, offers ...*offer.Offer) error {
	args := m.Called(ctx, offers)
	return args.Error(0)
}

func (m *MockOfferRepository) Find(ctx context.Context, jobID, driverID kernel.UUID) (*offer.Offer, error) {
	args := m.Called(ctx, jobID, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*offer.Offer), args.Error(1)
}

func (m *MockOfferRepository) ListByJob(ctx context.Context, jobID kernel.UUID) ([]*offer.Offer, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*offer.Offer), args.Error(1)
}

func (m *MockOfferRepository) ListPendingByJob(ctx context.Context, jobID kernel.UUID) ([]*offer.Offer, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*offer.Offer), args.Error(1)
}

func (m *MockOfferRepository) JobsWithPendingOffersBefore(ctx context.Context, cutoff time.Time) ([]kernel.UUID, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kernel.UUID), args.Error(1)
}

type MockDriverRepository struct{ mock.Mock }

func (m *MockDriverRepository) Add(ctx context.Context, d *driver.Driver) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDriverRepository) Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*driver.Driver), args.Error(1)
}

// MockUoW satisfies every unit of work flavour used by the handlers.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) JobRepository() ports.JobRepository {
	args := m.Called()
	return args.Get(0).(ports.JobRepository)
}

func (m *MockUoW) OfferRepository() ports.OfferRepository {
	args := m.Called()
	return args.Get(0).(ports.OfferRepository)
}

func (m *MockUoW) DriverRepository() ports.DriverRepository {
	args := m.Called()
	return args.Get(0).(ports.DriverRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockJobUoWFactory struct{ mock.Mock }

func (m *MockJobUoWFactory) Create() commands.JobUoW {
	args := m.Called()
	return args.Get(0).(commands.JobUoW)
}

type MockDriverUoWFactory struct{ mock.Mock }

func (m *MockDriverUoWFactory) Create() commands.DriverUoW {
	args := m.Called()
	return args.Get(0).(commands.DriverUoW)
}

type MockDispatcher struct{ mock.Mock }

func (m *MockDispatcher) Dispatch(ctx context.Context, intents []intent.Intent) {
	m.Called(ctx, intents)
}

// fixture is a full set of repository mocks behind one unit of work.
type fixture struct {
	jobs    *MockJobRepository
	offers  *MockOfferRepository
	drivers *MockDriverRepository
	uow     *MockUoW
}

func newFixture() *fixture {
	f := &fixture{
		jobs:    new(MockJobRepository),
		offers:  new(MockOfferRepository),
		drivers: new(MockDriverRepository),
		uow:     new(MockUoW),
	}
	f.uow.On("JobRepository").Return(f.jobs).Maybe()
	f.uow.On("OfferRepository").Return(f.offers).Maybe()
	f.uow.On("DriverRepository").Return(f.drivers).Maybe()
	f.uow.On("Rollback", mock.Anything).Return(nil).Maybe()
	return f
}

func (f *fixture) factory() *MockUoWFactory {
	factory := new(MockUoWFactory)
	factory.On("Create").Return(f.uow)
	return factory
}

func (f *fixture) jobFactory() *MockJobUoWFactory {
	factory := new(MockJobUoWFactory)
	factory.On("Create").Return(f.uow)
	return factory
}

func (f *fixture) assertExpectations(t *testing.T) {
	t.Helper()
	f.jobs.AssertExpectations(t)
	f.offers.AssertExpectations(t)
	f.drivers.AssertExpectations(t)
	f.uow.AssertExpectations(t)
}

func newJob(t *testing.T, status job.Status, distanceKm float64) *job.Job {
	t.Helper()

	schedule, _ := kernel.NewSchedule("2024-01-15", "10:00")
	origin, _ := kernel.NewPlace("Depot", nil)
	point, _ := kernel.NewGeoPoint(52.52, 13.405)
	destination, _ := kernel.NewPlace("Berlin", &point)
	vehicle, _ := job.NewVehicle("Skoda", "Octavia", "b-xy 123")

	snapshot := job.Snapshot{
		ID:       kernel.NewUUID(),
		ClientID: kernel.NewUUID(),
		Status:   status,
		Details: job.Details{
			Schedule: schedule, Origin: origin, Destination: destination,
			Vehicle: vehicle, Price: 300, DistanceKm: distanceKm,
		},
		CreatedAt: now.Add(-time.Hour),
	}
	if status.RequiresDriver() {
		d := kernel.NewUUID()
		snapshot.DriverID = &d
	}
	if status.RequiresStartedAt() {
		s := now.Add(-2 * time.Hour)
		snapshot.StartedAt = &s
	}

	j, err := job.RestoreJob(snapshot)
	require.NoError(t, err)
	return j
}

func newDriver(t *testing.T, employment driver.EmploymentType) *driver.Driver {
	t.Helper()

	d, err := driver.NewDriver(kernel.NewUUID(), "Alice", employment)
	require.NoError(t, err)
	return d
}

func newOffer(t *testing.T, jobID, driverID kernel.UUID, offeredAt time.Time) *offer.Offer {
	t.Helper()

	o, err := offer.NewOffer(jobID, driverID, offeredAt)
	require.NoError(t, err)
	return o
}

func newActor(t *testing.T, role kernel.Role) kernel.Actor {
	t.Helper()

	a, err := kernel.NewActor(kernel.NewUUID(), role)
	require.NoError(t, err)
	return a
}

func intentNames(intents []intent.Intent) []string {
	names := make([]string, 0, len(intents))
	for _, i := range intents {
		names = append(names, i.Name())
	}
	return names
}
