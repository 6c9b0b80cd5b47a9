package commands_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"relocation/internal/core/application/usecases/commands"
	"relocation/internal/core/domain/model/driver"
	"relocation/internal/core/domain/model/intent"
	"relocation/internal/core/domain/model/job"
	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/core/domain/model/offer"
	"relocation/internal/core/domain/services"
	"relocation/internal/pkg/errs"
	"relocation/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newDecideHandler(f *fixture, d *MockDispatcher, m *metrics.Metrics) commands.DecideOfferCommandHandler {
	return commands.NewDecideOfferCommandHandler(
		f.factory(),
		services.NewOfferResolver(services.NewCompensationCalculator()),
		fixedClock,
		d,
		m,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func TestNewDecideOfferCommand(t *testing.T) {
	t.Run("should build a valid command", func(t *testing.T) {
		driverID, jobID := kernel.NewUUID(), kernel.NewUUID()

		cmd, err := commands.NewDecideOfferCommand(driverID, jobID, true)

		require.NoError(t, err)
		require.NoError(t, cmd.Validate())
		assert.Equal(t, driverID, cmd.DriverID())
		assert.Equal(t, jobID, cmd.JobID())
		assert.True(t, cmd.Accept())
	})

	t.Run("should reject missing ids", func(t *testing.T) {
		_, err := commands.NewDecideOfferCommand(kernel.UUID{}, kernel.UUID{}, false)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestDecideOfferCommandHandler_Handle(t *testing.T) {
	t.Run("should assign the job and expire competing offers on accept", func(t *testing.T) {
		ctx := t.Context()
		f := newFixture()
		dispatcher := new(MockDispatcher)
		m := metrics.NewNop()

		j := newJob(t, job.Created, 150)
		d := newDriver(t, driver.Freelance)
		mine := newOffer(t, j.ID(), d.ID(), now.Add(-5*time.Minute))
		other := newOffer(t, j.ID(), kernel.NewUUID(), now.Add(-5*time.Minute))

		var updated []*offer.Offer
		var dispatched []intent.Intent
		f.uow.On("Begin", ctx).Return(nil).Once()
		f.jobs.On("GetForUpdate", ctx, j.ID()).Return(j, nil).Once()
		f.offers.On("Find", ctx, j.ID(), d.ID()).Return(mine, nil).Once()
		f.drivers.On("Get", ctx, d.ID()).Return(d, nil).Once()
		f.offers.On("ListPendingByJob", ctx, j.ID()).Return([]*offer.Offer{mine, other}, nil).Once()
		f.jobs.On("Update", ctx, j).Return(nil).Once()
		f.offers.On("Update", ctx, mock.Anything).Run(func(args mock.Arguments) {
			updated = args.Get(1).([]*offer.Offer)
		}).Return(nil).Once()
		f.uow.On("Commit", ctx).Return(nil).Once()
		dispatcher.On("Dispatch", ctx, mock.Anything).Run(func(args mock.Arguments) {
			dispatched = args.Get(1).([]intent.Intent)
		}).Once()

		cmd, _ := commands.NewDecideOfferCommand(d.ID(), j.ID(), true)
		result, err := newDecideHandler(f, dispatcher, m).Handle(ctx, cmd)

		require.NoError(t, err)
		assert.Equal(t, commands.DecideOfferResult{Accepted: true}, result)
		assert.Equal(t, job.Assigned, j.Status())
		assert.True(t, j.IsAssignedTo(d.ID()))
		require.NotNil(t, j.DriverFee())
		assert.InDelta(t, 70, *j.DriverFee(), 0.001)

		require.Len(t, updated, 2)
		assert.Equal(t, offer.Accepted, updated[0].Status())
		assert.Equal(t, offer.Expired, updated[1].Status())
		assert.Equal(t, []string{
			"notify_driver", "notify_client", "notify_admin", "send_email", "notify_driver",
		}, intentNames(dispatched))

		assert.InDelta(t, 1, testutil.ToFloat64(m.Decisions.WithLabelValues("accepted")), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(m.OffersExpired.WithLabelValues("assigned")), 0)
		f.assertExpectations(t)
		dispatcher.AssertExpectations(t)
	})

	t.Run("should decline without touching the job", func(t *testing.T) {
		ctx := t.Context()
		f := newFixture()
		dispatcher := new(MockDispatcher)
		m := metrics.NewNop()

		j := newJob(t, job.Created, 150)
		d := newDriver(t, driver.Contracted)
		mine := newOffer(t, j.ID(), d.ID(), now.Add(-time.Minute))

		f.uow.On("Begin", ctx).Return(nil).Once()
		f.jobs.On("GetForUpdate", ctx, j.ID()).Return(j, nil).Once()
		f.offers.On("Find", ctx, j.ID(), d.ID()).Return(mine, nil).Once()
		f.drivers.On("Get", ctx, d.ID()).Return(d, nil).Once()
		f.offers.On("Update", ctx, []*offer.Offer{mine}).Return(nil).Once()
		f.uow.On("Commit", ctx).Return(nil).Once()
		dispatcher.On("Dispatch", ctx, mock.MatchedBy(func(intents []intent.Intent) bool {
			return len(intents) == 1 && intents[0].Name() == "notify_admin"
		})).Once()

		cmd, _ := commands.NewDecideOfferCommand(d.ID(), j.ID(), false)
		result, err := newDecideHandler(f, dispatcher, m).Handle(ctx, cmd)

		require.NoError(t, err)
		assert.False(t, result.Accepted)
		assert.Empty(t, result.Reason)
		assert.Equal(t, job.Created, j.Status())
		assert.Equal(t, offer.Declined, mine.Status())
		f.jobs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		f.offers.AssertNotCalled(t, "ListPendingByJob", mock.Anything, mock.Anything)
		assert.InDelta(t, 1, testutil.ToFloat64(m.Decisions.WithLabelValues("declined")), 0)
		f.assertExpectations(t)
		dispatcher.AssertExpectations(t)
	})

	t.Run("should report already_assigned when another driver won", func(t *testing.T) {
		ctx := t.Context()
		f := newFixture()
		dispatcher := new(MockDispatcher)
		m := metrics.NewNop()

		j := newJob(t, job.Assigned, 150)
		winner := *j.Driver()
		d := newDriver(t, driver.Freelance)
		mine := newOffer(t, j.ID(), d.ID(), now.Add(-time.Minute))

		f.uow.On("Begin", ctx).Return(nil).Once()
		f.jobs.On("GetForUpdate", ctx, j.ID()).Return(j, nil).Once()
		f.offers.On("Find", ctx, j.ID(), d.ID()).Return(mine, nil).Once()
		f.drivers.On("Get", ctx, d.ID()).Return(d, nil).Once()
		f.offers.On("ListPendingByJob", ctx, j.ID()).Return([]*offer.Offer{mine}, nil).Once()
		f.offers.On("Update", ctx, []*offer.Offer{mine}).Return(nil).Once()
		f.uow.On("Commit", ctx).Return(nil).Once()
		dispatcher.On("Dispatch", ctx, mock.Anything).Once()

		cmd, _ := commands.NewDecideOfferCommand(d.ID(), j.ID(), true)
		result, err := newDecideHandler(f, dispatcher, m).Handle(ctx, cmd)

		require.NoError(t, err)
		assert.Equal(t, commands.DecideOfferResult{Accepted: false, Reason: services.ReasonAlreadyAssigned}, result)
		assert.True(t, j.IsAssignedTo(winner))
		assert.Equal(t, offer.Declined, mine.Status())
		assert.InDelta(t, 1, testutil.ToFloat64(m.Decisions.WithLabelValues("already_assigned")), 0)
		f.assertExpectations(t)
	})

	t.Run("should report already_assigned when the winner expired the offer", func(t *testing.T) {
		ctx := t.Context()
		f := newFixture()
		dispatcher := new(MockDispatcher)
		m := metrics.NewNop()

		j := newJob(t, job.Assigned, 150)
		d := newDriver(t, driver.Contracted)
		mine := newOffer(t, j.ID(), d.ID(), now.Add(-time.Minute))
		require.NoError(t, mine.Expire(now.Add(-time.Second)))

		f.uow.On("Begin", ctx).Return(nil).Once()
		f.jobs.On("GetForUpdate", ctx, j.ID()).Return(j, nil).Once()
		f.offers.On("Find", ctx, j.ID(), d.ID()).Return(mine, nil).Once()
		f.drivers.On("Get", ctx, d.ID()).Return(d, nil).Once()
		f.offers.On("ListPendingByJob", ctx, j.ID()).Return([]*offer.Offer{}, nil).Once()
		f.offers.On("Update", ctx, []*offer.Offer{mine}).Return(nil).Once()
		f.uow.On("Commit", ctx).Return(nil).Once()
		dispatcher.On("Dispatch", ctx, mock.Anything).Once()

		cmd, _ := commands.NewDecideOfferCommand(d.ID(), j.ID(), true)
		result, err := newDecideHandler(f, dispatcher, m).Handle(ctx, cmd)

		require.NoError(t, err)
		assert.Equal(t, commands.DecideOfferResult{Accepted: false, Reason: services.ReasonAlreadyAssigned}, result)
		assert.Equal(t, offer.Declined, mine.Status())
		require.NotNil(t, mine.RespondedAt())
		assert.Equal(t, now, *mine.RespondedAt())
		f.assertExpectations(t)
	})

	t.Run("should fail with invalid offer when the offer was already answered", func(t *testing.T) {
		ctx := t.Context()
		f := newFixture()
		dispatcher := new(MockDispatcher)
		m := metrics.NewNop()

		j := newJob(t, job.Created, 150)
		d := newDriver(t, driver.Freelance)
		mine := newOffer(t, j.ID(), d.ID(), now.Add(-time.Minute))
		require.NoError(t, mine.Decline(now))

		f.uow.On("Begin", ctx).Return(nil).Once()
		f.jobs.On("GetForUpdate", ctx, j.ID()).Return(j, nil).Once()
		f.offers.On("Find", ctx, j.ID(), d.ID()).Return(mine, nil).Once()
		f.drivers.On("Get", ctx, d.ID()).Return(d, nil).Once()

		cmd, _ := commands.NewDecideOfferCommand(d.ID(), j.ID(), false)
		_, err := newDecideHandler(f, dispatcher, m).Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrInvalidOffer)
		f.uow.AssertNotCalled(t, "Commit", mock.Anything)
		dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
		assert.InDelta(t, 1, testutil.ToFloat64(m.Decisions.WithLabelValues("invalid_offer")), 0)
	})

	t.Run("should surface a lock timeout", func(t *testing.T) {
		ctx := t.Context()
		f := newFixture()
		dispatcher := new(MockDispatcher)
		m := metrics.NewNop()
		jobID, driverID := kernel.NewUUID(), kernel.NewUUID()

		f.uow.On("Begin", ctx).Return(nil).Once()
		f.jobs.On("GetForUpdate", ctx, jobID).Return(nil, errs.NewLockTimeoutError("job", jobID)).Once()

		cmd, _ := commands.NewDecideOfferCommand(driverID, jobID, true)
		_, err := newDecideHandler(f, dispatcher, m).Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrLockTimeout)
		f.offers.AssertNotCalled(t, "Find", mock.Anything, mock.Anything, mock.Anything)
		assert.InDelta(t, 1, testutil.ToFloat64(m.Decisions.WithLabelValues("lock_timeout")), 0)
	})

	t.Run("should return not found for a missing offer", func(t *testing.T) {
		ctx := t.Context()
		f := newFixture()
		m := metrics.NewNop()
		j := newJob(t, job.Created, 150)
		driverID := kernel.NewUUID()

		f.uow.On("Begin", ctx).Return(nil).Once()
		f.jobs.On("GetForUpdate", ctx, j.ID()).Return(j, nil).Once()
		f.offers.On("Find", ctx, j.ID(), driverID).Return(nil, errs.NewObjectNotFoundError("offer", driverID)).Once()

		cmd, _ := commands.NewDecideOfferCommand(driverID, j.ID(), true)
		_, err := newDecideHandler(f, new(MockDispatcher), m).Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
		assert.InDelta(t, 1, testutil.ToFloat64(m.Decisions.WithLabelValues("not_found")), 0)
	})

	t.Run("should not dispatch when commit fails", func(t *testing.T) {
		ctx := t.Context()
		f := newFixture()
		dispatcher := new(MockDispatcher)

		j := newJob(t, job.Created, 150)
		d := newDriver(t, driver.Freelance)
		mine := newOffer(t, j.ID(), d.ID(), now.Add(-time.Minute))

		f.uow.On("Begin", ctx).Return(nil).Once()
		f.jobs.On("GetForUpdate", ctx, j.ID()).Return(j, nil).Once()
		f.offers.On("Find", ctx, j.ID(), d.ID()).Return(mine, nil).Once()
		f.drivers.On("Get", ctx, d.ID()).Return(d, nil).Once()
		f.offers.On("Update", ctx, mock.Anything).Return(nil).Once()
		f.uow.On("Commit", ctx).Return(errors.New("commit error")).Once()

		cmd, _ := commands.NewDecideOfferCommand(d.ID(), j.ID(), false)
		_, err := newDecideHandler(f, dispatcher, metrics.NewNop()).Handle(ctx, cmd)

		require.EqualError(t, err, "commit error")
		dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
	})

	t.Run("should reject an unconstructed command", func(t *testing.T) {
		f := newFixture()
		factory := f.factory()
		handler := commands.NewDecideOfferCommandHandler(
			factory, services.OfferResolver{}, fixedClock, new(MockDispatcher), metrics.NewNop(),
			slog.New(slog.NewTextHandler(io.Discard, nil)),
		)

		_, err := handler.Handle(t.Context(), commands.DecideOfferCommand{})

		require.ErrorIs(t, err, commands.ErrDecideOfferCommandIsNotConstructed)
		factory.AssertNotCalled(t, "Create")
	})
}
