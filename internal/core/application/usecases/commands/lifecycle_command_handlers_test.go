package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"relocation/internal/core/application/usecases/commands"
	"relocation/internal/core/domain/model/intent"
	"relocation/internal/core/domain/model/job"
	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/core/domain/services"
	"relocation/internal/pkg/errs"
	"relocation/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type lifecycleCall func(ctx context.Context, f commands.JobUoWFactory, d commands.IntentDispatcher, m *metrics.Metrics, jobID kernel.UUID) (job.Snapshot, error)

var stateGuard = services.NewStateGuard(time.UTC)

func ptr[T any](v T) *T {
	return &v
}

func TestLifecycleCommandHandlers(t *testing.T) {
	tests := []struct {
		name      string
		from      job.Status
		want      job.Status
		operation string
		call      lifecycleCall
	}{
		{
			name: "should confirm payment", from: job.PendingPaid, want: job.Created, operation: "confirm_payment",
			call: func(ctx context.Context, f commands.JobUoWFactory, d commands.IntentDispatcher, m *metrics.Metrics, id kernel.UUID) (job.Snapshot, error) {
				cmd, _ := commands.NewConfirmPaymentCommand(id)
				return commands.NewConfirmPaymentCommandHandler(f, stateGuard, fixedClock, d, m).Handle(ctx, cmd)
			},
		},
		{
			name: "should verify pickup inside the window", from: job.Assigned, want: job.PickedUp, operation: "pickup_verification",
			call: func(ctx context.Context, f commands.JobUoWFactory, d commands.IntentDispatcher, m *metrics.Metrics, id kernel.UUID) (job.Snapshot, error) {
				cmd, _ := commands.NewVerifyPickupCommand(id, []byte(`{"photos":3}`))
				return commands.NewVerifyPickupCommandHandler(f, stateGuard, fixedClock, d, m).Handle(ctx, cmd)
			},
		},
		{
			name: "should start the trip", from: job.PickedUp, want: job.InProgress, operation: "start",
			call: func(ctx context.Context, f commands.JobUoWFactory, d commands.IntentDispatcher, m *metrics.Metrics, id kernel.UUID) (job.Snapshot, error) {
				cmd, _ := commands.NewStartTripCommand(id)
				return commands.NewStartTripCommandHandler(f, stateGuard, fixedClock, d, m).Handle(ctx, cmd)
			},
		},
		{
			name: "should request finish at the destination", from: job.InProgress, want: job.RequestFinish, operation: "finish_request",
			call: func(ctx context.Context, f commands.JobUoWFactory, d commands.IntentDispatcher, m *metrics.Metrics, id kernel.UUID) (job.Snapshot, error) {
				cmd, _ := commands.NewRequestFinishCommand(id, []byte("trace"), ptr(52.5), ptr(13.4))
				return commands.NewRequestFinishCommandHandler(f, stateGuard, fixedClock, d, m).Handle(ctx, cmd)
			},
		},
		{
			name: "should verify delivery", from: job.RequestFinish, want: job.Delivered, operation: "delivery_verification",
			call: func(ctx context.Context, f commands.JobUoWFactory, d commands.IntentDispatcher, m *metrics.Metrics, id kernel.UUID) (job.Snapshot, error) {
				cmd, _ := commands.NewVerifyDeliveryCommand(id, []byte(`{"signature":"ok"}`))
				return commands.NewVerifyDeliveryCommandHandler(f, stateGuard, fixedClock, d, m).Handle(ctx, cmd)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()
			f := newFixture()
			dispatcher := new(MockDispatcher)
			m := metrics.NewNop()
			j := newJob(t, tt.from, 150)

			f.uow.On("Begin", ctx).Return(nil).Once()
			f.jobs.On("GetForUpdate", ctx, j.ID()).Return(j, nil).Once()
			f.jobs.On("Update", ctx, j).Return(nil).Once()
			f.uow.On("Commit", ctx).Return(nil).Once()
			dispatcher.On("Dispatch", ctx, mock.MatchedBy(func(intents []intent.Intent) bool {
				return len(intents) > 0
			})).Once()

			snapshot, err := tt.call(ctx, f.jobFactory(), dispatcher, m, j.ID())

			require.NoError(t, err)
			assert.Equal(t, tt.want, snapshot.Status)
			assert.InDelta(t, 1, testutil.ToFloat64(m.Transitions.WithLabelValues(tt.operation, metrics.ResultOK)), 0)
			f.assertExpectations(t)
			dispatcher.AssertExpectations(t)
		})
	}
}

func TestLifecycleCommandHandlers_Failures(t *testing.T) {
	t.Run("should reject a transition from the wrong status", func(t *testing.T) {
		ctx := t.Context()
		f := newFixture()
		dispatcher := new(MockDispatcher)
		m := metrics.NewNop()
		j := newJob(t, job.Created, 150)

		f.uow.On("Begin", ctx).Return(nil).Once()
		f.jobs.On("GetForUpdate", ctx, j.ID()).Return(j, nil).Once()

		cmd, _ := commands.NewStartTripCommand(j.ID())
		_, err := commands.NewStartTripCommandHandler(f.jobFactory(), stateGuard, fixedClock, dispatcher, m).Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrInvalidState)
		f.jobs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
		assert.InDelta(t, 1, testutil.ToFloat64(m.Transitions.WithLabelValues("start", metrics.ResultError)), 0)
	})

	t.Run("should refuse to finish far from the destination", func(t *testing.T) {
		ctx := t.Context()
		f := newFixture()
		j := newJob(t, job.InProgress, 150)

		f.uow.On("Begin", ctx).Return(nil).Once()
		f.jobs.On("GetForUpdate", ctx, j.ID()).Return(j, nil).Once()

		cmd, err := commands.NewRequestFinishCommand(j.ID(), nil, ptr(48.8566), ptr(2.3522))
		require.NoError(t, err)
		_, err = commands.NewRequestFinishCommandHandler(f.jobFactory(), stateGuard, fixedClock, new(MockDispatcher), metrics.NewNop()).
			Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrTooFarFromDestination)
		assert.Equal(t, job.InProgress, j.Status())
	})

	t.Run("should refuse a pickup outside the window", func(t *testing.T) {
		ctx := t.Context()
		f := newFixture()
		j := newJob(t, job.Assigned, 150)
		late := kernel.ClockFunc(func() time.Time { return now.Add(48 * time.Hour) })

		f.uow.On("Begin", ctx).Return(nil).Once()
		f.jobs.On("GetForUpdate", ctx, j.ID()).Return(j, nil).Once()

		cmd, _ := commands.NewVerifyPickupCommand(j.ID(), []byte("photo"))
		_, err := commands.NewVerifyPickupCommandHandler(f.jobFactory(), stateGuard, late, new(MockDispatcher), metrics.NewNop()).
			Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrInvalidWindow)
	})

	t.Run("should surface a lock timeout without writing", func(t *testing.T) {
		ctx := t.Context()
		f := newFixture()
		jobID := kernel.NewUUID()

		f.uow.On("Begin", ctx).Return(nil).Once()
		f.jobs.On("GetForUpdate", ctx, jobID).Return(nil, errs.NewLockTimeoutError("job", jobID)).Once()

		cmd, _ := commands.NewConfirmPaymentCommand(jobID)
		_, err := commands.NewConfirmPaymentCommandHandler(f.jobFactory(), stateGuard, fixedClock, new(MockDispatcher), metrics.NewNop()).
			Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrLockTimeout)
		f.uow.AssertNotCalled(t, "Commit", mock.Anything)
	})

	t.Run("should not dispatch when update fails", func(t *testing.T) {
		ctx := t.Context()
		f := newFixture()
		dispatcher := new(MockDispatcher)
		j := newJob(t, job.PickedUp, 150)

		f.uow.On("Begin", ctx).Return(nil).Once()
		f.jobs.On("GetForUpdate", ctx, j.ID()).Return(j, nil).Once()
		f.jobs.On("Update", ctx, j).Return(errors.New("update error")).Once()

		cmd, _ := commands.NewStartTripCommand(j.ID())
		_, err := commands.NewStartTripCommandHandler(f.jobFactory(), stateGuard, fixedClock, dispatcher, metrics.NewNop()).
			Handle(ctx, cmd)

		require.EqualError(t, err, "update error")
		dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
	})
}

func TestRescheduleJobCommandHandler_Handle(t *testing.T) {
	t.Run("should record the reschedule and notify the assigned driver", func(t *testing.T) {
		ctx := t.Context()
		f := newFixture()
		dispatcher := new(MockDispatcher)
		j := newJob(t, job.Assigned, 150)
		actor := newActor(t, kernel.RoleClient)

		var dispatched []intent.Intent
		f.uow.On("Begin", ctx).Return(nil).Once()
		f.jobs.On("GetForUpdate", ctx, j.ID()).Return(j, nil).Once()
		f.jobs.On("Update", ctx, j).Return(nil).Once()
		f.uow.On("Commit", ctx).Return(nil).Once()
		dispatcher.On("Dispatch", ctx, mock.Anything).Run(func(args mock.Arguments) {
			dispatched = args.Get(1).([]intent.Intent)
		}).Once()

		cmd, err := commands.NewRescheduleJobCommand(j.ID(), "2024-01-20", "14:30", actor)
		require.NoError(t, err)
		snapshot, err := commands.NewRescheduleJobCommandHandler(f.jobFactory(), stateGuard, fixedClock, dispatcher, metrics.NewNop()).
			Handle(ctx, cmd)

		require.NoError(t, err)
		assert.Equal(t, "2024-01-20", snapshot.Details.Schedule.Date())
		require.Len(t, snapshot.Reschedules, 1)
		assert.Equal(t, "2024-01-15", snapshot.Reschedules[0].Previous().Date())
		assert.Equal(t, actor.ID(), snapshot.Reschedules[0].ChangedBy())
		assert.Contains(t, intentNames(dispatched), "notify_driver")
		assert.Contains(t, intentNames(dispatched), "send_email")
	})

	t.Run("should reject a malformed date", func(t *testing.T) {
		_, err := commands.NewRescheduleJobCommand(kernel.NewUUID(), "20-01-2024", "14:30", newActor(t, kernel.RoleAdmin))

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}
