package kafkamail_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"relocation/internal/adapters/out/kafkamail"
	"relocation/internal/pkg/errs"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockWriter struct{ mock.Mock }

func (m *MockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	return m.Called(ctx, msgs).Error(0)
}

func (m *MockWriter) Close() error {
	return m.Called().Error(0)
}

func TestMailer_Send(t *testing.T) {
	t.Run("should write one message keyed by job id", func(t *testing.T) {
		w := &MockWriter{}
		var written []kafka.Message
		w.On("WriteMessages", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { written = args.Get(1).([]kafka.Message) }).
			Return(nil).Once()

		err := kafkamail.NewWithWriter(w).Send(t.Context(), "job_assigned", map[string]string{
			"jobId":     "b5a3f9c2-0000-4000-8000-000000000001",
			"driverFee": "70.00",
		})
		require.NoError(t, err)

		require.Len(t, written, 1)
		assert.Equal(t, "b5a3f9c2-0000-4000-8000-000000000001", string(written[0].Key))
		assert.Equal(t, "kind", written[0].Headers[0].Key)
		assert.Equal(t, "job_assigned", string(written[0].Headers[0].Value))

		var msg kafkamail.Message
		require.NoError(t, json.Unmarshal(written[0].Value, &msg))
		assert.Equal(t, "job_assigned", msg.Kind)
		assert.Equal(t, "70.00", msg.Args["driverFee"])
		assert.False(t, msg.RequestedAt.IsZero())
	})

	t.Run("should require a kind", func(t *testing.T) {
		w := &MockWriter{}

		err := kafkamail.NewWithWriter(w).Send(t.Context(), "", nil)

		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
		w.AssertNotCalled(t, "WriteMessages", mock.Anything, mock.Anything)
	})

	t.Run("should return the writer error", func(t *testing.T) {
		w := &MockWriter{}
		boom := errors.New("leader not available")
		w.On("WriteMessages", mock.Anything, mock.Anything).Return(boom)

		err := kafkamail.NewWithWriter(w).Send(t.Context(), "job_cancelled", map[string]string{"jobId": "x"})

		assert.ErrorIs(t, err, boom)
	})
}
