package kernel_test

import (
	"encoding/json"
	"testing"

	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUUID(t *testing.T) {
	t.Run("should create unique valid UUIDs", func(t *testing.T) {
		id1 := kernel.NewUUID()
		id2 := kernel.NewUUID()

		require.NoError(t, id1.Validate())
		assert.False(t, id1.IsEqual(id2))
	})
}

func TestUUIDFromString(t *testing.T) {
	validUUID := "550e8400-e29b-41d4-a716-446655440000"

	t.Run("should parse valid string", func(t *testing.T) {
		id, err := kernel.UUIDFromString(validUUID)

		require.NoError(t, err)
		assert.Equal(t, validUUID, id.String())
	})

	t.Run("should reject malformed strings as validation errors", func(t *testing.T) {
		for _, input := range []string{"", "not-a-uuid", "550e8400-e29b-41d4-a716"} {
			_, err := kernel.UUIDFromString(input)

			require.Error(t, err, input)
			assert.True(t, errs.IsValidation(err), input)
		}
	})

	t.Run("should reject the nil UUID", func(t *testing.T) {
		_, err := kernel.UUIDFromString(uuid.Nil.String())

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestUUIDFromBytes(t *testing.T) {
	t.Run("should round trip bytes", func(t *testing.T) {
		original := kernel.NewUUID()
		raw := original.Bytes()

		restored, err := kernel.UUIDFromBytes(raw[:])

		require.NoError(t, err)
		assert.True(t, original.IsEqual(restored))
	})

	t.Run("should reject wrong length", func(t *testing.T) {
		_, err := kernel.UUIDFromBytes([]byte{1, 2, 3})

		require.Error(t, err)
	})
}

func TestUUIDsFromStrings(t *testing.T) {
	t.Run("should parse all elements", func(t *testing.T) {
		a, b := kernel.NewUUID(), kernel.NewUUID()

		ids, err := kernel.UUIDsFromStrings([]string{a.String(), b.String()})

		require.NoError(t, err)
		require.Len(t, ids, 2)
		assert.True(t, ids[0].IsEqual(a))
		assert.True(t, ids[1].IsEqual(b))
	})

	t.Run("should fail on first bad element", func(t *testing.T) {
		_, err := kernel.UUIDsFromStrings([]string{kernel.NewUUID().String(), "bad"})

		require.Error(t, err)
	})
}

func TestUUID_Validate(t *testing.T) {
	var zero kernel.UUID

	assert.Equal(t, kernel.ErrUUIDIsNotConstructed, zero.Validate())
	assert.NoError(t, kernel.NewUUID().Validate())
}

func TestUUID_JSON(t *testing.T) {
	type payload struct {
		JobID kernel.UUID `json:"jobId"`
	}

	t.Run("should marshal as string", func(t *testing.T) {
		id := kernel.MustUUIDFromString("550e8400-e29b-41d4-a716-446655440000")

		data, err := json.Marshal(payload{JobID: id})

		require.NoError(t, err)
		assert.JSONEq(t, `{"jobId":"550e8400-e29b-41d4-a716-446655440000"}`, string(data))
	})

	t.Run("should unmarshal from string", func(t *testing.T) {
		var p payload

		err := json.Unmarshal([]byte(`{"jobId":"550e8400-e29b-41d4-a716-446655440000"}`), &p)

		require.NoError(t, err)
		assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", p.JobID.String())
	})

	t.Run("should reject invalid string", func(t *testing.T) {
		var p payload

		err := json.Unmarshal([]byte(`{"jobId":"nope"}`), &p)

		require.Error(t, err)
	})
}

func TestMustUUIDFromString(t *testing.T) {
	assert.Panics(t, func() { kernel.MustUUIDFromString("nope") })
}
