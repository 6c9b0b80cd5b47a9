package driver_test

import (
	"testing"

	"relocation/internal/core/domain/model/driver"
	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDriver(t *testing.T) {
	t.Run("should create driver with valid parameters", func(t *testing.T) {
		id := kernel.NewUUID()

		d, err := driver.NewDriver(id, "  Alice ", driver.Contracted)

		require.NoError(t, err)
		require.NoError(t, d.Validate())
		assert.True(t, d.ID().IsEqual(id))
		assert.Equal(t, "Alice", d.Name())
		assert.Equal(t, driver.Contracted, d.EmploymentType())
	})

	t.Run("should join all validation errors", func(t *testing.T) {
		d, err := driver.NewDriver(kernel.UUID{}, "", driver.EmploymentType("INTERN"))

		require.Error(t, err)
		assert.Nil(t, d)
		require.ErrorIs(t, err, driver.ErrNameIsRequired)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Contains(t, err.Error(), "UUID must be created")
		assert.Contains(t, err.Error(), "INTERN")
	})

	t.Run("should flag zero value driver", func(t *testing.T) {
		var d *driver.Driver

		assert.Equal(t, driver.ErrDriverIsNotConstructed, d.Validate())
		assert.Equal(t, driver.ErrDriverIsNotConstructed, (&driver.Driver{}).Validate())
	})
}

func TestParseEmploymentType(t *testing.T) {
	t.Run("should normalize case and spaces", func(t *testing.T) {
		et, err := driver.ParseEmploymentType(" freelance ")

		require.NoError(t, err)
		assert.Equal(t, driver.Freelance, et)
	})

	t.Run("should reject unknown type", func(t *testing.T) {
		_, err := driver.ParseEmploymentType("volunteer")

		require.True(t, errs.IsValidation(err))
	})
}
