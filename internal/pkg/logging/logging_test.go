package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"relocation/internal/pkg/errs"
	"relocation/internal/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"info":    slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for raw, want := range cases {
		t.Run("should parse "+raw, func(t *testing.T) {
			got, err := logging.ParseLevel(raw)

			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	t.Run("should reject unknown levels", func(t *testing.T) {
		_, err := logging.ParseLevel("verbose")

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestNew(t *testing.T) {
	t.Run("should write json records above the level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.New(&buf, slog.LevelWarn)

		logger.Info("dropped")
		logger.Warn("kept", "job_id", "42")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "kept", record["msg"])
		assert.Equal(t, "relocation", record["service"])
		assert.Equal(t, "42", record["job_id"])
	})
}
