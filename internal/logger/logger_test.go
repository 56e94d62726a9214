package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInit(t *testing.T) {
	original := Logger
	defer func() { Logger = original }()

	t.Run("valid level", func(t *testing.T) {
		require.NoError(t, Init("debug"))
		assert.True(t, Logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("warn level disables info", func(t *testing.T) {
		require.NoError(t, Init("warn"))
		assert.False(t, Logger.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, Logger.Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("invalid level", func(t *testing.T) {
		err := Init("loud")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}
