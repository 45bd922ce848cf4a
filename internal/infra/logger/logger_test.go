package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_AppliesLevel(t *testing.T) {
	l, err := New(Config{Level: "warn", Encoding: "json"})
	require.NoError(t, err)

	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestSetLevel_ChangesBuiltLoggers(t *testing.T) {
	l, err := New(Config{Level: "info", Encoding: "json"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = SetLevel("info") })

	require.NoError(t, SetLevel("DEBUG"))
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, SetLevel("error"))
	assert.False(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestSetLevel_RejectsUnknown(t *testing.T) {
	err := SetLevel("loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loud")
}
