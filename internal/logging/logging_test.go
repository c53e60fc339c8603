package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"WARN", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"loud", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	logger, err := New(Options{Level: "warn"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	dev, err := New(Options{Level: "debug", Development: true})
	require.NoError(t, err)
	assert.True(t, dev.Core().Enabled(zapcore.DebugLevel))

	_, err = New(Options{Level: "nope"})
	assert.Error(t, err)
}

func TestNewWriter(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWriter(&buf, Options{Level: "info"})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("loaded module", zap.String("module", "engine"))

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "loaded module")
	assert.Contains(t, buf.String(), `"module": "engine"`)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil, errors.New("boom")))

	logger := zap.NewExample()
	assert.Same(t, logger, OrNop(logger, nil))
}
