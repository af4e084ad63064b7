package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestZapLoggerForwardsFields(t *testing.T) {
	var buf bytes.Buffer
	zlog := NewZapLogger(New(InfoLevel, &buf))

	zlog.Info("engine configured",
		zap.Int("max_iterations", 1000),
		zap.Float64("function_tolerance", 1e-8),
		zap.Bool("pooled_buffers", true),
		zap.String("strategy", "pooled"),
	)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "engine configured", entry["message"])
	assert.Equal(t, float64(1000), entry["max_iterations"])
	assert.Equal(t, 1e-8, entry["function_tolerance"])
	assert.Equal(t, true, entry["pooled_buffers"])
	assert.Equal(t, "pooled", entry["strategy"])
}

func TestZapAdapterRespectsLevelGate(t *testing.T) {
	var buf bytes.Buffer
	zlog := NewZapLogger(New(ErrorLevel, &buf))

	zlog.Info("suppressed")
	zlog.Debug("suppressed")
	assert.Zero(t, buf.Len())

	zlog.Error("emitted")
	assert.NotZero(t, buf.Len())
}

func TestZapAdapterWithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	zlog := NewZapLogger(New(InfoLevel, &buf)).With(zap.String("component", "neldermead"))

	zlog.Warn("slow solve", zap.Float64("seconds", 2.5))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "neldermead", entry["component"])
	assert.Equal(t, 2.5, entry["seconds"])
	assert.Equal(t, "WARN", entry["level"])
}

func TestMapLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, mapLevel(zapcore.DebugLevel))
	assert.Equal(t, InfoLevel, mapLevel(zapcore.InfoLevel))
	assert.Equal(t, WarnLevel, mapLevel(zapcore.WarnLevel))
	assert.Equal(t, ErrorLevel, mapLevel(zapcore.ErrorLevel))
	assert.Equal(t, ErrorLevel, mapLevel(zapcore.PanicLevel))
}
