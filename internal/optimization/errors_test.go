package optimization

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			"message only",
			NewError("initial guess must not be empty"),
			"initial guess must not be empty",
		},
		{
			"with operation",
			NewError("bad input").WithOperation("Minimize"),
			"Minimize: bad input",
		},
		{
			"with component and operation",
			NewError("bad input").WithOperation("Minimize").WithComponent("neldermead"),
			"neldermead: Minimize: bad input",
		},
		{
			"formatted",
			NewErrorf("max iterations must be positive, got %d", -1),
			"max iterations must be positive, got -1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWrapError(t *testing.T) {
	inner := errors.New("disk full")
	wrapped := WrapError(inner, "config load failed")

	require.NotNil(t, wrapped)
	assert.Equal(t, "config load failed: disk full", wrapped.Error())
	assert.ErrorIs(t, wrapped, inner)

	assert.Nil(t, WrapError(nil, "no-op"))
}

func TestIsOptimizationError(t *testing.T) {
	typed := NewError("boom").WithComponent("neldermead")

	got, ok := IsOptimizationError(typed)
	require.True(t, ok)
	assert.Equal(t, "neldermead", got.Component)

	_, ok = IsOptimizationError(errors.New("plain"))
	assert.False(t, ok)

	_, ok = IsOptimizationError(nil)
	assert.False(t, ok)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig[float64]()
	assert.Equal(t, 1e-8, cfg.FunctionTolerance)
	assert.Equal(t, 1e-8, cfg.ParameterTolerance)
	assert.Equal(t, 1000, cfg.MaxIterations)
	assert.Equal(t, 0.05, cfg.InitialSimplexSize)
	assert.Equal(t, 1e6, cfg.PenaltyWeight)
	assert.Empty(t, cfg.LowerBounds)
	assert.Empty(t, cfg.UpperBounds)

	f32 := DefaultConfig[float32]()
	assert.Equal(t, float32(0.05), f32.InitialSimplexSize)
}
