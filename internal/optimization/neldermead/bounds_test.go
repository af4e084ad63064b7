package neldermead

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quastix/smplx/internal/optimization"
	"github.com/quastix/smplx/internal/optimization/objectives"
)

func TestPenaltyAddsQuadraticTerm(t *testing.T) {
	p := &penalty[float64]{
		fn:     func(x []float64) float64 { return 0 },
		lower:  []float64{0, 0},
		upper:  []float64{1, 1},
		weight: 10,
	}

	tests := []struct {
		name string
		x    []float64
		want float64
	}{
		{"inside box", []float64{0.5, 0.5}, 0},
		{"on lower edge", []float64{0, 0.5}, 0},
		{"on upper edge", []float64{1, 0.5}, 0},
		{"below lower", []float64{-0.3, 0.5}, 10 * 0.3 * 0.3},
		{"above upper", []float64{0.5, 1.2}, 10 * 0.2 * 0.2},
		{"both axes out", []float64{-1, 2}, 10*1 + 10*1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, p.eval(tt.x), 1e-12)
		})
	}
}

func TestPenaltyShortSlicesAndInfinities(t *testing.T) {
	p := &penalty[float64]{
		fn:     func(x []float64) float64 { return 1 },
		lower:  []float64{math.Inf(-1)},          // axis 0 effectively unbounded
		upper:  []float64{math.Inf(1), 2},        // axis 1 capped at 2
		weight: 100,
	}

	assert.InDelta(t, 1.0, p.eval([]float64{-1e12, 2}), 1e-12,
		"infinite bounds and missing entries add nothing")
	assert.InDelta(t, 1.0+100*1, p.eval([]float64{0, 3}), 1e-12)
}

func TestMinimizeRespectsBounds(t *testing.T) {
	// The unconstrained minimum of the sphere sits at the origin, outside the
	// box [1,5]x[1,5]; the constrained minimum is the nearest corner.
	cfg := optimization.DefaultConfig[float64]()
	cfg.LowerBounds = []float64{1, 1}
	cfg.UpperBounds = []float64{5, 5}
	cfg.MaxIterations = 2000

	res, err := Minimize(objectives.Sphere, []float64{2, 2}, cfg)
	require.NoError(t, err)
	require.True(t, res.Converged)

	for i, v := range res.OptimalParameters {
		assert.InDelta(t, 1.0, v, 1e-2, "axis %d", i)
	}
}

func TestMinimizeBoundsMatchingDimensionExactly(t *testing.T) {
	cfg := optimization.DefaultConfig[float64]()
	cfg.LowerBounds = []float64{-10, -10}
	cfg.UpperBounds = []float64{10, 10}
	cfg.MaxIterations = 5000

	res, err := Minimize(objectives.Rosenbrock, []float64{-1.2, 1.0}, cfg)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.OptimalParameters[0], 1e-2)
	assert.InDelta(t, 1.0, res.OptimalParameters[1], 1e-2)
}

func TestInteriorSolutionUnaffectedByLooseBounds(t *testing.T) {
	// A box that contains the minimum strictly inside must not change the
	// answer relative to the unconstrained run.
	start := []float64{3, -2}
	cfg := optimization.DefaultConfig[float64]()

	free, err := Minimize(objectives.Sphere, start, cfg)
	require.NoError(t, err)

	cfg.LowerBounds = []float64{-100, -100}
	cfg.UpperBounds = []float64{100, 100}
	boxed, err := Minimize(objectives.Sphere, start, cfg)
	require.NoError(t, err)

	// The trajectory never leaves the box, so the penalty term is always
	// zero and the runs are identical.
	assert.Equal(t, free, boxed)
}
