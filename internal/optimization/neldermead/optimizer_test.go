package neldermead

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quastix/smplx/internal/optimization"
	"github.com/quastix/smplx/internal/optimization/objectives"
)

// shiftedQuadratic returns f(x) = sum((x_i - target_i)^2).
func shiftedQuadratic(target []float64) optimization.Objective[float64] {
	return func(x []float64) float64 {
		sum := 0.0
		for i, v := range x {
			d := v - target[i]
			sum += d * d
		}
		return sum
	}
}

func TestConvergesOnQuadratic(t *testing.T) {
	tests := []struct {
		name   string
		target []float64
		start  []float64
	}{
		{"1d", []float64{3}, []float64{-4}},
		{"2d", []float64{1, -2}, []float64{5, 5}},
		{"3d offset", []float64{0.5, -0.25, 2}, []float64{-1, -1, -1}},
		{"5d", []float64{1, 2, 3, 4, 5}, []float64{0, 0, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Minimize(shiftedQuadratic(tt.target), tt.start, optimization.DefaultConfig[float64]())
			require.NoError(t, err)

			assert.True(t, result.Converged, "expected convergence, got: %s", result.Message)
			for i, target := range tt.target {
				assert.InDelta(t, target, result.OptimalParameters[i], 1e-5, "axis %d", i)
			}
		})
	}
}

// Both tolerances gate termination: with the parameter gate loosened the run
// stops as soon as the value spread collapses, with the default gate it keeps
// tightening the simplex and lands closer to the optimum.
func TestParameterToleranceGatesTermination(t *testing.T) {
	target := []float64{1, -2}
	start := []float64{5, 5}

	coarse := optimization.DefaultConfig[float64]()
	coarse.ParameterTolerance = 0.5
	loose, err := Minimize(shiftedQuadratic(target), start, coarse)
	require.NoError(t, err)
	require.True(t, loose.Converged)

	tight, err := Minimize(shiftedQuadratic(target), start, optimization.DefaultConfig[float64]())
	require.NoError(t, err)
	require.True(t, tight.Converged)

	assert.Less(t, loose.FunctionEvaluations, tight.FunctionEvaluations)
	assert.LessOrEqual(t, tight.OptimalValue, loose.OptimalValue)
	for i, tgt := range target {
		assert.InDelta(t, tgt, tight.OptimalParameters[i], 1e-5, "axis %d", i)
	}
}

func TestFloat32Instantiation(t *testing.T) {
	sphere := func(x []float32) float32 {
		var sum float32
		for _, v := range x {
			sum += v * v
		}
		return sum
	}

	cfg := optimization.DefaultConfig[float32]()
	cfg.FunctionTolerance = 1e-5

	result, err := Minimize[float32](sphere, []float32{1.5, -2.5}, cfg)
	require.NoError(t, err)

	assert.True(t, result.Converged)
	for i, v := range result.OptimalParameters {
		assert.InDelta(t, 0, float64(v), 1e-2, "axis %d", i)
	}
}

// The engine is deterministic, so runs with a smaller iteration budget are
// exact prefixes of longer runs. The best value must never worsen as the
// budget grows.
func TestBestValueMonotonicAcrossIterations(t *testing.T) {
	cfg := optimization.DefaultConfig[float64]()
	cfg.FunctionTolerance = 1e-12

	prev := math.Inf(1)
	for budget := 1; budget <= 40; budget++ {
		cfg.MaxIterations = budget
		result, err := Minimize(objectives.Rosenbrock, []float64{-1.2, 1.0}, cfg)
		require.NoError(t, err)
		assert.LessOrEqual(t, result.OptimalValue, prev, "budget %d", budget)
		prev = result.OptimalValue
	}
}

func TestEvaluationAccounting(t *testing.T) {
	tests := []struct {
		name  string
		fn    optimization.Objective[float64]
		start []float64
	}{
		{"sphere 2d", objectives.Sphere, []float64{1, 1}},
		{"sphere 10d", objectives.Sphere, []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}},
		{"rosenbrock", objectives.Rosenbrock, []float64{-1.2, 1.0}},
		{"powell", objectives.Powell, []float64{3, -1, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Minimize(tt.fn, tt.start, optimization.DefaultConfig[float64]())
			require.NoError(t, err)

			n := len(tt.start)
			assert.GreaterOrEqual(t, result.FunctionEvaluations, result.Iterations+n+1,
				"initial simplex plus at least one evaluation per iteration")
		})
	}
}

func TestDeterminism(t *testing.T) {
	cfg := optimization.DefaultConfig[float64]()
	cfg.LowerBounds = []float64{-2}
	cfg.UpperBounds = []float64{2, 2}

	first, err := Minimize(objectives.Himmelblau, []float64{0, 0}, cfg)
	require.NoError(t, err)
	second, err := Minimize(objectives.Himmelblau, []float64{0, 0}, cfg)
	require.NoError(t, err)

	require.Equal(t, first, second, "identical inputs must produce bit-identical results")
}

func TestRosenbrockScenario(t *testing.T) {
	cfg := optimization.DefaultConfig[float64]()
	cfg.FunctionTolerance = 1e-6
	cfg.MaxIterations = 2000

	result, err := Minimize(objectives.Rosenbrock, []float64{-1.2, 1.0}, cfg)
	require.NoError(t, err)

	assert.True(t, result.Converged, "expected convergence, got: %s", result.Message)
	assert.InDelta(t, 1.0, result.OptimalParameters[0], 1e-3)
	assert.InDelta(t, 1.0, result.OptimalParameters[1], 1e-3)
}

func TestDegenerateStartAtOrigin(t *testing.T) {
	result, err := Minimize(shiftedQuadratic([]float64{2, -3, 1}), []float64{0, 0, 0}, optimization.DefaultConfig[float64]())
	require.NoError(t, err)

	assert.True(t, result.Converged)
	assert.Greater(t, result.Iterations, 0, "an all-zero start must still produce progress")
	assert.Greater(t, result.FunctionEvaluations, 4)
}

// A flat plateau with a small low spot around the origin defeats reflection
// and contraction alike: every candidate lands on the plateau, so each
// iteration has to fall through to the shrink branch until the whole
// simplex collapses into the low spot.
func TestPlateauForcesShrink(t *testing.T) {
	plateau := func(x []float64) float64 {
		if x[0]*x[0]+x[1]*x[1] < 1e-6 {
			return 0
		}
		return 1
	}

	result, err := Minimize(plateau, []float64{0, 0}, optimization.DefaultConfig[float64]())
	require.NoError(t, err)

	assert.True(t, result.Converged, "shrinking must collapse the simplex into the low spot")
	assert.Equal(t, 0.0, result.OptimalValue)

	// Reflection plus contraction account for at most 2 evaluations per
	// iteration; anything beyond that (plus the n+1 initial evaluations)
	// proves the shrink branch re-evaluated vertices.
	n := 2
	assert.Greater(t, result.FunctionEvaluations, n+1+2*result.Iterations,
		"expected shrink iterations costing more than 2 evaluations each")
}

func TestNaNRegionNeverWinsOverFinite(t *testing.T) {
	fn := func(x []float64) float64 {
		if x[0] < 0 {
			return math.NaN()
		}
		d := x[0] - 1
		return d * d
	}

	result, err := Minimize(fn, []float64{2}, optimization.DefaultConfig[float64]())
	require.NoError(t, err)

	assert.False(t, math.IsNaN(result.OptimalValue), "a NaN vertex must never be selected as best")
	assert.InDelta(t, 1.0, result.OptimalParameters[0], 1e-3)
}

func TestAllNaNObjectiveStillTerminates(t *testing.T) {
	nan := func(x []float64) float64 { return math.NaN() }

	cfg := optimization.DefaultConfig[float64]()
	cfg.MaxIterations = 25

	result, err := Minimize(nan, []float64{1, 2}, cfg)
	require.NoError(t, err)

	assert.False(t, result.Converged)
	assert.Equal(t, 25, result.Iterations)
}

func TestInvalidInput(t *testing.T) {
	valid := optimization.DefaultConfig[float64]()

	tests := []struct {
		name  string
		start []float64
		mut   func(*optimization.Config[float64])
	}{
		{"empty initial guess", nil, func(*optimization.Config[float64]) {}},
		{"zero max iterations", []float64{1}, func(c *optimization.Config[float64]) { c.MaxIterations = 0 }},
		{"negative max iterations", []float64{1}, func(c *optimization.Config[float64]) { c.MaxIterations = -5 }},
		{"zero simplex size", []float64{1}, func(c *optimization.Config[float64]) { c.InitialSimplexSize = 0 }},
		{"lower bounds too long", []float64{1}, func(c *optimization.Config[float64]) { c.LowerBounds = []float64{0, 0} }},
		{"upper bounds too long", []float64{1}, func(c *optimization.Config[float64]) { c.UpperBounds = []float64{0, 0} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mut(&cfg)

			_, err := Minimize(objectives.Sphere, tt.start, cfg)
			require.Error(t, err)

			_, ok := optimization.IsOptimizationError(err)
			assert.True(t, ok, "expected a typed optimization error, got %T", err)
		})
	}
}

func TestShortBoundSlicesLeaveTrailingAxesFree(t *testing.T) {
	cfg := optimization.DefaultConfig[float64]()
	cfg.LowerBounds = []float64{1} // only axis 0 bounded below

	result, err := Minimize(shiftedQuadratic([]float64{0, -3}), []float64{2, 2}, cfg)
	require.NoError(t, err)

	assert.True(t, result.Converged)
	assert.GreaterOrEqual(t, result.OptimalParameters[0], 1.0-1e-2, "axis 0 must respect its bound")
	assert.InDelta(t, -3.0, result.OptimalParameters[1], 1e-3, "axis 1 is unbounded")
}
