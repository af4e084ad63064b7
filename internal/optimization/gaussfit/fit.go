package gaussfit

import (
	"math"

	"github.com/quastix/smplx/internal/optimization"
	"github.com/quastix/smplx/internal/optimization/neldermead"
)

// FitConfig returns the minimization settings used by Fit: default
// tolerances, a larger iteration budget for the 6-parameter search, and
// positivity lower bounds on the amplitudes and widths. The mean axes are
// left unbounded through inert -Inf entries.
func FitConfig() optimization.Config[float64] {
	cfg := optimization.DefaultConfig[float64]()
	cfg.MaxIterations = 5000
	unbounded := math.Inf(-1)
	cfg.LowerBounds = []float64{0, unbounded, MinSigma, 0, unbounded, MinSigma}
	return cfg
}

// Fit estimates double-Gaussian parameters for the given samples, deriving
// the starting point from the data itself. Samples must be ordered by x.
func Fit(xs, ys []float64) (optimization.Result[float64], error) {
	return FitWith(neldermead.New[float64](), xs, ys, FitConfig())
}

// FitWith runs the fit on a caller-supplied minimizer and configuration,
// letting batch callers share a pooled minimizer across datasets. The
// initial-guess heuristic needs one sample per half of the range, so at
// least two samples are required.
func FitWith(m *neldermead.Minimizer[float64], xs, ys []float64, cfg optimization.Config[float64]) (optimization.Result[float64], error) {
	if len(xs) != len(ys) {
		return optimization.Result[float64]{}, optimization.NewErrorf(
			"sample slices must be equal length, got %d and %d", len(xs), len(ys)).
			WithOperation("Fit").WithComponent("gaussfit")
	}
	if len(xs) < 2 {
		return optimization.Result[float64]{}, optimization.NewErrorf(
			"need at least 2 samples, got %d", len(xs)).
			WithOperation("Fit").WithComponent("gaussfit")
	}
	return m.Minimize(Objective(xs, ys), InitialGuess(xs, ys), cfg)
}
