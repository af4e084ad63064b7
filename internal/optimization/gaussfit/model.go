// Package gaussfit fits a two-peak Gaussian mixture to sampled data by
// minimizing the sum of squared residuals with the Nelder-Mead engine.
//
// The model is parameterized by a flat slice
// [A1, mu1, sigma1, A2, mu2, sigma2]:
//
//	g(x) = A1*exp(-0.5*((x-mu1)/sigma1)^2) + A2*exp(-0.5*((x-mu2)/sigma2)^2)
package gaussfit

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/quastix/smplx/internal/optimization"
)

// NumParams is the length of a parameter slice.
const NumParams = 6

// MinSigma is the smallest usable peak width. A width at or below zero is
// substituted with MinSigma instead of propagating a division failure, so
// the objective stays total over the whole search space.
const MinSigma = 1e-12

// Evaluate computes the model at x for the given parameters.
func Evaluate(params []float64, x float64) float64 {
	return peak(params[0], params[1], params[2], x) + peak(params[3], params[4], params[5], x)
}

func peak(amp, mu, sigma, x float64) float64 {
	if sigma < MinSigma {
		sigma = MinSigma
	}
	z := (x - mu) / sigma
	return amp * math.Exp(-0.5*z*z)
}

// Objective returns the sum-of-squared-residuals loss of the model over the
// given samples, as a pure function of the parameter slice.
func Objective(xs, ys []float64) optimization.Objective[float64] {
	return func(params []float64) float64 {
		ssr := 0.0
		for i, x := range xs {
			d := ys[i] - Evaluate(params, x)
			ssr += d * d
		}
		return ssr
	}
}

// InitialGuess derives starting parameters from the data: the sample range
// is split at its midpoint and each half contributes one peak, centered on
// the half's largest sample with its height as amplitude. Widths start at an
// eighth of the full range. Samples are assumed ordered by x; at least two
// are required so each half of the split is non-empty.
func InitialGuess(xs, ys []float64) []float64 {
	mid := (xs[0] + xs[len(xs)-1]) / 2
	split := 0
	for split < len(xs) && xs[split] < mid {
		split++
	}
	if split == 0 || split == len(xs) {
		// Degenerate split: seed both peaks from the global maximum.
		split = len(xs) / 2
	}

	width := (xs[len(xs)-1] - xs[0]) / 8
	if width < MinSigma {
		width = MinSigma
	}

	li := floats.MaxIdx(ys[:split])
	ri := split + floats.MaxIdx(ys[split:])

	return []float64{ys[li], xs[li], width, ys[ri], xs[ri], width}
}

// Synthesize evaluates the model at n evenly spaced points over [lo, hi],
// returning the sample grid and the noise-free model values.
func Synthesize(params []float64, n int, lo, hi float64) (xs, ys []float64) {
	xs = floats.Span(make([]float64, n), lo, hi)
	ys = make([]float64, n)
	for i, x := range xs {
		ys[i] = Evaluate(params, x)
	}
	return xs, ys
}
