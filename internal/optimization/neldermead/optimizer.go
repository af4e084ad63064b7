// Package neldermead implements the Nelder-Mead downhill simplex method for
// derivative-free minimization of a scalar objective, generic over
// floating-point precision, with optional box constraints enforced through a
// quadratic penalty.
//
// One call to Minimize runs synchronously to convergence or iteration
// exhaustion. The engine holds no shared mutable state across calls, so
// independent minimizations may run concurrently; a pooled Minimizer shares
// only a thread-safe buffer pool between them.
package neldermead

import (
	"github.com/quastix/smplx/internal/optimization"
)

// Standard Nelder-Mead coefficients.
const (
	reflectionCoeff  = 1.0
	expansionCoeff   = 2.0
	contractionCoeff = 0.5
	shrinkCoeff      = 0.5
)

const (
	msgConverged = "Function tolerance reached"
	msgExhausted = "Maximum iterations reached"
)

// Minimizer runs Nelder-Mead minimizations with a fixed buffer-provisioning
// strategy. The strategy is a resource concern only: fresh and pooled
// minimizers produce bit-identical results for identical inputs.
type Minimizer[T optimization.Float] struct {
	buffers bufferStrategy[T]
}

// New returns a Minimizer that allocates scratch storage per call.
func New[T optimization.Float]() *Minimizer[T] {
	return &Minimizer[T]{buffers: freshBuffers[T]{}}
}

// NewPooled returns a Minimizer that reuses scratch storage across calls
// through a concurrent pool. Worth it for large dimensionality or many
// repeated solves; safe to share between goroutines.
func NewPooled[T optimization.Float]() *Minimizer[T] {
	return &Minimizer[T]{buffers: newPooledBuffers[T]()}
}

// Minimize is a convenience wrapper running a single minimization with
// per-call allocation.
func Minimize[T optimization.Float](objective optimization.Objective[T], initialGuess []T, cfg optimization.Config[T]) (optimization.Result[T], error) {
	return New[T]().Minimize(objective, initialGuess, cfg)
}

// Minimize searches for a local minimum of objective starting from
// initialGuess. It returns a caller error for malformed input before any
// simplex construction; for well-formed input it always returns a Result,
// degrading gracefully on pathological objectives instead of aborting.
func (m *Minimizer[T]) Minimize(objective optimization.Objective[T], initialGuess []T, cfg optimization.Config[T]) (optimization.Result[T], error) {
	if err := validate(initialGuess, cfg); err != nil {
		return optimization.Result[T]{}, err
	}

	n := len(initialGuess)
	buf := m.buffers.acquire(n)
	defer m.buffers.release(buf)

	r := &run[T]{
		n:   n,
		cfg: cfg,
		s:   simplex[T]{n: n, verts: buf.verts, vals: buf.vals, order: buf.order},
		centroid:   buf.centroid,
		reflected:  buf.reflected,
		expanded:   buf.expanded,
		contracted: buf.contracted,
	}

	if len(cfg.LowerBounds) == 0 && len(cfg.UpperBounds) == 0 {
		// Unconstrained: the raw objective is the hot path, no wrapper.
		r.eval = objective
	} else {
		weight := cfg.PenaltyWeight
		if weight <= 0 {
			weight = optimization.DefaultPenaltyWeight
		}
		p := &penalty[T]{fn: objective, lower: cfg.LowerBounds, upper: cfg.UpperBounds, weight: weight}
		r.eval = p.eval
	}

	return r.minimize(initialGuess), nil
}

func validate[T optimization.Float](initialGuess []T, cfg optimization.Config[T]) error {
	if len(initialGuess) == 0 {
		return optimization.NewError("initial guess must not be empty").
			WithOperation("Minimize").WithComponent("neldermead")
	}
	if cfg.MaxIterations <= 0 {
		return optimization.NewErrorf("max iterations must be positive, got %d", cfg.MaxIterations).
			WithOperation("Minimize").WithComponent("neldermead")
	}
	if !(cfg.InitialSimplexSize > 0) {
		return optimization.NewErrorf("initial simplex size must be positive, got %v", cfg.InitialSimplexSize).
			WithOperation("Minimize").WithComponent("neldermead")
	}
	n := len(initialGuess)
	if len(cfg.LowerBounds) > n {
		return optimization.NewErrorf("lower bounds length %d exceeds dimension %d", len(cfg.LowerBounds), n).
			WithOperation("Minimize").WithComponent("neldermead")
	}
	if len(cfg.UpperBounds) > n {
		return optimization.NewErrorf("upper bounds length %d exceeds dimension %d", len(cfg.UpperBounds), n).
			WithOperation("Minimize").WithComponent("neldermead")
	}
	return nil
}

// run is the state of one minimization call.
type run[T optimization.Float] struct {
	n    int
	cfg  optimization.Config[T]
	eval optimization.Objective[T]

	evals int
	s     simplex[T]

	centroid   []T
	reflected  []T
	expanded   []T
	contracted []T
}

func (r *run[T]) evaluate(x []T) T {
	r.evals++
	return r.eval(x)
}

func (r *run[T]) minimize(x0 []T) optimization.Result[T] {
	r.initSimplex(x0)

	for iter := 0; iter < r.cfg.MaxIterations; iter++ {
		r.s.rank()
		if r.converged() {
			return r.result(iter, true, msgConverged)
		}
		r.step()
	}

	r.s.rank()
	return r.result(r.cfg.MaxIterations, false, msgExhausted)
}

// converged tests both termination gates: the value spread across the simplex
// must drop to FunctionTolerance, and the simplex must have collapsed to
// ParameterTolerance in every coordinate. The value gate alone can trip while
// the simplex is still wide, leaving the best vertex well short of the
// optimum near a flat or zero-valued minimum.
func (r *run[T]) converged() bool {
	if !(r.s.vals[r.s.worst()]-r.s.vals[r.s.best()] <= r.cfg.FunctionTolerance) {
		return false
	}
	return r.s.diameter(r.s.best()) <= r.cfg.ParameterTolerance
}

// initSimplex builds the initial simplex around x0: vertex 0 is x0 itself
// and vertex i perturbs axis i-1 by |x0[i-1]|*size, or by size when that
// coordinate is zero, so the simplex is non-degenerate even at the origin.
// A perturbation that would violate a configured bound flips direction.
// All n+1 vertices are evaluated here, before the first iteration.
func (r *run[T]) initSimplex(x0 []T) {
	size := r.cfg.InitialSimplexSize
	for i := 0; i <= r.n; i++ {
		copy(r.s.vertex(i), x0)
	}
	for i := 1; i <= r.n; i++ {
		axis := i - 1
		step := abs(x0[axis]) * size
		if x0[axis] == 0 {
			step = size
		}
		cand := x0[axis] + step
		if r.violatesBound(axis, cand) {
			cand = x0[axis] - step
		}
		r.s.vertex(i)[axis] = cand
	}
	for i := 0; i <= r.n; i++ {
		r.s.vals[i] = r.evaluate(r.s.vertex(i))
	}
}

func (r *run[T]) violatesBound(axis int, v T) bool {
	if axis < len(r.cfg.LowerBounds) && v < r.cfg.LowerBounds[axis] {
		return true
	}
	if axis < len(r.cfg.UpperBounds) && v > r.cfg.UpperBounds[axis] {
		return true
	}
	return false
}

// step performs one reflect/expand/contract/shrink iteration. The rank
// permutation is assumed current on entry and is left stale on exit.
func (r *run[T]) step() {
	n := r.n
	best := r.s.best()
	worst := r.s.worst()

	// Centroid of every vertex except the worst.
	for j := 0; j < n; j++ {
		r.centroid[j] = 0
	}
	for i := 0; i <= n; i++ {
		if i == worst {
			continue
		}
		v := r.s.vertex(i)
		for j := 0; j < n; j++ {
			r.centroid[j] += v[j]
		}
	}
	inv := T(1) / T(n)
	for j := 0; j < n; j++ {
		r.centroid[j] *= inv
	}

	worstVert := r.s.vertex(worst)
	for j := 0; j < n; j++ {
		r.reflected[j] = r.centroid[j] + reflectionCoeff*(r.centroid[j]-worstVert[j])
	}
	fr := r.evaluate(r.reflected)

	fb := r.s.vals[best]
	fs := r.s.vals[r.s.secondWorst()]
	fw := r.s.vals[worst]

	// Accept the reflected point when it sits between best and second-worst.
	if !less(fr, fb) && less(fr, fs) {
		r.s.replace(worst, r.reflected, fr)
		return
	}

	// Reflected beats the best vertex: try to expand further out.
	if less(fr, fb) {
		for j := 0; j < n; j++ {
			r.expanded[j] = r.centroid[j] + expansionCoeff*(r.reflected[j]-r.centroid[j])
		}
		fe := r.evaluate(r.expanded)
		if less(fe, fr) {
			r.s.replace(worst, r.expanded, fe)
		} else {
			r.s.replace(worst, r.reflected, fr)
		}
		return
	}

	// Contract toward the better of reflected and current worst.
	base, fcompare := worstVert, fw
	if less(fr, fw) {
		base, fcompare = r.reflected, fr
	}
	for j := 0; j < n; j++ {
		r.contracted[j] = r.centroid[j] + contractionCoeff*(base[j]-r.centroid[j])
	}
	fc := r.evaluate(r.contracted)
	if less(fc, fcompare) {
		r.s.replace(worst, r.contracted, fc)
		return
	}

	// Shrink every non-best vertex toward the best and re-evaluate.
	bestVert := r.s.vertex(best)
	for i := 0; i <= n; i++ {
		if i == best {
			continue
		}
		v := r.s.vertex(i)
		for j := 0; j < n; j++ {
			v[j] = bestVert[j] + shrinkCoeff*(v[j]-bestVert[j])
		}
		r.s.vals[i] = r.evaluate(v)
	}
}

// result builds the terminal record. The best point is copied out so the
// returned slice stays valid after the internal buffers are released.
func (r *run[T]) result(iterations int, converged bool, message string) optimization.Result[T] {
	best := r.s.best()
	return optimization.Result[T]{
		OptimalParameters:   append([]T(nil), r.s.vertex(best)...),
		OptimalValue:        r.s.vals[best],
		Iterations:          iterations,
		FunctionEvaluations: r.evals,
		Converged:           converged,
		Message:             message,
	}
}
