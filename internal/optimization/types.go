// Package optimization defines the shared types for the SMPLX
// derivative-free optimization core: the scalar constraint, objective
// signature, per-call configuration and the immutable result record.
package optimization

// Float is the scalar constraint shared by the optimization core. The
// algorithm only needs arithmetic, comparison, absolute value and the
// zero/one identities, so a single implementation serves both precisions.
type Float interface {
	~float32 | ~float64
}

// Objective is a pure scalar function of several real variables. The
// optimizer never retains the coordinate slice across calls; callers must
// not either.
type Objective[T Float] func(x []T) T

// Default configuration values.
const (
	DefaultFunctionTolerance  = 1e-8
	DefaultParameterTolerance = 1e-8
	DefaultMaxIterations      = 1000
	DefaultInitialSimplexSize = 0.05

	// DefaultPenaltyWeight is chosen so that any out-of-bounds vertex ranks
	// worse than any in-bounds vertex for objectives of ordinary magnitude.
	DefaultPenaltyWeight = 1e6
)

// Config holds the immutable per-call settings of a minimization.
type Config[T Float] struct {
	// FunctionTolerance gates termination: the run converges once the value
	// spread across the simplex drops to this level or below.
	FunctionTolerance T

	// ParameterTolerance is the second termination gate: the simplex must
	// also have collapsed to this per-coordinate spread around the best
	// vertex. Without it the value gate can trip near a flat minimum while
	// the parameters are still far from the optimum.
	ParameterTolerance T

	// MaxIterations bounds the iteration loop. Must be positive.
	MaxIterations int

	// LowerBounds and UpperBounds are independently optional per-axis box
	// constraints, enforced through a quadratic penalty. Either slice may be
	// shorter than the problem dimension; axes past its end are unbounded.
	// An entry of -Inf (lower) or +Inf (upper) is inert.
	LowerBounds []T
	UpperBounds []T

	// InitialSimplexSize is the relative per-axis perturbation used to build
	// the initial simplex. Must be positive.
	InitialSimplexSize T

	// PenaltyWeight scales the quadratic bound-violation penalty. Values
	// <= 0 fall back to DefaultPenaltyWeight.
	PenaltyWeight T
}

// DefaultConfig returns a Config populated with the default tolerances,
// iteration budget and simplex sizing.
func DefaultConfig[T Float]() Config[T] {
	return Config[T]{
		FunctionTolerance:  DefaultFunctionTolerance,
		ParameterTolerance: DefaultParameterTolerance,
		MaxIterations:      DefaultMaxIterations,
		InitialSimplexSize: DefaultInitialSimplexSize,
		PenaltyWeight:      DefaultPenaltyWeight,
	}
}

// Result is the immutable record returned by a minimization. It is built
// exactly once, at the terminal step of a call.
type Result[T Float] struct {
	// OptimalParameters is the best point found, copied out of the internal
	// simplex buffer.
	OptimalParameters []T `json:"optimal_parameters"`

	// OptimalValue is the objective value at OptimalParameters, including
	// any bound penalty.
	OptimalValue T `json:"optimal_value"`

	// Iterations is the number of iterations executed.
	Iterations int `json:"iterations"`

	// FunctionEvaluations is the cumulative number of objective
	// evaluations, counting the n+1 spent building the initial simplex.
	FunctionEvaluations int `json:"function_evaluations"`

	// Converged reports whether the function-tolerance test terminated the
	// run. False means the iteration budget was exhausted; the best point
	// found so far is still returned.
	Converged bool `json:"converged"`

	// Message is a human-readable termination status.
	Message string `json:"message"`
}
