package neldermead

import "github.com/quastix/smplx/internal/optimization"

// penalty maps an unconstrained objective onto a box-constrained one by
// adding weight*(violation)^2 for every coordinate outside its configured
// bound. The bound slices may be shorter than the problem dimension; axes
// past their end carry no bound, and -Inf/+Inf entries are inert because the
// violation comparison can never hold for them.
//
// penalty is pure: the added term is a function of the coordinates and the
// fixed configuration only. When no bounds are configured the engine uses
// the raw objective directly, so the unconstrained hot path pays nothing for
// the constrained case.
type penalty[T optimization.Float] struct {
	fn     optimization.Objective[T]
	lower  []T
	upper  []T
	weight T
}

func (p *penalty[T]) eval(x []T) T {
	v := p.fn(x)
	for i, lo := range p.lower {
		if x[i] < lo {
			d := lo - x[i]
			v += p.weight * d * d
		}
	}
	for i, hi := range p.upper {
		if x[i] > hi {
			d := x[i] - hi
			v += p.weight * d * d
		}
	}
	return v
}
