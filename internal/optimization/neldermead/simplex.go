package neldermead

import (
	"sort"

	"github.com/quastix/smplx/internal/optimization"
)

// simplex holds the n+1 vertices of the probe polytope in a single flat
// buffer, one cached objective value per vertex, and the rank permutation
// mapping rank (0 = best, n = worst) to vertex storage index. The engine
// exclusively owns the backing storage for the lifetime of one call.
type simplex[T optimization.Float] struct {
	n     int
	verts []T // (n+1)*n scalars, vertex i at [i*n, (i+1)*n)
	vals  []T // n+1 cached objective values
	order []int
}

// vertex returns the coordinate slice of vertex i. The slice is capped so a
// stray append cannot bleed into the next vertex.
func (s *simplex[T]) vertex(i int) []T {
	lo, hi := i*s.n, (i+1)*s.n
	return s.verts[lo:hi:hi]
}

// replace overwrites vertex i with x and caches its value, keeping
// coordinates and cached value consistent for the next ranking.
func (s *simplex[T]) replace(i int, x []T, fx T) {
	copy(s.vertex(i), x)
	s.vals[i] = fx
}

// rank rebuilds the permutation so that
// vals[order[0]] <= vals[order[1]] <= ... <= vals[order[n]].
// The sort is stable, with ties resolved by storage index; non-finite values
// order after every finite value so a NaN vertex can never rank best.
func (s *simplex[T]) rank() {
	for i := range s.order {
		s.order[i] = i
	}
	sort.SliceStable(s.order, func(i, j int) bool {
		return less(s.vals[s.order[i]], s.vals[s.order[j]])
	})
}

func (s *simplex[T]) best() int        { return s.order[0] }
func (s *simplex[T]) worst() int       { return s.order[s.n] }
func (s *simplex[T]) secondWorst() int { return s.order[s.n-1] }

// diameter returns the largest per-axis distance from vertex ref to any
// other vertex.
func (s *simplex[T]) diameter(ref int) T {
	refVert := s.vertex(ref)
	var d T
	for i := 0; i <= s.n; i++ {
		if i == ref {
			continue
		}
		v := s.vertex(i)
		for j := 0; j < s.n; j++ {
			if dist := abs(v[j] - refVert[j]); dist > d {
				d = dist
			}
		}
	}
	return d
}

// less orders a strictly before b under IEEE comparison with NaN treated as
// worse than everything. A NaN value is never "better": comparisons against
// it report false on the left and true on the right, so NaN vertices sink to
// the worst ranks and are never accepted over a finite candidate.
func less[T optimization.Float](a, b T) bool {
	if isNaN(a) {
		return false
	}
	if isNaN(b) {
		return true
	}
	return a < b
}

func isNaN[T optimization.Float](v T) bool { return v != v }

func abs[T optimization.Float](v T) T {
	if v < 0 {
		return -v
	}
	return v
}
