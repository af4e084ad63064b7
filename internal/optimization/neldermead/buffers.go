package neldermead

import (
	"sync"

	"github.com/quastix/smplx/internal/optimization"
)

// buffers groups every piece of per-call scratch storage: the flat simplex
// buffer, cached values, the rank permutation and the four work vectors.
// Centralizing them behind a provisioning strategy keeps the algorithm
// identical whether storage is freshly allocated or rented from a pool; only
// where the bytes come from differs, never the evaluation order.
type buffers[T optimization.Float] struct {
	verts []T
	vals  []T
	order []int

	centroid   []T
	reflected  []T
	expanded   []T
	contracted []T
}

// resize makes every slice exactly the size an n-dimensional run needs,
// reusing backing arrays when they are large enough.
func (b *buffers[T]) resize(n int) {
	b.verts = grow(b.verts, (n+1)*n)
	b.vals = grow(b.vals, n+1)
	b.order = grow(b.order, n+1)
	b.centroid = grow(b.centroid, n)
	b.reflected = grow(b.reflected, n)
	b.expanded = grow(b.expanded, n)
	b.contracted = grow(b.contracted, n)
}

func grow[E any](s []E, n int) []E {
	if cap(s) < n {
		return make([]E, n)
	}
	return s[:n]
}

// bufferStrategy provisions scratch storage for one minimization call.
// Implementations must hand out storage that is invisible to every other
// in-flight call until released.
type bufferStrategy[T optimization.Float] interface {
	acquire(n int) *buffers[T]
	release(b *buffers[T])
}

// freshBuffers allocates new storage on every call.
type freshBuffers[T optimization.Float] struct{}

func (freshBuffers[T]) acquire(n int) *buffers[T] {
	b := &buffers[T]{}
	b.resize(n)
	return b
}

func (freshBuffers[T]) release(*buffers[T]) {}

// pooledBuffers reuses storage across calls through a sync.Pool, so
// concurrent minimizations can rent and return buffers safely. Contents are
// never read before being overwritten, so no zeroing happens on reuse.
type pooledBuffers[T optimization.Float] struct {
	pool sync.Pool
}

func newPooledBuffers[T optimization.Float]() *pooledBuffers[T] {
	p := &pooledBuffers[T]{}
	p.pool.New = func() any { return &buffers[T]{} }
	return p
}

func (p *pooledBuffers[T]) acquire(n int) *buffers[T] {
	b := p.pool.Get().(*buffers[T])
	b.resize(n)
	return b
}

func (p *pooledBuffers[T]) release(b *buffers[T]) {
	p.pool.Put(b)
}
