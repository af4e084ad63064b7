// Package objectives provides the standard benchmark functions used to
// exercise and compare the optimizer: Rosenbrock, Sphere, Booth, Beale,
// Himmelblau and Powell, plus a registry so the server and CLI can resolve
// them by name.
package objectives

import (
	"sort"

	"github.com/quastix/smplx/internal/optimization"
)

// Func is a float64 objective.
type Func = optimization.Objective[float64]

// Sphere is f(x) = sum(x_i^2), any dimension, minimum 0 at the origin.
func Sphere(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return sum
}

// Rosenbrock is f(x,y) = (1-x)^2 + 100*(y-x^2)^2, minimum 0 at (1,1).
func Rosenbrock(x []float64) float64 {
	a := 1 - x[0]
	b := x[1] - x[0]*x[0]
	return a*a + 100*b*b
}

// Booth is f(x,y) = (x+2y-7)^2 + (2x+y-5)^2, minimum 0 at (1,3).
func Booth(x []float64) float64 {
	a := x[0] + 2*x[1] - 7
	b := 2*x[0] + x[1] - 5
	return a*a + b*b
}

// Beale has its minimum 0 at (3, 0.5).
func Beale(x []float64) float64 {
	a := 1.5 - x[0] + x[0]*x[1]
	b := 2.25 - x[0] + x[0]*x[1]*x[1]
	c := 2.625 - x[0] + x[0]*x[1]*x[1]*x[1]
	return a*a + b*b + c*c
}

// Himmelblau is f(x,y) = (x^2+y-11)^2 + (x+y^2-7)^2 with four minima of 0,
// one of them at (3,2).
func Himmelblau(x []float64) float64 {
	a := x[0]*x[0] + x[1] - 11
	b := x[0] + x[1]*x[1] - 7
	return a*a + b*b
}

// Powell is the 4-dimensional Powell singular function, minimum 0 at the
// origin.
func Powell(x []float64) float64 {
	a := x[0] + 10*x[1]
	b := x[2] - x[3]
	c := x[1] - 2*x[2]
	d := x[0] - x[3]
	return a*a + 5*b*b + c*c*c*c + 10*d*d*d*d
}

var registry = map[string]Func{
	"sphere":     Sphere,
	"rosenbrock": Rosenbrock,
	"booth":      Booth,
	"beale":      Beale,
	"himmelblau": Himmelblau,
	"powell":     Powell,
}

// Lookup resolves a registered objective by name.
func Lookup(name string) (Func, bool) {
	f, ok := registry[name]
	return f, ok
}

// Names returns the registered objective names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
