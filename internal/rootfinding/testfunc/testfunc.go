// Package testfunc provides reference functions with known roots for tests.
package testfunc

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/copyleftdev/ROOTS/internal/rootfinding"
)

// Case is a function with an analytic derivative and known roots.
type Case struct {
	Name  string
	F     rootfinding.Function
	DF    rootfinding.Function
	Roots []float64
	// Bracket encloses exactly one sign change, at Roots[0].
	Bracket rootfinding.Interval
}

// CubeRootOfFour is x^3 - 4, root 4^(1/3) ≈ 1.5874.
var CubeRootOfFour = Case{
	Name:    "x^3-4",
	F:       func(x float64) float64 { return x*x*x - 4 },
	DF:      func(x float64) float64 { return 3 * x * x },
	Roots:   []float64{math.Cbrt(4)},
	Bracket: rootfinding.Interval{Lower: -3, Upper: 3},
}

// SqrtTwo is x^2 - 2 with the positive root bracketed.
var SqrtTwo = Case{
	Name:    "x^2-2",
	F:       func(x float64) float64 { return x*x - 2 },
	DF:      func(x float64) float64 { return 2 * x },
	Roots:   []float64{math.Sqrt2, -math.Sqrt2},
	Bracket: rootfinding.Interval{Lower: 0, Upper: 2},
}

// Identity is f(x) = x.
var Identity = Case{
	Name:    "x",
	F:       func(x float64) float64 { return x },
	DF:      func(x float64) float64 { return 1 },
	Roots:   []float64{0},
	Bracket: rootfinding.Interval{Lower: -1, Upper: 2},
}

// Cosine is cos(x) with the root pi/2 bracketed.
var Cosine = Case{
	Name:    "cos(x)",
	F:       math.Cos,
	DF:      func(x float64) float64 { return -math.Sin(x) },
	Roots:   []float64{math.Pi / 2},
	Bracket: rootfinding.Interval{Lower: 0, Upper: 3},
}

// NoRealRoot is x^2 + 1.
var NoRealRoot = Case{
	Name:    "x^2+1",
	F:       func(x float64) float64 { return x*x + 1 },
	DF:      func(x float64) float64 { return 2 * x },
	Bracket: rootfinding.Interval{Lower: -3, Upper: 3},
}

// Monotonic lists well-behaved, strictly monotonic cases on their brackets.
func Monotonic() []Case {
	return []Case{CubeRootOfFour, SqrtTwo, Identity, Cosine}
}

// Steps returns |h[i] - h[i-1]| for consecutive estimates, starting from seed.
func Steps(seed float64, history []float64) []float64 {
	steps := make([]float64, len(history))
	prev := seed
	for i, x := range history {
		steps[i] = math.Abs(x - prev)
		prev = x
	}
	return steps
}

// AssertNonIncreasing fails the test if any value exceeds its predecessor.
func AssertNonIncreasing(t *testing.T, values []float64) {
	t.Helper()
	for i := 1; i < len(values); i++ {
		if values[i] > values[i-1] {
			t.Fatalf("value %d (%v) exceeds value %d (%v)", i, values[i], i-1, values[i-1])
		}
	}
}

// AssertStrictlyDecreasing fails the test unless every value is below its
// predecessor.
func AssertStrictlyDecreasing(t *testing.T, values []float64) {
	t.Helper()
	for i := 1; i < len(values); i++ {
		if values[i] >= values[i-1] {
			t.Fatalf("value %d (%v) is not below value %d (%v)", i, values[i], i-1, values[i-1])
		}
	}
}

// AssertSlicesEqual checks if two float64 slices are approximately equal.
func AssertSlicesEqual(t *testing.T, got, want []float64, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	if !floats.EqualApprox(got, want, tol) {
		t.Fatalf("slices differ beyond %v: got %v, want %v", tol, got, want)
	}
}
