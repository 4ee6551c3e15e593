package open

import (
	"math"

	"github.com/copyleftdev/ROOTS/internal/rootfinding"
)

// Newton is the Newton-Raphson method. The derivative is supplied by the
// caller; it is never approximated numerically.
type Newton struct {
	f, df   rootfinding.Function
	history rootfinding.History
}

// NewNewton creates a Newton-Raphson strategy for f with derivative df.
func NewNewton(f, df rootfinding.Function) *Newton {
	return &Newton{f: f, df: df}
}

// Name implements rootfinding.Strategy.
func (n *Newton) Name() string {
	return "newton"
}

// Solve implements rootfinding.Strategy. start.Lower is the seed x0;
// start.Upper is not used.
func (n *Newton) Solve(start rootfinding.Interval, settings rootfinding.Settings) (rootfinding.Result, error) {
	n.history.Reset()

	x := start.Lower
	fx := n.f(x)

	it := rootfinding.IteratorFunc(func() (rootfinding.Step, error) {
		slope := n.df(x)
		if slope == 0 || !finite(slope) {
			return rootfinding.Step{}, rootfinding.NewErrorf(rootfinding.ErrSingularStep,
				"derivative is %g at x = %g", slope, x).
				WithOperation("step").
				WithComponent(n.Name())
		}

		next := x - fx/slope
		if !finite(next) {
			return rootfinding.Step{}, rootfinding.NewErrorf(rootfinding.ErrSingularStep,
				"non-finite estimate from x = %g, f(x) = %g, f'(x) = %g", x, fx, slope).
				WithOperation("step").
				WithComponent(n.Name())
		}

		distance := math.Abs(next - x)
		x, fx = next, n.f(next)

		return rootfinding.Step{Estimate: x, Error: distance, Exact: fx == 0}, nil
	})

	initial := rootfinding.Step{Estimate: x, Error: math.Inf(1), Exact: fx == 0}
	return rootfinding.Run(it, initial, settings, &n.history)
}

// History implements rootfinding.Strategy.
func (n *Newton) History() []float64 {
	return n.history.Values()
}

// Reset implements rootfinding.Strategy.
func (n *Newton) Reset() {
	n.history.Reset()
}
