// Package scan locates sign changes of a function by uniform sampling.
package scan

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/copyleftdev/ROOTS/internal/rootfinding"
)

// Scan splits [lower, upper] into segments equal steps and returns every
// adjacent pair of sample points whose function values have strictly opposite
// signs, in ascending order.
//
// Sampling is not adaptive: a sign change that reverses within one step is
// missed, and a sample that lands exactly on a root produces no pair. Scan
// keeps no state, so a reported pair can be rescanned at a finer resolution.
func Scan(f rootfinding.Function, lower, upper float64, segments int) ([]rootfinding.Interval, error) {
	if segments < 1 {
		return nil, rootfinding.NewErrorf(rootfinding.ErrInvalidArgument,
			"segments must be at least 1, got %d", segments).WithOperation("scan")
	}
	if math.IsNaN(lower) || math.IsNaN(upper) || math.IsInf(lower, 0) || math.IsInf(upper, 0) {
		return nil, rootfinding.NewErrorf(rootfinding.ErrInvalidArgument,
			"bounds must be finite, got [%g, %g]", lower, upper).WithOperation("scan")
	}
	if lower >= upper {
		return nil, rootfinding.NewErrorf(rootfinding.ErrInvalidArgument,
			"lower bound %g must be below upper bound %g", lower, upper).WithOperation("scan")
	}

	xs := floats.Span(make([]float64, segments+1), lower, upper)

	changes := make([]rootfinding.Interval, 0)
	prevX, prevY := xs[0], f(xs[0])
	for _, x := range xs[1:] {
		y := f(x)
		if prevY*y < 0 {
			changes = append(changes, rootfinding.Interval{Lower: prevX, Upper: x})
		}
		prevX, prevY = x, y
	}
	return changes, nil
}

// Root is one root located by Roots.
type Root struct {
	Bracket rootfinding.Interval `json:"bracket"`
	Result  rootfinding.Result   `json:"result"`
	History []float64            `json:"history,omitempty"`
}

// Roots scans [lower, upper] and refines every bracket found with a fresh
// strategy built by newStrategy. A bracket whose refinement fails aborts the
// search; the roots located so far are returned with the error. ctx is checked
// before every bracket and between iterations, so a cancelled search stops
// with an error wrapping ctx.Err().
func Roots(
	ctx context.Context,
	f rootfinding.Function,
	lower, upper float64,
	segments int,
	newStrategy func(rootfinding.Function) rootfinding.Strategy,
	settings rootfinding.Settings,
) ([]Root, error) {
	brackets, err := Scan(f, lower, upper, segments)
	if err != nil {
		return nil, err
	}

	settings.Context = ctx
	roots := make([]Root, 0, len(brackets))
	for _, b := range brackets {
		if err := ctx.Err(); err != nil {
			return roots, &rootfinding.Error{Message: "search cancelled", Op: "roots", Err: err}
		}
		strategy := newStrategy(f)
		res, err := strategy.Solve(b, settings)
		if err != nil {
			return roots, err
		}
		roots = append(roots, Root{
			Bracket: b,
			Result:  res,
			History: strategy.History(),
		})
	}
	return roots, nil
}
