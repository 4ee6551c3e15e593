// Package rootfinding approximates roots of univariate real functions.
//
// A Strategy (bisection, regula-falsi, secant, Newton-Raphson) supplies the
// rule that produces the next estimate; Run drives any strategy until the
// error metric falls below the tolerance or the iteration cap is reached.
package rootfinding

import (
	"context"
	"math"
)

// DefaultMaxIterations is used when Settings.MaxIterations is not positive.
const DefaultMaxIterations = 500

// Function defines a real function of one real variable.
type Function func(x float64) float64

// Observer is notified once per completed iteration. It cannot influence
// the iteration.
type Observer func(iteration int, estimate float64)

// Interval is a pair of real bounds. Bracketing strategies treat it as a
// bracket; open strategies treat it as their seed points.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Width returns Upper - Lower.
func (i Interval) Width() float64 {
	return i.Upper - i.Lower
}

// Contains reports whether x lies in the closed interval.
func (i Interval) Contains(x float64) bool {
	return x >= i.Lower && x <= i.Upper
}

// Ordered returns the interval with Lower <= Upper.
func (i Interval) Ordered() Interval {
	if i.Lower > i.Upper {
		return Interval{Lower: i.Upper, Upper: i.Lower}
	}
	return i
}

// Settings controls a single solve.
type Settings struct {
	// MaxError is the tolerance the error metric is compared against.
	MaxError float64

	// MaxIterations is a hard cap, independent of convergence.
	MaxIterations int

	// Observer, if set, receives every (iteration, estimate) pair.
	Observer Observer

	// Context, if set, is checked before every iteration. Once it is done the
	// solve stops with an error wrapping ctx.Err().
	Context context.Context
}

// normalize applies defaults and rejects unusable values.
func (s Settings) normalize() (Settings, error) {
	if math.IsNaN(s.MaxError) || s.MaxError < 0 {
		return s, NewErrorf(ErrInvalidArgument, "max error must be a non-negative number, got %v", s.MaxError).
			WithOperation("run")
	}
	if s.MaxIterations <= 0 {
		s.MaxIterations = DefaultMaxIterations
	}
	return s, nil
}

// Result is the outcome of a solve.
type Result struct {
	// Estimate is the last computed approximation.
	Estimate float64 `json:"estimate"`

	// Error is the error metric at loop exit. It may exceed the tolerance when
	// the iteration cap was hit.
	Error float64 `json:"error"`

	// Iterations is the number of completed iterations.
	Iterations int `json:"iterations"`

	// Converged is false when the iteration cap stopped the loop.
	Converged bool `json:"converged"`

	// Exact is set when the function evaluated to exactly zero at Estimate.
	Exact bool `json:"exact"`
}

// Strategy is a root-finding method bound to a function.
//
// A strategy instance owns its history and internal iterate; calls to Solve on
// one instance must be serialised by the caller.
type Strategy interface {
	// Name returns a short identifier used in logs, metrics and errors.
	Name() string

	// Solve approximates a root starting from the given interval.
	Solve(start Interval, settings Settings) (Result, error)

	// History returns a snapshot of the estimates of the most recent Solve.
	History() []float64

	// Reset discards the recorded history.
	Reset()
}
