// Package open implements root-finding strategies that refine a scalar
// estimate without keeping a bracket. Convergence depends on the seeds.
package open

import (
	"math"

	"github.com/copyleftdev/ROOTS/internal/rootfinding"
)

// Secant approximates the derivative with the slope through the two most
// recent estimates.
type Secant struct {
	f       rootfinding.Function
	history rootfinding.History
}

// NewSecant creates a secant strategy for f.
func NewSecant(f rootfinding.Function) *Secant {
	return &Secant{f: f}
}

// Name implements rootfinding.Strategy.
func (s *Secant) Name() string {
	return "secant"
}

// Solve implements rootfinding.Strategy. start.Lower and start.Upper are the
// two seeds x0 and x1; they need not bracket a root.
func (s *Secant) Solve(start rootfinding.Interval, settings rootfinding.Settings) (rootfinding.Result, error) {
	s.history.Reset()

	prev, curr := start.Lower, start.Upper
	fPrev, fCurr := s.f(prev), s.f(curr)

	it := rootfinding.IteratorFunc(func() (rootfinding.Step, error) {
		if curr == prev {
			return rootfinding.Step{}, s.singular("coincident iterates x = %g", curr)
		}
		if fCurr == fPrev {
			return rootfinding.Step{}, s.singular("zero secant slope between x = %g and x = %g", prev, curr)
		}

		slope := (fCurr - fPrev) / (curr - prev)
		next := curr - fCurr/slope
		if !finite(next) {
			return rootfinding.Step{}, s.singular("non-finite estimate from x = %g with slope %g", curr, slope)
		}

		fNext := s.f(next)
		distance := math.Abs(next - curr)
		prev, fPrev = curr, fCurr
		curr, fCurr = next, fNext

		return rootfinding.Step{Estimate: next, Error: distance, Exact: fNext == 0}, nil
	})

	initial := rootfinding.Step{Estimate: curr, Error: math.Inf(1), Exact: fCurr == 0}
	return rootfinding.Run(it, initial, settings, &s.history)
}

func (s *Secant) singular(format string, args ...interface{}) error {
	return rootfinding.NewErrorf(rootfinding.ErrSingularStep, format, args...).
		WithOperation("step").
		WithComponent(s.Name())
}

// History implements rootfinding.Strategy.
func (s *Secant) History() []float64 {
	return s.history.Values()
}

// Reset implements rootfinding.Strategy.
func (s *Secant) Reset() {
	s.history.Reset()
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
