package bracketing

import (
	"math"

	"github.com/copyleftdev/ROOTS/internal/rootfinding"
)

// RegulaFalsi (false position) takes the x-intercept of the chord between the
// bracket ends as the next estimate and keeps the bracket like bisection.
//
// One bound can stay fixed for many iterations, so the bracket width is not a
// usable stopping signal. The error metric is the absolute change between
// successive estimates instead.
type RegulaFalsi struct {
	f       rootfinding.Function
	history rootfinding.History
	bracket rootfinding.Interval
}

// NewRegulaFalsi creates a regula-falsi strategy for f.
func NewRegulaFalsi(f rootfinding.Function) *RegulaFalsi {
	return &RegulaFalsi{f: f}
}

// Name implements rootfinding.Strategy.
func (r *RegulaFalsi) Name() string {
	return "regula_falsi"
}

// Solve implements rootfinding.Strategy. start must bracket a sign change.
func (r *RegulaFalsi) Solve(start rootfinding.Interval, settings rootfinding.Settings) (rootfinding.Result, error) {
	r.history.Reset()
	r.bracket = start.Ordered()

	br, err := newBracket(r.Name(), r.f, start)
	if err != nil {
		return rootfinding.Result{}, err
	}

	// The first distance is measured from the lower bound.
	previous := br.lower

	it := rootfinding.IteratorFunc(func() (rootfinding.Step, error) {
		middle := (br.fUpper*br.lower - br.fLower*br.upper) / (br.fUpper - br.fLower)
		distance := math.Abs(middle - previous)
		previous = middle

		exact, err := br.narrow(middle)
		r.bracket = br.interval()
		if err != nil {
			return rootfinding.Step{}, err
		}
		return rootfinding.Step{Estimate: middle, Error: distance, Exact: exact}, nil
	})

	initial := rootfinding.Step{Estimate: br.lower, Error: math.Inf(1)}
	return rootfinding.Run(it, initial, settings, &r.history)
}

// History implements rootfinding.Strategy.
func (r *RegulaFalsi) History() []float64 {
	return r.history.Values()
}

// Reset implements rootfinding.Strategy.
func (r *RegulaFalsi) Reset() {
	r.history.Reset()
}

// Bracket returns the bracket left by the most recent Solve.
func (r *RegulaFalsi) Bracket() rootfinding.Interval {
	return r.bracket
}
