package bracketing

import (
	"github.com/copyleftdev/ROOTS/internal/rootfinding"
)

// Bisection halves the bracket on every iteration.
//
// Its error metric is half the width of the bracket the midpoint was taken
// from, so after n iterations the error equals (upper-lower)/2^n. Once the
// bounds are adjacent floats the midpoint equals one of them and the error is
// reported as zero.
type Bisection struct {
	f       rootfinding.Function
	history rootfinding.History
	bracket rootfinding.Interval
}

// NewBisection creates a bisection strategy for f.
func NewBisection(f rootfinding.Function) *Bisection {
	return &Bisection{f: f}
}

// Name implements rootfinding.Strategy.
func (b *Bisection) Name() string {
	return "bisection"
}

// Solve implements rootfinding.Strategy. start must bracket a sign change.
func (b *Bisection) Solve(start rootfinding.Interval, settings rootfinding.Settings) (rootfinding.Result, error) {
	b.history.Reset()
	b.bracket = start.Ordered()

	br, err := newBracket(b.Name(), b.f, start)
	if err != nil {
		return rootfinding.Result{}, err
	}

	it := rootfinding.IteratorFunc(func() (rootfinding.Step, error) {
		middle := (br.lower + br.upper) / 2
		halfWidth := (br.upper - br.lower) / 2
		if middle <= br.lower || middle >= br.upper {
			// The bounds are adjacent floats; the bracket cannot shrink further.
			return rootfinding.Step{Estimate: middle, Error: 0}, nil
		}

		exact, err := br.narrow(middle)
		b.bracket = br.interval()
		if err != nil {
			return rootfinding.Step{}, err
		}
		return rootfinding.Step{Estimate: middle, Error: halfWidth, Exact: exact}, nil
	})

	initial := rootfinding.Step{
		Estimate: (br.lower + br.upper) / 2,
		Error:    (br.upper - br.lower) / 2,
	}
	return rootfinding.Run(it, initial, settings, &b.history)
}

// History implements rootfinding.Strategy.
func (b *Bisection) History() []float64 {
	return b.history.Values()
}

// Reset implements rootfinding.Strategy.
func (b *Bisection) Reset() {
	b.history.Reset()
}

// Bracket returns the bracket left by the most recent Solve.
func (b *Bisection) Bracket() rootfinding.Interval {
	return b.bracket
}
