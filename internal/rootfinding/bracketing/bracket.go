// Package bracketing implements root-finding strategies that keep the root
// enclosed in an interval whose end values have opposite signs.
package bracketing

import (
	"fmt"

	"github.com/copyleftdev/ROOTS/internal/rootfinding"
)

// bracket is the shared interval state of a bracketing solve. The function
// values at both bounds are cached and always have opposite signs, except
// after an exact root collapses the interval to a point.
type bracket struct {
	component string
	f         rootfinding.Function

	lower, upper   float64
	fLower, fUpper float64
}

// newBracket checks the opposite-sign precondition on the ordered interval.
func newBracket(component string, f rootfinding.Function, iv rootfinding.Interval) (*bracket, error) {
	iv = iv.Ordered()
	fLower, fUpper := f(iv.Lower), f(iv.Upper)
	if !(fLower*fUpper < 0) {
		return nil, rootfinding.Infeasible(component, fLower, fUpper)
	}
	return &bracket{
		component: component,
		f:         f,
		lower:     iv.Lower,
		upper:     iv.Upper,
		fLower:    fLower,
		fUpper:    fUpper,
	}, nil
}

func (b *bracket) interval() rootfinding.Interval {
	return rootfinding.Interval{Lower: b.lower, Upper: b.upper}
}

// narrow replaces one bound with m so that the sign change is kept. It
// reports true when m is an exact root, in which case the bracket collapses
// to (m, m).
func (b *bracket) narrow(m float64) (bool, error) {
	fm := b.f(m)
	switch {
	case fm*b.fLower < 0:
		b.upper, b.fUpper = m, fm
	case fm*b.fUpper < 0:
		b.lower, b.fLower = m, fm
	case fm == 0:
		b.lower, b.upper = m, m
		b.fLower, b.fUpper = 0, 0
		return true, nil
	default:
		return false, &rootfinding.Error{
			Kind: rootfinding.ErrBracketViolation,
			Message: fmt.Sprintf("f(%g) = %g matches neither f(%g) = %g nor f(%g) = %g",
				m, fm, b.lower, b.fLower, b.upper, b.fUpper),
			Op:        "narrow",
			Component: b.component,
			FLower:    b.fLower,
			FUpper:    b.fUpper,
		}
	}
	return false, nil
}
