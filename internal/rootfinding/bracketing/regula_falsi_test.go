package bracketing

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/ROOTS/internal/rootfinding"
	"github.com/copyleftdev/ROOTS/internal/rootfinding/testfunc"
)

func TestRegulaFalsiExactInterceptStopsImmediately(t *testing.T) {
	r := NewRegulaFalsi(testfunc.Identity.F)

	res, err := r.Solve(testfunc.Identity.Bracket, rootfinding.Settings{MaxError: 0, MaxIterations: 400})

	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Estimate)
	assert.Equal(t, 0.0, res.Error)
	assert.True(t, res.Exact)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, []float64{0}, r.History())
}

func TestRegulaFalsiConvergesOnMonotonicFunctions(t *testing.T) {
	for _, c := range testfunc.Monotonic() {
		t.Run(c.Name, func(t *testing.T) {
			res, err := NewRegulaFalsi(c.F).Solve(c.Bracket, rootfinding.Settings{MaxError: 1e-12, MaxIterations: 500})
			require.NoError(t, err)
			assert.True(t, res.Converged)
			assert.InDelta(t, c.Roots[0], res.Estimate, 1e-8)
		})
	}
}

func TestRegulaFalsiErrorIsDistanceBetweenEstimates(t *testing.T) {
	cubic := testfunc.CubeRootOfFour
	r := NewRegulaFalsi(cubic.F)

	first, err := r.Solve(cubic.Bracket, rootfinding.Settings{MaxError: 0, MaxIterations: 1})
	require.NoError(t, err)
	// Chord from (-3, -31) to (3, 23) crosses zero at 4/9.
	assert.InDelta(t, 4.0/9.0, first.Estimate, 1e-15)
	assert.Equal(t, math.Abs(first.Estimate-cubic.Bracket.Lower), first.Error)

	for _, n := range []int{2, 5, 10} {
		res, err := r.Solve(cubic.Bracket, rootfinding.Settings{MaxError: 0, MaxIterations: n})
		require.NoError(t, err)

		h := r.History()
		require.Len(t, h, n)
		assert.Equal(t, testfunc.Steps(cubic.Bracket.Lower, h)[n-1], res.Error)
	}
}

func TestRegulaFalsiKeepsFixedEndOnConvexFunction(t *testing.T) {
	cubic := testfunc.CubeRootOfFour
	r := NewRegulaFalsi(cubic.F)

	_, err := r.Solve(cubic.Bracket, rootfinding.Settings{MaxError: 1e-10})
	require.NoError(t, err)

	br := r.Bracket()
	assert.Equal(t, cubic.Bracket.Upper, br.Upper)
	assert.True(t, br.Contains(cubic.Roots[0]))
	assert.Greater(t, br.Width(), 1.0)
}

func TestRegulaFalsiInfeasibleInput(t *testing.T) {
	r := NewRegulaFalsi(testfunc.NoRealRoot.F)

	res, err := r.Solve(testfunc.NoRealRoot.Bracket, rootfinding.Settings{MaxError: 1e-6})

	require.Error(t, err)
	assert.True(t, errors.Is(err, rootfinding.ErrInfeasible))
	assert.Equal(t, 0, res.Iterations)
	assert.Empty(t, r.History())

	e, ok := rootfinding.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "regula_falsi", e.Component)
}

func TestRegulaFalsiBracketViolation(t *testing.T) {
	f := func(x float64) float64 {
		if x == 0 {
			return math.NaN()
		}
		return x
	}
	r := NewRegulaFalsi(f)

	_, err := r.Solve(rootfinding.Interval{Lower: -1, Upper: 2}, rootfinding.Settings{MaxError: 1e-6})

	require.Error(t, err)
	assert.True(t, errors.Is(err, rootfinding.ErrBracketViolation))
	assert.Empty(t, r.History())
}

func TestRegulaFalsiIdempotent(t *testing.T) {
	c := testfunc.Cosine
	r := NewRegulaFalsi(c.F)
	settings := rootfinding.Settings{MaxError: 1e-9}

	first, err := r.Solve(c.Bracket, settings)
	require.NoError(t, err)
	firstHistory := r.History()

	second, err := r.Solve(c.Bracket, settings)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstHistory, r.History())
}

func TestRegulaFalsiEstimatesStayInsideBracket(t *testing.T) {
	for _, c := range testfunc.Monotonic() {
		t.Run(c.Name, func(t *testing.T) {
			r := NewRegulaFalsi(c.F)
			_, err := r.Solve(c.Bracket, rootfinding.Settings{MaxError: 1e-10})
			require.NoError(t, err)

			for _, x := range r.History() {
				assert.True(t, c.Bracket.Contains(x), "estimate %v outside %v", x, c.Bracket)
			}
		})
	}
}
