package rootfinding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// halving produces estimates 1, 2, 3, ... with errors that halve each step.
func halving() Iterator {
	n := 0
	err := 1.0
	return IteratorFunc(func() (Step, error) {
		n++
		err /= 2
		return Step{Estimate: float64(n), Error: err}, nil
	})
}

func TestRunStopsAtTolerance(t *testing.T) {
	var history History
	var seen []int

	res, err := Run(halving(), Step{Estimate: 0, Error: 1}, Settings{
		MaxError:      0.1,
		MaxIterations: 100,
		Observer: func(i int, x float64) {
			seen = append(seen, i)
		},
	}, &history)

	require.NoError(t, err)
	assert.Equal(t, 4, res.Iterations)
	assert.Equal(t, 4.0, res.Estimate)
	assert.Equal(t, 0.0625, res.Error)
	assert.True(t, res.Converged)
	assert.False(t, res.Exact)
	assert.Equal(t, []float64{1, 2, 3, 4}, history.Values())
	assert.Equal(t, []int{0, 1, 2, 3}, seen)
}

func TestRunIterationCapIsNotAnError(t *testing.T) {
	constant := IteratorFunc(func() (Step, error) {
		return Step{Estimate: 7, Error: 1}, nil
	})

	res, err := Run(constant, Step{Error: 1}, Settings{MaxError: 1e-9, MaxIterations: 3}, nil)

	require.NoError(t, err)
	assert.Equal(t, 3, res.Iterations)
	assert.False(t, res.Converged)
	assert.Equal(t, 1.0, res.Error)
}

func TestRunDefaultIterationCap(t *testing.T) {
	constant := IteratorFunc(func() (Step, error) {
		return Step{Estimate: 7, Error: 1}, nil
	})

	res, err := Run(constant, Step{Error: 1}, Settings{MaxError: 1e-9}, nil)

	require.NoError(t, err)
	assert.Equal(t, DefaultMaxIterations, res.Iterations)
}

func TestRunExactRootStopsWithZeroTolerance(t *testing.T) {
	calls := 0
	it := IteratorFunc(func() (Step, error) {
		calls++
		return Step{Estimate: 0, Error: 0.5, Exact: calls == 2}, nil
	})

	res, err := Run(it, Step{Error: 1}, Settings{MaxError: 0, MaxIterations: 100}, nil)

	require.NoError(t, err)
	assert.Equal(t, 2, res.Iterations)
	assert.True(t, res.Exact)
	assert.True(t, res.Converged)
	assert.Equal(t, 0.0, res.Error)
}

func TestRunStopsWhenEstimateStopsMoving(t *testing.T) {
	it := IteratorFunc(func() (Step, error) {
		return Step{Estimate: 3, Error: 0}, nil
	})

	res, err := Run(it, Step{Error: 1}, Settings{MaxError: 0, MaxIterations: 100}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Iterations)
	assert.True(t, res.Converged)
}

func TestRunIteratorErrorAborts(t *testing.T) {
	var history History
	boom := NewError(ErrBracketViolation, "boom")
	n := 0
	it := IteratorFunc(func() (Step, error) {
		n++
		if n == 3 {
			return Step{}, boom
		}
		return Step{Estimate: float64(n), Error: 1}, nil
	})

	res, err := Run(it, Step{Error: 1}, Settings{MaxError: 1e-9, MaxIterations: 100}, &history)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBracketViolation))
	assert.Equal(t, 2, res.Iterations)
	assert.Equal(t, 2.0, res.Estimate)
	assert.Equal(t, []float64{1, 2}, history.Values())
}

func TestRunRejectsNegativeTolerance(t *testing.T) {
	_, err := Run(halving(), Step{Error: 1}, Settings{MaxError: -1}, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestRunStartBelowTolerance(t *testing.T) {
	res, err := Run(halving(), Step{Estimate: 42, Error: 1e-12}, Settings{MaxError: 1e-6}, nil)

	require.NoError(t, err)
	assert.Equal(t, 0, res.Iterations)
	assert.Equal(t, 42.0, res.Estimate)
	assert.True(t, res.Converged)
}

func TestRunObserverDoesNotChangeResult(t *testing.T) {
	settings := Settings{MaxError: 1e-3, MaxIterations: 50}
	plain, err := Run(halving(), Step{Error: 1}, settings, nil)
	require.NoError(t, err)

	settings.Observer = func(int, float64) {}
	observed, err := Run(halving(), Step{Error: 1}, settings, nil)
	require.NoError(t, err)

	assert.Equal(t, plain, observed)
}

func TestHistorySnapshot(t *testing.T) {
	var h History
	assert.Equal(t, []float64{}, h.Values())

	h.Append(1)
	h.Append(2)
	snapshot := h.Values()
	snapshot[0] = 99

	assert.Equal(t, []float64{1, 2}, h.Values())
	assert.Equal(t, 2, h.Len())

	h.Reset()
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, []float64{99, 2}, snapshot)
}

func TestRunContextCancellation(t *testing.T) {
	tests := []struct {
		name     string
		cancelAt int
		wantIter int
	}{
		{name: "already cancelled", cancelAt: -1, wantIter: 0},
		{name: "cancelled by observer", cancelAt: 2, wantIter: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tt.cancelAt < 0 {
				cancel()
			}

			var history History
			res, err := Run(halving(), Step{Error: 1}, Settings{
				MaxError: 0,
				Context:  ctx,
				Observer: func(i int, x float64) {
					if i == tt.cancelAt {
						cancel()
					}
				},
			}, &history)

			require.Error(t, err)
			assert.True(t, errors.Is(err, context.Canceled))
			assert.Nil(t, KindOf(err))
			assert.Equal(t, tt.wantIter, res.Iterations)
			assert.Equal(t, tt.wantIter, history.Len())
			assert.False(t, res.Converged)
		})
	}
}

func TestRunContextDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()

	_, err := Run(halving(), Step{Error: 1}, Settings{MaxError: 0.1, Context: ctx}, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
