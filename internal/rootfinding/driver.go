package rootfinding

// Step is what an Iterator produces on each pass.
type Step struct {
	Estimate float64
	Error    float64
	// Exact marks an estimate where the function is exactly zero.
	Exact bool
}

// Iterator advances a strategy's internal state by one iteration.
type Iterator interface {
	Next() (Step, error)
}

// IteratorFunc adapts a function to the Iterator interface.
type IteratorFunc func() (Step, error)

// Next calls f.
func (f IteratorFunc) Next() (Step, error) {
	return f()
}

// History is an append-only record of per-iteration estimates.
type History struct {
	values []float64
}

// Append records one estimate.
func (h *History) Append(x float64) {
	h.values = append(h.values, x)
}

// Reset empties the history.
func (h *History) Reset() {
	h.values = nil
}

// Len returns the number of recorded estimates.
func (h *History) Len() int {
	return len(h.values)
}

// Values returns a copy of the recorded estimates.
func (h *History) Values() []float64 {
	if len(h.values) == 0 {
		return []float64{}
	}
	return append([]float64(nil), h.values...)
}

// Run iterates it until the error metric drops below settings.MaxError, an
// exact root is found, or settings.MaxIterations passes have been made. A zero
// error metric also stops the loop, even when MaxError is zero. Strategies
// report zero once their estimate can no longer move; a metric that stalls
// above zero runs to the iteration cap.
//
// start carries the estimate and error before the first iteration. Exhausting
// the iteration cap is not an error; Result.Converged reports it. An error
// from the iterator stops the loop at once and is returned together with the
// progress made so far. A done settings.Context is handled the same way.
func Run(it Iterator, start Step, settings Settings, history *History) (Result, error) {
	settings, err := settings.normalize()
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Estimate: start.Estimate,
		Error:    start.Error,
		Exact:    start.Exact,
	}
	if res.Exact {
		res.Error = 0
	}

	for !res.Exact && res.Error > 0 && res.Error >= settings.MaxError && res.Iterations < settings.MaxIterations {
		if settings.Context != nil {
			if err := settings.Context.Err(); err != nil {
				return res, &Error{Message: "solve cancelled", Op: "run", Err: err}
			}
		}

		step, err := it.Next()
		if err != nil {
			return res, err
		}

		res.Estimate = step.Estimate
		res.Error = step.Error
		if step.Exact {
			res.Exact = true
			res.Error = 0
		}

		if settings.Observer != nil {
			settings.Observer(res.Iterations, res.Estimate)
		}
		if history != nil {
			history.Append(res.Estimate)
		}
		res.Iterations++
	}

	res.Converged = res.Exact || res.Error < settings.MaxError || res.Error == 0
	return res, nil
}
