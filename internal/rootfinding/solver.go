package rootfinding

// Solver holds the active strategy and delegates solves to it. The strategy
// can be swapped between solves.
type Solver struct {
	strategy Strategy
}

// NewSolver creates a solver using the given strategy.
func NewSolver(strategy Strategy) *Solver {
	return &Solver{strategy: strategy}
}

// SetStrategy replaces the active strategy.
func (s *Solver) SetStrategy(strategy Strategy) {
	s.strategy = strategy
}

// Strategy returns the active strategy.
func (s *Solver) Strategy() Strategy {
	return s.strategy
}

// Solve runs the active strategy.
func (s *Solver) Solve(start Interval, settings Settings) (Result, error) {
	if s.strategy == nil {
		return Result{}, NewError(ErrInvalidArgument, "no strategy set").WithOperation("solve")
	}
	return s.strategy.Solve(start, settings)
}

// History returns the history of the active strategy's most recent solve.
func (s *Solver) History() []float64 {
	if s.strategy == nil {
		return []float64{}
	}
	return s.strategy.History()
}
