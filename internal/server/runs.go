package server

import (
	"sync"
	"time"

	"github.com/copyleftdev/ROOTS/internal/rootfinding"
)

// Run statuses.
const (
	StatusConverged = "converged"
	StatusExhausted = "exhausted"
	StatusFailed    = "failed"
)

// Run is the stored record of one solve request.
type Run struct {
	ID            string               `json:"id"`
	Method        string               `json:"method"`
	Function      string               `json:"function"`
	Derivative    string               `json:"derivative,omitempty"`
	Start         rootfinding.Interval `json:"start"`
	MaxError      float64              `json:"max_error"`
	MaxIterations int                  `json:"max_iterations"`

	Status     string              `json:"status"`
	Result     *rootfinding.Result `json:"result,omitempty"`
	Iterations int                 `json:"iterations"`
	ErrorKind  string              `json:"error_kind,omitempty"`
	Message    string              `json:"message,omitempty"`
	FLower     *float64            `json:"f_lower,omitempty"`
	FUpper     *float64            `json:"f_upper,omitempty"`
	History    []float64           `json:"history"`

	CreatedAt  time.Time `json:"created_at"`
	DurationMS float64   `json:"duration_ms"`
}

// runStore keeps the most recent runs, evicting the oldest beyond max.
// It is safe for concurrent use.
type runStore struct {
	mu    sync.RWMutex
	runs  map[string]*Run
	order []string
	max   int
}

func newRunStore(max int) *runStore {
	if max < 1 {
		max = 1
	}
	return &runStore{
		runs: make(map[string]*Run),
		max:  max,
	}
}

func (s *runStore) put(r *Run) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[r.ID]; !exists {
		s.order = append(s.order, r.ID)
	}
	s.runs[r.ID] = r

	for len(s.order) > s.max {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.runs, oldest)
	}
}

func (s *runStore) get(id string) (*Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	return r, ok
}

func (s *runStore) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[id]; !ok {
		return false
	}
	delete(s.runs, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *runStore) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

func (s *runStore) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = make(map[string]*Run)
	s.order = nil
}
