package server

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"strings"

	apperrors "github.com/copyleftdev/ROOTS/internal/errors"
	"github.com/copyleftdev/ROOTS/internal/expression"
	"github.com/copyleftdev/ROOTS/internal/rootfinding"
	"github.com/copyleftdev/ROOTS/internal/rootfinding/bracketing"
	"github.com/copyleftdev/ROOTS/internal/rootfinding/open"
)

// Method names accepted in requests.
const (
	MethodBisection   = "bisection"
	MethodRegulaFalsi = "regula_falsi"
	MethodSecant      = "secant"
	MethodNewton      = "newton"
)

// maxAbsBound keeps midpoints and chord intercepts of user bounds finite.
const maxAbsBound = 1e100

// SolveRequest asks for one root. For bracketing methods Lower and Upper are
// the bracket; for secant they are the two seeds; Newton starts from Lower.
type SolveRequest struct {
	Method        string   `json:"method"`
	Function      string   `json:"function"`
	Derivative    string   `json:"derivative,omitempty"`
	Lower         float64  `json:"lower"`
	Upper         float64  `json:"upper"`
	MaxError      *float64 `json:"max_error,omitempty"`
	MaxIterations int      `json:"max_iterations,omitempty"`
	Verbose       bool     `json:"verbose,omitempty"`
}

// ScanRequest asks for the sign changes of a function on [Lower, Upper].
type ScanRequest struct {
	Function string  `json:"function"`
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
	Segments int     `json:"segments,omitempty"`
}

// FindAllRequest scans [Lower, Upper] and refines every bracket with a
// bracketing method.
type FindAllRequest struct {
	ScanRequest
	Method        string   `json:"method,omitempty"`
	MaxError      *float64 `json:"max_error,omitempty"`
	MaxIterations int      `json:"max_iterations,omitempty"`
}

// RunRequest identifies a stored run.
type RunRequest struct {
	ID string `json:"id"`
}

// decodeParams accepts either a JSON object or an array whose first element is
// the object, the form used by positional JSON-RPC params.
func decodeParams(raw json.RawMessage, dst interface{}) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return apperrors.BadRequest("missing required parameters")
	}
	if raw[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil {
			return apperrors.Wrap(err, "invalid parameter format").WithStatus(http.StatusBadRequest)
		}
		if len(list) == 0 {
			return apperrors.BadRequest("missing required parameters")
		}
		raw = list[0]
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperrors.Wrap(err, "invalid parameter format, expected object").WithStatus(http.StatusBadRequest)
	}
	return nil
}

func normalizeMethod(method string) string {
	m := strings.ToLower(strings.TrimSpace(method))
	m = strings.ReplaceAll(m, "-", "_")
	switch m {
	case "":
		return MethodBisection
	case "false_position", "regulafalsi":
		return MethodRegulaFalsi
	case "newton_raphson":
		return MethodNewton
	}
	return m
}

// bracketingFactory returns a constructor for a bracketing method.
func bracketingFactory(method string) (func(rootfinding.Function) rootfinding.Strategy, error) {
	switch method {
	case MethodBisection:
		return func(f rootfinding.Function) rootfinding.Strategy { return bracketing.NewBisection(f) }, nil
	case MethodRegulaFalsi:
		return func(f rootfinding.Function) rootfinding.Strategy { return bracketing.NewRegulaFalsi(f) }, nil
	default:
		return nil, apperrors.BadRequest("method %q is not a bracketing method", method)
	}
}

// newStrategy compiles the request's expressions and builds its strategy.
// The request's expression text is replaced by its trimmed form.
func newStrategy(req *SolveRequest) (rootfinding.Strategy, error) {
	expr, err := parseFunction(req.Function)
	if err != nil {
		return nil, err
	}
	req.Function = expr.String()
	f := expr.Function()

	switch req.Method {
	case MethodBisection, MethodRegulaFalsi:
		factory, err := bracketingFactory(req.Method)
		if err != nil {
			return nil, err
		}
		return factory(f), nil
	case MethodSecant:
		return open.NewSecant(f), nil
	case MethodNewton:
		if strings.TrimSpace(req.Derivative) == "" {
			return nil, apperrors.BadRequest("method newton requires a derivative")
		}
		dexpr, err := expression.Compile(req.Derivative)
		if err != nil {
			return nil, apperrors.Wrap(err, "invalid derivative").WithStatus(http.StatusBadRequest)
		}
		req.Derivative = dexpr.String()
		return open.NewNewton(f, dexpr.Function()), nil
	default:
		return nil, apperrors.BadRequest("unknown method %q", req.Method)
	}
}

func checkBounds(lower, upper float64) error {
	for _, v := range []float64{lower, upper} {
		if math.IsNaN(v) || math.Abs(v) > maxAbsBound {
			return apperrors.BadRequest("bounds must be finite numbers within ±%g", maxAbsBound)
		}
	}
	return nil
}

// settings resolves tolerance and iteration cap against the configured
// defaults and limits.
func (s *Server) settings(maxError *float64, maxIterations int) (rootfinding.Settings, error) {
	st := rootfinding.Settings{
		MaxError:      s.cfg.Solver.MaxError,
		MaxIterations: s.cfg.Solver.MaxIterations,
	}
	if maxError != nil {
		if math.IsNaN(*maxError) || *maxError < 0 {
			return st, apperrors.BadRequest("max_error must be a non-negative number")
		}
		st.MaxError = *maxError
	}
	if maxIterations < 0 {
		return st, apperrors.BadRequest("max_iterations must not be negative")
	}
	if maxIterations > 0 {
		if maxIterations > s.cfg.Solver.MaxIterationsLimit {
			return st, apperrors.BadRequest("max_iterations must not exceed %d", s.cfg.Solver.MaxIterationsLimit)
		}
		st.MaxIterations = maxIterations
	}
	return st, nil
}

func (s *Server) segments(requested int) (int, error) {
	switch {
	case requested < 0:
		return 0, apperrors.BadRequest("segments must not be negative")
	case requested == 0:
		return s.cfg.Scan.Segments, nil
	case requested > s.cfg.Scan.MaxSegments:
		return 0, apperrors.BadRequest("segments must not exceed %d", s.cfg.Scan.MaxSegments)
	}
	return requested, nil
}
