package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/copyleftdev/ROOTS/internal/config"
	apperrors "github.com/copyleftdev/ROOTS/internal/errors"
	"github.com/copyleftdev/ROOTS/internal/expression"
	"github.com/copyleftdev/ROOTS/internal/logging"
	"github.com/copyleftdev/ROOTS/internal/metrics"
	"github.com/copyleftdev/ROOTS/internal/rootfinding"
	"github.com/copyleftdev/ROOTS/internal/rootfinding/scan"
)

// Logger defines the logging interface used by the server
// This allows us to be flexible with our logging implementation
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	Fatal(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

// Server implements the HTTP and JSON-RPC surface of the solver.
// Every request builds its own strategy instance, so requests never share
// iteration state. Completed solves are kept in a bounded run store.
type Server struct {
	cfg     *config.Config
	logger  Logger
	zap     *zap.Logger
	metrics *metrics.Metrics
	runs    *runStore
}

// NewServer creates a server instance with the given config, logger and
// metrics. A nil metrics value gets a private registry.
func NewServer(cfg *config.Config, logger Logger, m *metrics.Metrics) *Server {
	if m == nil {
		m = metrics.New()
	}
	return &Server{
		cfg:     cfg,
		logger:  logger,
		zap:     logging.NewZapLogger(logger.WithFields(map[string]interface{}{"component": "solver"})),
		metrics: m,
		runs:    newRunStore(cfg.Runs.MaxStored),
	}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/solve", s.handleSolve)
		r.Post("/scan", s.handleScan)
		r.Post("/roots", s.handleFindAll)
		r.Get("/runs/{id}", s.handleRun)
		r.Get("/runs/{id}/history.csv", s.handleHistoryCSV)
		r.Delete("/runs/{id}", s.handleDeleteRun)
	})

	// JSON-RPC 2.0 endpoint
	r.Post("/rpc", s.handleJSONRPC)
}

// Solve runs one solve and stores it. Computational failures (infeasible
// bracket, bracket violation, singular step) produce a run with status
// "failed"; only invalid requests return an error. A solve interrupted by ctx
// is not stored and returns a 503 error.
func (s *Server) Solve(ctx context.Context, req SolveRequest) (*Run, error) {
	req.Method = normalizeMethod(req.Method)
	if err := checkBounds(req.Lower, req.Upper); err != nil {
		return nil, err
	}
	settings, err := s.settings(req.MaxError, req.MaxIterations)
	if err != nil {
		return nil, err
	}
	strategy, err := newStrategy(&req)
	if err != nil {
		return nil, err
	}
	if req.Verbose {
		settings.Observer = logging.IterationObserver(s.zap, strategy.Name())
	}
	settings.Context = ctx

	run := &Run{
		ID:            uuid.NewString(),
		Method:        strategy.Name(),
		Function:      req.Function,
		Derivative:    req.Derivative,
		Start:         rootfinding.Interval{Lower: req.Lower, Upper: req.Upper},
		MaxError:      settings.MaxError,
		MaxIterations: settings.MaxIterations,
		CreatedAt:     time.Now().UTC(),
	}

	start := time.Now()
	res, solveErr := rootfinding.NewSolver(strategy).Solve(run.Start, settings)
	run.DurationMS = float64(time.Since(start).Microseconds()) / 1000.0
	run.History = strategy.History()
	run.Iterations = res.Iterations

	if cancelled(solveErr) {
		s.logger.Warn("Solve cancelled", map[string]interface{}{
			"method":     run.Method,
			"iterations": run.Iterations,
			"error":      solveErr.Error(),
		})
		return nil, apperrors.Wrap(solveErr, "solve cancelled").WithStatus(http.StatusServiceUnavailable)
	}

	switch {
	case solveErr != nil:
		run.Status = StatusFailed
		run.Message = solveErr.Error()
		if kind := rootfinding.KindOf(solveErr); kind != nil {
			run.ErrorKind = kindName(kind)
		}
		if e, ok := rootfinding.AsError(solveErr); ok && e.Kind == rootfinding.ErrInfeasible {
			fl, fu := e.FLower, e.FUpper
			if finite(fl) && finite(fu) {
				run.FLower, run.FUpper = &fl, &fu
			}
		}
	case res.Converged:
		run.Status = StatusConverged
		run.Result = &res
	default:
		run.Status = StatusExhausted
		run.Result = &res
	}

	s.runs.put(run)
	s.metrics.ObserveSolve(run.Method, run.Status, run.Iterations)

	fields := map[string]interface{}{
		"run_id":     run.ID,
		"method":     run.Method,
		"status":     run.Status,
		"iterations": run.Iterations,
	}
	if run.Status == StatusFailed {
		fields["error"] = run.Message
		s.logger.Warn("Solve failed", fields)
	} else {
		fields["estimate"] = res.Estimate
		fields["error_metric"] = res.Error
		s.logger.Info("Solve finished", fields)
	}

	return run, nil
}

// ScanResult lists the sign changes found by a scan.
type ScanResult struct {
	Function string                 `json:"function"`
	Segments int                    `json:"segments"`
	Brackets []rootfinding.Interval `json:"brackets"`
}

// Scan reports the sign changes of the requested function.
func (s *Server) Scan(req ScanRequest) (*ScanResult, error) {
	expr, segments, err := s.prepareScan(req)
	if err != nil {
		return nil, err
	}

	brackets, err := scan.Scan(expr.Function(), req.Lower, req.Upper, segments)
	if err != nil {
		return nil, apperrors.Wrap(err, "scan rejected").WithStatus(http.StatusBadRequest)
	}
	s.metrics.ObserveScan(len(brackets))

	return &ScanResult{Function: expr.String(), Segments: segments, Brackets: brackets}, nil
}

// FindAllResult lists the roots located in an interval.
type FindAllResult struct {
	Function string      `json:"function"`
	Method   string      `json:"method"`
	Segments int         `json:"segments"`
	Roots    []scan.Root `json:"roots"`
}

// FindAll scans for sign changes and refines each one with a bracketing
// method. ctx is checked between brackets and iterations; an interrupted
// search returns a 503 error.
func (s *Server) FindAll(ctx context.Context, req FindAllRequest) (*FindAllResult, error) {
	method := normalizeMethod(req.Method)
	factory, err := bracketingFactory(method)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings(req.MaxError, req.MaxIterations)
	if err != nil {
		return nil, err
	}
	expr, segments, err := s.prepareScan(req.ScanRequest)
	if err != nil {
		return nil, err
	}

	roots, err := scan.Roots(ctx, expr.Function(), req.Lower, req.Upper, segments, factory, settings)
	if err != nil {
		if cancelled(err) {
			s.logger.Warn("Search cancelled", map[string]interface{}{
				"method": method,
				"roots":  len(roots),
				"error":  err.Error(),
			})
			return nil, apperrors.Wrap(err, "search cancelled").WithStatus(http.StatusServiceUnavailable)
		}
		if rootfinding.KindOf(err) == rootfinding.ErrInvalidArgument {
			return nil, apperrors.Wrap(err, "scan rejected").WithStatus(http.StatusBadRequest)
		}
		return nil, apperrors.Wrap(err, "refining bracket failed").WithStatus(http.StatusUnprocessableEntity)
	}
	s.metrics.ObserveScan(len(roots))
	for _, r := range roots {
		status := StatusConverged
		if !r.Result.Converged {
			status = StatusExhausted
		}
		s.metrics.ObserveSolve(method, status, r.Result.Iterations)
	}

	return &FindAllResult{Function: expr.String(), Method: method, Segments: segments, Roots: roots}, nil
}

func (s *Server) prepareScan(req ScanRequest) (*expression.Expression, int, error) {
	if err := checkBounds(req.Lower, req.Upper); err != nil {
		return nil, 0, err
	}
	segments, err := s.segments(req.Segments)
	if err != nil {
		return nil, 0, err
	}
	expr, err := parseFunction(req.Function)
	if err != nil {
		return nil, 0, err
	}
	return expr, segments, nil
}

// cancelled reports whether err stems from a done request context.
func cancelled(err error) bool {
	return apperrors.Is(err, context.Canceled) || apperrors.Is(err, context.DeadlineExceeded)
}

// Run returns a stored run.
func (s *Server) Run(id string) (*Run, error) {
	run, ok := s.runs.get(id)
	if !ok {
		return nil, apperrors.NotFound("run %q not found", id)
	}
	return run, nil
}

// DeleteRun removes a stored run.
func (s *Server) DeleteRun(id string) error {
	if !s.runs.remove(id) {
		return apperrors.NotFound("run %q not found", id)
	}
	s.logger.Info("Run deleted", map[string]interface{}{"run_id": id})
	return nil
}

// handleJSONRPC handles JSON-RPC 2.0 requests
func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	var request struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      interface{}     `json:"id"`
		Method  string          `json:"method"`
		Params  json.RawMessage `json:"params,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.respondWithError(w, -32700, "Parse error", nil)
		return
	}

	// Validate JSON-RPC 2.0 request
	if request.JSONRPC != "2.0" {
		s.respondWithError(w, -32600, "Invalid Request", request.ID)
		return
	}

	var result interface{}
	var err error

	switch request.Method {
	case "roots.solve":
		var p SolveRequest
		if err = decodeParams(request.Params, &p); err == nil {
			result, err = s.Solve(r.Context(), p)
		}
	case "roots.scan":
		var p ScanRequest
		if err = decodeParams(request.Params, &p); err == nil {
			result, err = s.Scan(p)
		}
	case "roots.find_all":
		var p FindAllRequest
		if err = decodeParams(request.Params, &p); err == nil {
			result, err = s.FindAll(r.Context(), p)
		}
	case "roots.status":
		var p RunRequest
		if err = decodeParams(request.Params, &p); err == nil {
			result, err = s.Run(p.ID)
		}
	case "roots.delete":
		var p RunRequest
		if err = decodeParams(request.Params, &p); err == nil {
			err = s.DeleteRun(p.ID)
			result = map[string]string{"status": "deleted"}
		}
	default:
		s.respondWithError(w, -32601, "Method not found", request.ID)
		return
	}

	if err != nil {
		code := -32000
		if apperrors.StatusOf(err) == http.StatusBadRequest {
			code = -32602
		}
		s.respondWithError(w, code, err.Error(), request.ID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      request.ID,
		"result":  result,
	})
}

// respondWithError sends a JSON-RPC 2.0 error response
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string, id interface{}) {
	s.logger.Warn("JSON-RPC error", map[string]interface{}{
		"code":    code,
		"message": message,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"jsonrpc": "2.0",
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
		"id": id,
	})
}

// Close releases the stored runs.
func (s *Server) Close() error {
	s.runs.clear()
	return s.zap.Sync()
}
