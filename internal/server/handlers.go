package server

import (
	"encoding/csv"
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/copyleftdev/ROOTS/internal/errors"
	"github.com/copyleftdev/ROOTS/internal/expression"
	"github.com/copyleftdev/ROOTS/internal/rootfinding"
)

// handleSolve handles POST /api/v1/solve
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondHTTPError(w, apperrors.Wrapf(err, "invalid %s request body", "solve").WithStatus(http.StatusBadRequest))
		return
	}

	run, err := s.Solve(r.Context(), req)
	if err != nil {
		s.respondHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// handleScan handles POST /api/v1/scan
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondHTTPError(w, apperrors.Wrapf(err, "invalid %s request body", "scan").WithStatus(http.StatusBadRequest))
		return
	}

	result, err := s.Scan(req)
	if err != nil {
		s.respondHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleFindAll handles POST /api/v1/roots
func (s *Server) handleFindAll(w http.ResponseWriter, r *http.Request) {
	var req FindAllRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondHTTPError(w, apperrors.Wrapf(err, "invalid %s request body", "roots").WithStatus(http.StatusBadRequest))
		return
	}

	result, err := s.FindAll(r.Context(), req)
	if err != nil {
		s.respondHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleRun handles GET /api/v1/runs/{id}
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.Run(chi.URLParam(r, "id"))
	if err != nil {
		s.respondHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// handleDeleteRun handles DELETE /api/v1/runs/{id}
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if err := s.DeleteRun(chi.URLParam(r, "id")); err != nil {
		s.respondHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleHistoryCSV handles GET /api/v1/runs/{id}/history.csv, exporting one
// row per iteration with the change from the previous estimate.
func (s *Server) handleHistoryCSV(w http.ResponseWriter, r *http.Request) {
	run, err := s.Run(chi.URLParam(r, "id"))
	if err != nil {
		s.respondHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=history_"+run.ID+".csv")

	cw := csv.NewWriter(w)
	defer cw.Flush()

	_ = cw.Write([]string{"iteration", "estimate", "change"})
	for i, x := range run.History {
		change := ""
		if i > 0 {
			change = fmtFloat(math.Abs(x - run.History[i-1]))
		}
		_ = cw.Write([]string{strconv.Itoa(i), fmtFloat(x), change})
	}
}

// respondHTTPError writes err as {"error": message} with the status it carries.
func (s *Server) respondHTTPError(w http.ResponseWriter, err error) {
	status := apperrors.StatusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", map[string]interface{}{"error": err.Error()})
	}
	writeJSON(w, status, map[string]interface{}{
		"error": err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to encode response: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

func parseFunction(src string) (*expression.Expression, error) {
	expr, err := expression.Compile(src)
	if err != nil {
		return nil, apperrors.Wrap(err, "invalid function").WithStatus(http.StatusBadRequest)
	}
	return expr, nil
}

func kindName(kind error) string {
	switch kind {
	case rootfinding.ErrInfeasible:
		return "infeasible"
	case rootfinding.ErrBracketViolation:
		return "bracket_violation"
	case rootfinding.ErrSingularStep:
		return "singular_step"
	case rootfinding.ErrInvalidArgument:
		return "invalid_argument"
	}
	return "unknown"
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 16, 64)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
