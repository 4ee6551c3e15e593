package logging

import (
	"go.uber.org/zap"

	"github.com/copyleftdev/ROOTS/internal/rootfinding"
)

// IterationObserver returns a rootfinding.Observer that logs every iteration
// of a solve at debug level.
func IterationObserver(logger *zap.Logger, method string) rootfinding.Observer {
	l := logger.Named("solver").With(zap.String("method", method))
	return func(iteration int, estimate float64) {
		l.Debug("Iteration", zap.Int("iteration", iteration), zap.Float64("estimate", estimate))
	}
}
