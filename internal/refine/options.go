package refine

import (
	"runtime"

	"go.uber.org/zap"
)

// Option configures an engine.
type Option func(e *Engine)

// WithLogger sets a logger. Solving progress is logged at debug level, failed
// analyses of [Engine.AnalyzeAll] at warn level.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithWorkers limits the number of methods [Engine.AnalyzeAll] analyzes at once.
// Non-positive values mean the number of CPUs.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n <= 0 {
			n = runtime.NumCPU()
		}
		e.workers = n
	}
}
