package solver

import (
	"go.uber.org/zap"

	"github.com/sirkon/qualflow/internal/cfg"
	"github.com/sirkon/qualflow/internal/store"
)

// Option configures solving.
type Option func(o *options)

type options struct {
	logger   *zap.Logger
	onUpdate func(b *cfg.Block, out *store.Store)
}

// WithLogger sets a logger for solving progress. Everything is logged at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// OnUpdate sets an observer of block exit store updates.
func OnUpdate(f func(b *cfg.Block, out *store.Store)) Option {
	return func(o *options) {
		o.onUpdate = f
	}
}
