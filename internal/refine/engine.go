package refine

import (
	"cmp"
	"maps"
	"runtime"
	"slices"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/sirkon/qualflow/internal/cfg"
	"github.com/sirkon/qualflow/internal/lattice"
	"github.com/sirkon/qualflow/internal/mir"
	"github.com/sirkon/qualflow/internal/points"
	"github.com/sirkon/qualflow/internal/solver"
	"github.com/sirkon/qualflow/internal/store"
	"github.com/sirkon/qualflow/internal/transfer"
)

// Engine analyzes method bodies of one base type system.
type Engine struct {
	rules   *transfer.Rules
	tr      *transfer.Transfer
	logger  *zap.Logger
	workers int
}

// New creates an engine. It fails when the lattice of rules breaks lattice laws.
func New(rules *transfer.Rules, opts ...Option) (*Engine, error) {
	if rules == nil || rules.Lattice == nil {
		return nil, errors.New("no qualifier lattice")
	}
	if err := lattice.Validate(rules.Lattice); err != nil {
		return nil, errors.Wrap(err, "validate qualifier lattice")
	}

	e := &Engine{
		rules:   rules,
		tr:      transfer.New(rules),
		logger:  zap.NewNop(),
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Rules returns rules of the base type system.
func (e *Engine) Rules() *transfer.Rules {
	return e.rules
}

// Analyze computes refinements at every program point of the method. declared may be nil,
// everything is declared top then. Only construction errors are possible.
func (e *Engine) Analyze(m *mir.Method, declared *store.Declared) (*Result, error) {
	g, err := cfg.Build(m, e.rules)
	if err != nil {
		return nil, errors.Wrapf(err, "build control flow graph of %s", m.Name)
	}

	frame := &store.Frame{
		Lattice:  e.rules.Lattice,
		Declared: e.declared(declared),
	}
	sol := solver.Solve(g, e.tr, entryStore(frame, m), solver.WithLogger(e.logger))

	res := &Result{
		method: m,
		graph:  g,
		sol:    sol,
		frame:  frame,
		tr:     e.tr,
		nodes:  map[mir.Node][]*cfg.Node{},
		index:  points.NewIndex(),
	}

	var sources []mir.Node
	for _, n := range g.Nodes {
		if n.Source == nil {
			continue
		}
		if _, ok := res.nodes[n.Source]; !ok {
			sources = append(sources, n.Source)
		}
		res.nodes[n.Source] = append(res.nodes[n.Source], n)
	}

	// Outermost spans first.
	slices.SortStableFunc(sources, func(a, b mir.Node) int {
		la, lb := a.Location(), b.Location()
		if c := cmp.Compare(la.Start, lb.Start); c != 0 {
			return c
		}
		return cmp.Compare(lb.End, la.End)
	})
	for _, src := range sources {
		if err := res.index.Add(src); err != nil {
			e.logger.Warn("skip program point", zap.String("method", m.Name), zap.Error(err))
		}
	}

	return res, nil
}

// declared adds declared results of pure calls known to the rules.
func (e *Engine) declared(d *store.Declared) *store.Declared {
	var res store.Declared
	if d != nil {
		res = *d
	}

	switch {
	case len(e.rules.Returns) == 0:
	case len(res.Returns) == 0:
		res.Returns = e.rules.Returns
	default:
		returns := maps.Clone(e.rules.Returns)
		maps.Insert(returns, maps.All(res.Returns))
		res.Returns = returns
	}

	return &res
}

// entryStore starts shared parameters refined to their declared qualifiers. Shared
// variables are declared top, so the refinement is lost once they may be changed.
func entryStore(frame *store.Frame, m *mir.Method) *store.Store {
	res := store.New(frame)
	for _, p := range m.Params {
		if !p.Shared {
			continue
		}

		path, _ := mir.PathOf(&mir.Var{Name: p.Name, Param: true}, nil)
		q := frame.DeclaredOf(path)
		path.Shared = true
		res = res.Set(path, q)
	}

	return res
}
