package solver

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sirkon/qualflow/internal/cfg"
	"github.com/sirkon/qualflow/internal/mir"
	"github.com/sirkon/qualflow/internal/store"
	"github.com/sirkon/qualflow/internal/transfer"
)

// Solution holds stores of a solved graph. Nil stores stand for unreachable points.
type Solution struct {
	Graph *cfg.CFG

	// In and Out are indexed by block ID. Out of a block ending with a condition
	// joins both outcomes.
	In  []*store.Store
	Out []*store.Store

	// Before, After, True and False are indexed by node ID. True and False are
	// only set for condition nodes, their After joins both.
	Before []*store.Store
	After  []*store.Store
	True   []*store.Store
	False  []*store.Store

	// Operands holds stores right operands of short-circuit operators are evaluated in.
	Operands map[mir.Expr]*store.Store

	// Visits counts block evaluations before stabilization.
	Visits int
}

// Solve computes stores of every program point of g starting from entry.
func Solve(g *cfg.CFG, tr *transfer.Transfer, entry *store.Store, opts ...Option) *Solution {
	o := &options{
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}

	s := &solver{
		g:     g,
		tr:    tr,
		o:     o,
		entry: entry,
		edges: map[*cfg.Edge]*store.Store{},
		sol: &Solution{
			Graph:    g,
			In:       make([]*store.Store, len(g.Blocks)),
			Out:      make([]*store.Store, len(g.Blocks)),
			Before:   make([]*store.Store, len(g.Nodes)),
			After:    make([]*store.Store, len(g.Nodes)),
			True:     make([]*store.Store, len(g.Nodes)),
			False:    make([]*store.Store, len(g.Nodes)),
			Operands: map[mir.Expr]*store.Store{},
		},
	}
	s.run()
	s.replay()

	o.logger.Debug(
		"solved",
		zap.String("method", g.Method.Name),
		zap.Int("blocks", len(g.Blocks)),
		zap.Int("nodes", len(g.Nodes)),
		zap.Int("visits", s.sol.Visits),
	)

	return s.sol
}

type solver struct {
	g     *cfg.CFG
	tr    *transfer.Transfer
	o     *options
	entry *store.Store
	edges map[*cfg.Edge]*store.Store
	sol   *Solution
}

func (s *solver) run() {
	w := newWorklist(s.g, s.g.ReversePostOrder())
	w.add(s.g.Entry)

	for w.Len() > 0 {
		b := w.next()
		s.sol.Visits++

		pre, out, yes, no := s.block(b, s.input(b), nil)

		if joined := store.Join(s.sol.Out[b.ID], out); !store.Equal(joined, s.sol.Out[b.ID]) {
			s.sol.Out[b.ID] = joined
			if ce := s.o.logger.Check(zapcore.DebugLevel, "block updated"); ce != nil {
				ce.Write(
					zap.String("method", s.g.Method.Name),
					zap.Int("block", b.ID),
					zap.Stringer("out", joined),
				)
			}
			if s.o.onUpdate != nil {
				s.o.onUpdate(b, joined)
			}
		}

		for _, e := range b.Succs {
			var st *store.Store
			switch e.Kind {
			case cfg.EdgeTrue:
				st = yes
			case cfg.EdgeFalse:
				st = no
			case cfg.EdgeException:
				if e.At < len(pre) {
					st = pre[e.At]
				} else {
					st = out
				}
			default:
				st = out
			}
			if st == nil {
				continue
			}

			old := s.edges[e]
			joined := store.Join(old, st)
			if old != nil && store.Equal(old, joined) {
				continue
			}
			s.edges[e] = joined
			w.add(e.To)
		}
	}
}

func (s *solver) input(b *cfg.Block) *store.Store {
	if b == s.g.Entry {
		return s.entry
	}

	var in *store.Store
	for _, e := range b.Preds {
		in = store.Join(in, s.edges[e])
	}

	return in
}

// block applies nodes of b to in. It returns stores before every node, the exit store
// and the outcomes of an ending condition. observe may be nil.
func (s *solver) block(b *cfg.Block, in *store.Store, observe func(n *cfg.Node, pre, post, yes, no *store.Store)) (pre []*store.Store, out, yes, no *store.Store) {
	pre = make([]*store.Store, len(b.Nodes))
	cur := in
	var operands transfer.Observer
	if observe != nil {
		operands = s.recordOperand
	}
	for i, n := range b.Nodes {
		pre[i] = cur

		switch n.Kind {
		case cfg.NodeCond:
			yes, no = s.tr.Cond(cur, n.Expr, operands)
			post := store.Join(yes, no)
			if observe != nil {
				observe(n, cur, post, yes, no)
			}
			cur = post

		case cfg.NodeEval:
			post := s.tr.EvalObserved(cur, n.Expr, operands)
			if observe != nil {
				observe(n, cur, post, nil, nil)
			}
			cur = post

		default:
			post := s.tr.ExecObserved(cur, n.Stmt, operands)
			if observe != nil {
				observe(n, cur, post, nil, nil)
			}
			cur = post
		}
	}

	return pre, cur, yes, no
}

func (s *solver) recordOperand(operand mir.Expr, st *store.Store) {
	s.sol.Operands[operand] = store.Join(s.sol.Operands[operand], st)
}

// replay records node stores from stabilized block inputs.
func (s *solver) replay() {
	for _, b := range s.g.Blocks {
		in := s.input(b)
		s.sol.In[b.ID] = in
		if in == nil {
			continue
		}

		s.block(b, in, func(n *cfg.Node, pre, post, yes, no *store.Store) {
			s.sol.Before[n.ID] = pre
			s.sol.After[n.ID] = post
			if n.Kind == cfg.NodeCond {
				s.sol.True[n.ID] = yes
				s.sol.False[n.ID] = no
			}
		})
	}
}
