package refine

import (
	"go/token"

	"github.com/sirkon/qualflow/internal/cfg"
	"github.com/sirkon/qualflow/internal/lattice"
	"github.com/sirkon/qualflow/internal/mir"
	"github.com/sirkon/qualflow/internal/points"
	"github.com/sirkon/qualflow/internal/solver"
	"github.com/sirkon/qualflow/internal/store"
	"github.com/sirkon/qualflow/internal/transfer"
)

// Result is an immutable analysis result of one method.
//
// Program points are identified by IR nodes: statements, conditions of branches and
// loops, switch cases, catch clauses. When a node has several copies in the
// graph (statements of finally blocks) its stores join stores of all copies.
// Nil stores stand for unreachable points.
type Result struct {
	method *mir.Method
	graph  *cfg.CFG
	sol    *solver.Solution
	frame  *store.Frame
	tr     *transfer.Transfer
	nodes  map[mir.Node][]*cfg.Node
	index  *points.Index
}

// Method returns the analyzed method.
func (r *Result) Method() *mir.Method {
	return r.method
}

// Graph returns the control flow graph of the method.
func (r *Result) Graph() *cfg.CFG {
	return r.graph
}

// Solution returns raw per-block and per-node stores.
func (r *Result) Solution() *solver.Solution {
	return r.sol
}

// At returns the store at a program point.
func (r *Result) At(node mir.Node, when points.When) *store.Store {
	var res *store.Store
	for _, n := range r.nodes[node] {
		switch when {
		case points.Before:
			res = store.Join(res, r.sol.Before[n.ID])
		case points.After:
			res = store.Join(res, r.sol.After[n.ID])
		}
	}

	return res
}

// Branches returns stores where the condition holds and where it does not.
func (r *Result) Branches(cond mir.Expr) (yes, no *store.Store) {
	for _, n := range r.nodes[cond] {
		if n.Kind != cfg.NodeCond {
			continue
		}
		yes = store.Join(yes, r.sol.True[n.ID])
		no = store.Join(no, r.sol.False[n.ID])
	}

	return yes, no
}

// Reachable reports whether any copy of the node is reachable.
func (r *Result) Reachable(node mir.Node) bool {
	return r.At(node, points.Before) != nil
}

// Exit returns the store at normal completion of the method.
func (r *Result) Exit() *store.Store {
	return r.sol.In[r.graph.Exit.ID]
}

// Raise returns the store at exceptional completion of the method.
func (r *Result) Raise() *store.Store {
	return r.sol.In[r.graph.Raise.ID]
}

// StoreAt returns the store before the innermost program point covering pos.
func (r *Result) StoreAt(pos token.Pos) *store.Store {
	node := r.index.Lookup(pos)
	if node == nil {
		return nil
	}

	return r.At(node, points.Before)
}

// NodeAt returns the innermost program point covering pos.
func (r *Result) NodeAt(pos token.Pos) mir.Node {
	return r.index.Lookup(pos)
}

// StoreOf returns the store sub is evaluated in as a part of node. It differs from
// the store before node for right operands of short-circuit operators.
func (r *Result) StoreOf(node mir.Node, sub mir.Expr) *store.Store {
	if operand, found := operandOf(node, sub, nil); found && operand != nil {
		if s, ok := r.sol.Operands[operand]; ok {
			return s
		}
	}

	return r.At(node, points.Before)
}

// operandOf finds sub in n and returns the innermost short-circuit right operand containing it.
func operandOf(n mir.Node, sub, inside mir.Expr) (mir.Expr, bool) {
	if n == sub {
		return inside, true
	}

	var res mir.Expr
	var found bool
	mir.Walk(n, func(child mir.Node) bool {
		if child == n {
			return true
		}
		if found {
			return false
		}

		within := inside
		if b, ok := n.(*mir.Binary); ok && (b.Op == mir.OpAnd || b.Op == mir.OpOr) && child == b.Y {
			within = b.Y
		}
		res, found = operandOf(child, sub, within)
		return false
	})

	return res, found
}

// Qualifier returns the qualifier of e in s. Everything is bottom at unreachable points.
func (r *Result) Qualifier(s *store.Store, e mir.Expr) lattice.Qualifier {
	if s == nil {
		return r.frame.Lattice.Bottom()
	}

	return r.tr.Value(s, e)
}

// QualifierAt returns the refined qualifier of e at the program point, or its
// declared one when it is not refined there.
func (r *Result) QualifierAt(p points.Point, e mir.Expr) lattice.Qualifier {
	return r.Qualifier(r.At(p.Node, p.When), e)
}

// QueryQualifierAt returns the qualifier of e at the program point of res.
func QueryQualifierAt(res *Result, p points.Point, e mir.Expr) lattice.Qualifier {
	return res.QualifierAt(p, e)
}

// Declared returns the declared qualifier of a trackable expression.
func (r *Result) Declared(e mir.Expr) (lattice.Qualifier, bool) {
	p, ok := r.tr.Path(e)
	if !ok {
		return lattice.Invalid, false
	}

	return r.frame.DeclaredOf(p), true
}
