package solver

import (
	"testing"

	"github.com/sirkon/qualflow/internal/cfg"
	"github.com/sirkon/qualflow/internal/lattice"
	"github.com/sirkon/qualflow/internal/mir"
	"github.com/sirkon/qualflow/internal/store"
	"github.com/sirkon/qualflow/internal/transfer"
)

func setup(t *testing.T, stmts ...mir.Stmt) (*cfg.CFG, *transfer.Transfer, *store.Store) {
	t.Helper()

	l := lattice.Nullness()
	nonnull, _ := l.Lookup(lattice.NameNonNull)
	tr := transfer.New(&transfer.Rules{
		Lattice: l,
		Conditions: []transfer.Condition{
			{Kind: transfer.ConditionSentinel, Literal: mir.LitNull, OnMismatch: nonnull},
		},
		Values: map[transfer.ValueKind]lattice.Qualifier{
			transfer.ValueAllocation: nonnull,
		},
	})

	g, err := cfg.Build(&mir.Method{Name: "test", Body: &mir.Block{Stmts: stmts}}, nil)
	if err != nil {
		t.Fatal(err)
	}

	return g, tr, store.New(&store.Frame{Lattice: l, Declared: &store.Declared{}})
}

var (
	x = &mir.Var{Name: "x"}
	y = &mir.Var{Name: "y"}
)

func TestMonotonicConvergence(t *testing.T) {
	here := &mir.ExprStmt{X: x}
	g, tr, entry := setup(t,
		&mir.Assign{Target: x, Value: &mir.New{Type: "T"}},
		&mir.Assign{Target: y, Value: &mir.New{Type: "T"}},
		&mir.While{
			Cond: &mir.Binary{Op: mir.OpOther, X: x, Y: y},
			Body: &mir.Block{Stmts: []mir.Stmt{
				here,
				&mir.Assign{Target: x, Value: y},
				&mir.Assign{Target: y, Value: mir.Null()},
			}},
		},
	)

	seen := map[int]*store.Store{}
	updates := map[int]int{}
	sol := Solve(g, tr, entry, OnUpdate(func(b *cfg.Block, out *store.Store) {
		if prev, ok := seen[b.ID]; ok && !store.LessEq(prev, out) {
			t.Errorf("block %d forgot facts: %s then %s", b.ID, prev, out)
		}
		seen[b.ID] = out
		updates[b.ID]++
	}))

	var revisited bool
	for _, n := range updates {
		revisited = revisited || n >= 2
	}
	if !revisited {
		t.Error("the loop must be revisited")
	}

	// y is nulled at the end of the first iteration and copied into x in the second one.
	n := nodeOf(g, here)
	if got := sol.Before[n.ID].String(); got != "{}" {
		t.Errorf("unexpected store in the loop body: %s", got)
	}
}

func TestUnreachableNodes(t *testing.T) {
	dead := &mir.ExprStmt{X: x}
	g, tr, entry := setup(t,
		&mir.If{
			Cond: mir.Bool(false),
			Then: dead,
		},
	)

	sol := Solve(g, tr, entry)
	n := nodeOf(g, dead)
	if sol.Before[n.ID] != nil || sol.After[n.ID] != nil {
		t.Errorf("dead code must be unreachable, got %s", sol.Before[n.ID])
	}
	if sol.In[g.Exit.ID] == nil {
		t.Error("exit must be reachable")
	}
}

func TestConditionOutcomes(t *testing.T) {
	cond := &mir.Binary{
		Op: mir.OpAnd,
		X:  &mir.Binary{Op: mir.OpNeq, X: x, Y: mir.Null()},
		Y:  &mir.Binary{Op: mir.OpNeq, X: y, Y: mir.Null()},
	}
	g, tr, entry := setup(t, &mir.If{Cond: cond, Then: &mir.Empty{}})

	sol := Solve(g, tr, entry)
	n := nodeOf(g, cond)
	if got := sol.True[n.ID].String(); got != "{x: NonNull, y: NonNull}" {
		t.Errorf("unexpected true outcome %s", got)
	}
	if got := sol.False[n.ID].String(); got != "{}" {
		t.Errorf("unexpected false outcome %s", got)
	}
	if got := sol.Operands[cond.Y].String(); got != "{x: NonNull}" {
		t.Errorf("unexpected right operand store %s", got)
	}
}

func nodeOf(g *cfg.CFG, source mir.Node) *cfg.Node {
	for _, n := range g.Nodes {
		if n.Source == source {
			return n
		}
	}
	return nil
}
