package cfg

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/sirkon/qualflow/internal/mir"
)

type exits map[string]bool

func (e exits) Terminates(call *mir.Call) bool {
	return e[call.Func.Name]
}

var (
	x = &mir.Var{Name: "x"}
	y = &mir.Var{Name: "y"}
)

func use(e mir.Expr) *mir.ExprStmt {
	return &mir.ExprStmt{X: e}
}

func callStmt(name string) *mir.ExprStmt {
	return &mir.ExprStmt{X: &mir.Call{Func: mir.Func("m", name)}}
}

func method(stmts ...mir.Stmt) *mir.Method {
	return &mir.Method{Name: "test", Body: &mir.Block{Stmts: stmts}}
}

func build(t *testing.T, m *mir.Method) *CFG {
	t.Helper()
	g, err := Build(m, exits{"exit": true})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

// nodesOf returns graph nodes standing for source.
func nodesOf(g *CFG, source mir.Node) []*Node {
	var res []*Node
	for _, n := range g.Nodes {
		if n.Source == source {
			res = append(res, n)
		}
	}
	return res
}

func blockOf(g *CFG, n *Node) *Block {
	for _, b := range g.Blocks {
		for _, bn := range b.Nodes {
			if bn == n {
				return b
			}
		}
	}
	return nil
}

func TestReturnCutsFlow(t *testing.T) {
	here := use(x)
	g := build(t, method(
		&mir.If{
			Cond: &mir.Binary{Op: mir.OpEq, X: x, Y: mir.Null()},
			Then: &mir.Block{Stmts: []mir.Stmt{&mir.Return{}}},
		},
		here,
	))

	b := blockOf(g, nodesOf(g, here)[0])
	if len(b.Preds) != 1 {
		t.Fatalf("expected a single predecessor, got\n%s", g)
	}
	prev := b.Preds[0].From
	if len(prev.Preds) != 1 || prev.Preds[0].Kind != EdgeFalse {
		t.Fatalf("the only way must be the false branch, got\n%s", g)
	}
}

func TestTerminatorsCutFlow(t *testing.T) {
	here := use(x)
	g := build(t, method(callStmt("exit"), here))

	b := blockOf(g, nodesOf(g, here)[0])
	if len(b.Preds) != 0 {
		t.Errorf("code after exit must be unreachable, got\n%s", g)
	}
	for _, blk := range g.ReversePostOrder() {
		if blk == b {
			t.Error("unreachable block must not be ordered")
		}
	}
}

func TestFinallyCopies(t *testing.T) {
	fin := use(y)
	g := build(t, method(
		&mir.Try{
			Body: &mir.Block{Stmts: []mir.Stmt{
				&mir.Assign{Target: x, Value: y},
				&mir.Return{},
			}},
			Finally: &mir.Block{Stmts: []mir.Stmt{fin}},
		},
	))

	// Abrupt completion, the return and normal completion.
	if got := len(nodesOf(g, fin)); got != 3 {
		t.Errorf("expected 3 copies of the finally block, got %d\n%s", got, g)
	}

	var exceptional int
	for _, b := range g.Blocks {
		for _, e := range b.Succs {
			if e.Kind == EdgeException {
				exceptional++
			}
		}
	}
	// Try entry, the assignment and the return reach the abrupt copy, the abrupt copy rethrows.
	if exceptional != 4 {
		t.Errorf("expected 4 exceptional edges, got %d\n%s", exceptional, g)
	}
}

func TestExceptionRouting(t *testing.T) {
	caught := &mir.Catch{Param: "e", Types: []string{"E"}, Body: &mir.Block{}}
	thrower := &mir.Throw{Value: &mir.New{Type: "E", Init: true}, Type: "E"}
	caller := callStmt("risky")

	g := build(t, method(
		&mir.Try{
			Body:    &mir.Block{Stmts: []mir.Stmt{caller, thrower}},
			Catches: []*mir.Catch{caught},
		},
	))

	targets := func(n *Node) map[*Block]bool {
		res := map[*Block]bool{}
		b := blockOf(g, n)
		for i, bn := range b.Nodes {
			if bn != n {
				continue
			}
			for _, e := range b.Succs {
				if e.Kind == EdgeException && e.At == i {
					res[e.To] = true
				}
			}
		}
		return res
	}

	entry := blockOf(g, nodesOf(g, caught)[0])

	// An exception of unknown type may escape.
	if got := targets(nodesOf(g, caller)[0]); !got[entry] || !got[g.Raise] || len(got) != 2 {
		t.Errorf("call must reach the handler and the exceptional exit\n%s", g)
	}

	// Exactly matching handler stops propagation.
	if got := targets(nodesOf(g, thrower)[0]); !got[entry] || len(got) != 1 {
		t.Errorf("throw must reach the handler only\n%s", g)
	}
}

func TestSwitchFallThrough(t *testing.T) {
	first := use(x)
	second := use(y)
	c0 := &mir.Case{Values: []mir.Expr{&mir.Literal{Kind: mir.LitNumber, Value: "0"}}, Body: []mir.Stmt{first}}
	c1 := &mir.Case{Values: []mir.Expr{&mir.Literal{Kind: mir.LitNumber, Value: "1"}}, Body: []mir.Stmt{second, &mir.Break{}}}

	g := build(t, method(&mir.Switch{Tag: x, Cases: []*mir.Case{c0, c1}}))

	b := blockOf(g, nodesOf(g, second)[0])
	kinds := map[EdgeKind]int{}
	for _, e := range b.Preds {
		kinds[e.Kind]++
	}
	if kinds[EdgeTrue] != 1 || kinds[EdgeNormal] != 1 {
		t.Errorf("second case must be entered by its test and by falling through\n%s", g)
	}

	tests := nodesOf(g, c0)
	if len(tests) != 1 || tests[0].Kind != NodeCond {
		t.Fatalf("case must be tested by a condition\n%s", g)
	}
	cond, ok := tests[0].Expr.(*mir.Binary)
	if !ok || cond.Op != mir.OpEq || cond.X != x {
		t.Errorf("case must compare the tag, got %#v", tests[0].Expr)
	}
}

func TestLoops(t *testing.T) {
	inner := use(x)
	after := use(y)
	g := build(t, method(
		&mir.While{
			Cond: mir.Bool(true),
			Body: &mir.Block{Stmts: []mir.Stmt{inner, &mir.Break{}}},
		},
		after,
	))

	b := blockOf(g, nodesOf(g, after)[0])
	kinds := map[EdgeKind]int{}
	for _, e := range b.Preds {
		kinds[e.Kind]++
	}
	if kinds[EdgeFalse] != 1 || kinds[EdgeNormal] != 1 {
		t.Errorf("loop exit must join the false branch and the break\n%s", g)
	}

	g = build(t, method(
		&mir.DoWhile{
			Body: &mir.Block{Stmts: []mir.Stmt{&mir.Continue{}}},
			Cond: &mir.Binary{Op: mir.OpNeq, X: x, Y: mir.Null()},
		},
	))
	var back int
	for _, blk := range g.Blocks {
		for _, e := range blk.Succs {
			if e.Kind == EdgeBack {
				back++
			}
		}
	}
	if back != 1 {
		t.Errorf("continue must produce a back edge\n%s", g)
	}
}

func TestConstructionErrors(t *testing.T) {
	loop := func(body ...mir.Stmt) *mir.While {
		return &mir.While{Cond: mir.Bool(true), Body: &mir.Block{Stmts: body}}
	}

	tests := []struct {
		name  string
		body  []mir.Stmt
		cause error
	}{
		{
			name:  "goto",
			body:  []mir.Stmt{&mir.Goto{Label: "L"}},
			cause: ErrUnsupported,
		},
		{
			name:  "break-outside",
			body:  []mir.Stmt{&mir.Break{}},
			cause: ErrMalformed,
		},
		{
			name:  "continue-outside",
			body:  []mir.Stmt{&mir.Switch{Tag: x, Cases: []*mir.Case{{Body: []mir.Stmt{&mir.Continue{}}}}}},
			cause: ErrMalformed,
		},
		{
			name:  "unknown-label",
			body:  []mir.Stmt{loop(&mir.Break{Label: "L"})},
			cause: ErrMalformed,
		},
		{
			name:  "duplicate-label",
			body:  []mir.Stmt{&mir.Labeled{Label: "L", Stmt: loop(&mir.Labeled{Label: "L", Stmt: loop(&mir.Break{Label: "L"})})}},
			cause: ErrMalformed,
		},
		{
			name:  "continue-to-block",
			body:  []mir.Stmt{&mir.Labeled{Label: "L", Stmt: &mir.Block{Stmts: []mir.Stmt{loop(&mir.Continue{Label: "L"})}}}},
			cause: ErrMalformed,
		},
		{
			name:  "multiple-defaults",
			body:  []mir.Stmt{&mir.Switch{Tag: x, Cases: []*mir.Case{{}, {}}}},
			cause: ErrMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(method(tt.body...), nil)
			if err == nil {
				t.Fatal("error expected")
			}
			if !errors.Is(err, tt.cause) {
				t.Errorf("unexpected cause of %v", err)
			}
			var cerr *ConstructionError
			if !errors.As(err, &cerr) {
				t.Errorf("construction error expected, got %T", err)
			}
		})
	}
}

func TestLabeledBreak(t *testing.T) {
	after := use(x)
	g := build(t, method(
		&mir.Labeled{
			Label: "outer",
			Stmt: &mir.Block{Stmts: []mir.Stmt{
				&mir.If{Cond: &mir.Binary{Op: mir.OpEq, X: x, Y: mir.Null()}, Then: &mir.Break{Label: "outer"}},
				use(y),
			}},
		},
		after,
	))

	b := blockOf(g, nodesOf(g, after)[0])
	if len(b.Preds) != 2 {
		t.Errorf("labeled block exit must join the break and normal completion\n%s", g)
	}
}
