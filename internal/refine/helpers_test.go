package refine

import (
	"testing"

	"github.com/sirkon/qualflow/internal/lattice"
	"github.com/sirkon/qualflow/internal/mir"
	"github.com/sirkon/qualflow/internal/points"
	"github.com/sirkon/qualflow/internal/store"
	"github.com/sirkon/qualflow/internal/transfer"
)

var (
	nullness = lattice.Nullness()
	nonnull  = mustLookup(lattice.NameNonNull)
	nullable = mustLookup(lattice.NameNullable)
)

func mustLookup(name string) lattice.Qualifier {
	q, ok := nullness.Lookup(name)
	if !ok {
		panic("unknown qualifier " + name)
	}
	return q
}

func testRules() *transfer.Rules {
	return &transfer.Rules{
		Lattice: nullness,
		Conditions: []transfer.Condition{
			{Kind: transfer.ConditionSentinel, Literal: mir.LitNull, OnMismatch: nonnull},
			{Kind: transfer.ConditionTypeTest, OnMatch: nonnull},
		},
		Values: map[transfer.ValueKind]lattice.Qualifier{
			transfer.ValueNull:       nullable,
			transfer.ValueLiteral:    nonnull,
			transfer.ValueAllocation: nonnull,
			transfer.ValueComputed:   nonnull,
		},
		Terminators: map[mir.Reference]struct{}{
			mir.MethodOf("java.lang", "System", "exit"): {},
		},
	}
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(testRules())
	if err != nil {
		t.Fatal(err)
	}
	return e
}

// Everything is nullable unless proven otherwise.
func testDeclared() *store.Declared {
	return &store.Declared{
		Local: nullable,
		Param: nullable,
	}
}

func method(name string, stmts ...mir.Stmt) *mir.Method {
	return &mir.Method{
		Name:     name,
		Receiver: true,
		Params:   []mir.Param{{Name: "str", Type: "String"}},
		Body:     &mir.Block{Stmts: stmts},
	}
}

func block(stmts ...mir.Stmt) *mir.Block {
	return &mir.Block{Stmts: stmts}
}

func notNull(e mir.Expr) mir.Expr {
	return &mir.Binary{Op: mir.OpNeq, X: e, Y: mir.Null()}
}

func isNull(e mir.Expr) mir.Expr {
	return &mir.Binary{Op: mir.OpEq, X: e, Y: mir.Null()}
}

func str(value string) *mir.Literal {
	return &mir.Literal{Kind: mir.LitString, Value: `"` + value + `"`}
}

func decl(name string, init mir.Expr) *mir.Decl {
	return &mir.Decl{Name: name, Type: "String", Init: init}
}

func assign(target, value mir.Expr) *mir.Assign {
	return &mir.Assign{Target: target, Value: value}
}

func testAssert() *mir.ExprStmt {
	return &mir.ExprStmt{X: &mir.Call{
		Recv: &mir.This{},
		Func: mir.MethodOf("flow", "Flow", "testAssert"),
		Args: []mir.Expr{str("")},
	}}
}

func runtimeException() *mir.Throw {
	return &mir.Throw{
		Value: &mir.New{Type: "RuntimeException", Args: []mir.Expr{str("foo")}, Init: true},
		Type:  "RuntimeException",
	}
}

type check struct {
	name string
	node mir.Node
	when points.When
	expr mir.Expr
	want lattice.Qualifier
}

func before(name string, node mir.Node, expr mir.Expr, want lattice.Qualifier) check {
	return check{name: name, node: node, when: points.Before, expr: expr, want: want}
}

func after(name string, node mir.Node, expr mir.Expr, want lattice.Qualifier) check {
	return check{name: name, node: node, when: points.After, expr: expr, want: want}
}

func runChecks(t *testing.T, res *Result, checks []check) {
	t.Helper()
	for _, c := range checks {
		got := res.QualifierAt(points.Point{Node: c.node, When: c.when}, c.expr)
		if got != c.want {
			t.Errorf(
				"%s: expected %s, got %s (store %s)",
				c.name,
				lattice.Format(nullness, c.want),
				lattice.Format(nullness, got),
				res.At(c.node, c.when),
			)
		}
	}
}
