package transfer

import (
	"testing"

	"github.com/sirkon/qualflow/internal/lattice"
	"github.com/sirkon/qualflow/internal/mir"
	"github.com/sirkon/qualflow/internal/store"
)

func testTransfer(t *testing.T) (*Transfer, *store.Store) {
	t.Helper()

	l := lattice.Nullness()
	nonnull, _ := l.Lookup(lattice.NameNonNull)
	rules := &Rules{
		Lattice: l,
		Conditions: []Condition{
			{Kind: ConditionSentinel, Literal: mir.LitNull, OnMismatch: nonnull},
			{Kind: ConditionTypeTest, OnMatch: nonnull},
			{Kind: ConditionPredicate, Func: mir.Func("m", "IsSet"), Arg: 0, OnMatch: nonnull},
			{Kind: ConditionIdentity},
		},
		Values: map[ValueKind]lattice.Qualifier{
			ValueLiteral:    nonnull,
			ValueAllocation: nonnull,
			ValueComputed:   nonnull,
		},
		Returns: map[mir.Reference]lattice.Qualifier{
			mir.Func("m", "Make"): nonnull,
		},
		Effects: []Effect{
			{Func: mir.Func("m", "RequireNonNull"), Arg: 0, Qual: nonnull},
		},
		Oracle: PureFuncs{
			mir.MethodOf("m", "T", "Get"): {},
		},
	}

	frame := &store.Frame{
		Lattice:  l,
		Declared: &store.Declared{},
	}
	return New(rules), store.New(frame)
}

var (
	x    = &mir.Var{Name: "x"}
	y    = &mir.Var{Name: "y"}
	xf   = &mir.Field{Recv: x, Name: "f", Owner: "T"}
	thf  = &mir.Field{Recv: &mir.This{}, Name: "f", Owner: "T"}
	thc  = &mir.Field{Recv: &mir.This{}, Name: "c", Owner: "T", Final: true}
	obj  = &mir.New{Type: "Object"}
	ctor = &mir.New{Type: "Object", Init: true}
)

func assign(target, value mir.Expr) mir.Stmt {
	return &mir.Assign{Target: target, Value: value}
}

func call(fn mir.Reference, recv mir.Expr, args ...mir.Expr) *mir.Call {
	return &mir.Call{Recv: recv, Func: fn, Args: args}
}

func neq(a, b mir.Expr) mir.Expr {
	return &mir.Binary{Op: mir.OpNeq, X: a, Y: b}
}

func eq(a, b mir.Expr) mir.Expr {
	return &mir.Binary{Op: mir.OpEq, X: a, Y: b}
}

func TestExec(t *testing.T) {
	tr, s := testTransfer(t)

	tests := []struct {
		name  string
		stmts []mir.Stmt
		want  string
	}{
		{
			name:  "allocation",
			stmts: []mir.Stmt{assign(x, obj)},
			want:  "{x: NonNull}",
		},
		{
			name:  "null-resets",
			stmts: []mir.Stmt{assign(x, obj), assign(x, mir.Null())},
			want:  "{}",
		},
		{
			name:  "copy",
			stmts: []mir.Stmt{assign(y, obj), &mir.Decl{Name: "x", Init: y}},
			want:  "{x: NonNull, y: NonNull}",
		},
		{
			name:  "cast-keeps-qualifier",
			stmts: []mir.Stmt{assign(y, obj), assign(x, &mir.Cast{X: y, Type: "String"})},
			want:  "{x: NonNull, y: NonNull}",
		},
		{
			name:  "declaration-without-init",
			stmts: []mir.Stmt{assign(x, obj), assign(xf, obj), &mir.Decl{Name: "x"}},
			want:  "{}",
		},
		{
			name:  "reassignment-kills-paths",
			stmts: []mir.Stmt{assign(x, obj), assign(xf, obj), assign(x, y)},
			want:  "{}",
		},
		{
			name:  "field-store-kills-aliases",
			stmts: []mir.Stmt{assign(thf, obj), assign(&mir.Field{Recv: y, Name: "f", Owner: "T"}, mir.Null())},
			want:  "{}",
		},
		{
			name:  "untrackable-receiver",
			stmts: []mir.Stmt{assign(thf, obj), assign(&mir.Field{Recv: call(mir.Func("m", "Any"), nil), Name: "f", Owner: "T"}, mir.Null())},
			want:  "{}",
		},
		{
			name:  "impure-call",
			stmts: []mir.Stmt{assign(x, obj), assign(thf, obj), assign(thc, obj), &mir.ExprStmt{X: call(mir.Func("m", "Mutate"), nil)}},
			want:  "{this.c: NonNull, x: NonNull}",
		},
		{
			name:  "pure-call",
			stmts: []mir.Stmt{assign(thf, obj), &mir.ExprStmt{X: call(mir.MethodOf("m", "T", "Get"), &mir.This{})}},
			want:  "{this.f: NonNull}",
		},
		{
			name:  "pure-call-result",
			stmts: []mir.Stmt{assign(call(mir.MethodOf("m", "T", "Get"), &mir.This{}), obj)},
			want:  "{}",
		},
		{
			name:  "constructor",
			stmts: []mir.Stmt{assign(thf, obj), assign(x, ctor)},
			want:  "{x: NonNull}",
		},
		{
			name:  "declared-return",
			stmts: []mir.Stmt{assign(x, call(mir.Func("m", "Make"), nil))},
			want:  "{x: NonNull}",
		},
		{
			name:  "postcondition",
			stmts: []mir.Stmt{&mir.ExprStmt{X: call(mir.Func("m", "RequireNonNull"), nil, x)}},
			want:  "{x: NonNull}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s
			for _, st := range tt.stmts {
				got = tr.Exec(got, st)
			}
			if got.String() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestCond(t *testing.T) {
	tr, s := testTransfer(t)

	tests := []struct {
		name string
		cond mir.Expr
		yes  string
		no   string
	}{
		{
			name: "not-null",
			cond: neq(x, mir.Null()),
			yes:  "{x: NonNull}",
			no:   "{}",
		},
		{
			name: "null-on-the-left",
			cond: eq(mir.Null(), x),
			yes:  "{}",
			no:   "{x: NonNull}",
		},
		{
			name: "negation",
			cond: &mir.Not{X: eq(x, mir.Null())},
			yes:  "{x: NonNull}",
			no:   "{}",
		},
		{
			name: "conjunction",
			cond: &mir.Binary{Op: mir.OpAnd, X: neq(x, mir.Null()), Y: neq(y, mir.Null())},
			yes:  "{x: NonNull, y: NonNull}",
			no:   "{}",
		},
		{
			name: "disjunction",
			cond: &mir.Binary{Op: mir.OpOr, X: eq(x, mir.Null()), Y: eq(y, mir.Null())},
			yes:  "{}",
			no:   "{x: NonNull, y: NonNull}",
		},
		{
			name: "instanceof",
			cond: &mir.InstanceOf{X: x, Type: "String"},
			yes:  "{x: NonNull}",
			no:   "{}",
		},
		{
			name: "predicate",
			cond: call(mir.Func("m", "IsSet"), nil, x),
			yes:  "{x: NonNull}",
			no:   "{}",
		},
		{
			name: "identity",
			cond: eq(x, obj),
			yes:  "{x: NonNull}",
			no:   "{}",
		},
		{
			name: "true",
			cond: mir.Bool(true),
			yes:  "{}",
			no:   "unreachable",
		},
		{
			name: "false",
			cond: mir.Bool(false),
			yes:  "unreachable",
			no:   "{}",
		},
		{
			name: "unknown",
			cond: &mir.Binary{Op: mir.OpOther, X: x, Y: y},
			yes:  "{}",
			no:   "{}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yes, no := tr.Cond(s, tt.cond, nil)
			if yes.String() != tt.yes {
				t.Errorf("true branch: expected %s, got %s", tt.yes, yes)
			}
			if no.String() != tt.no {
				t.Errorf("false branch: expected %s, got %s", tt.no, no)
			}
		})
	}
}

func TestCondObservesRightOperands(t *testing.T) {
	tr, s := testTransfer(t)

	right := neq(xf, mir.Null())
	cond := &mir.Binary{Op: mir.OpOr, X: eq(x, mir.Null()), Y: right}

	var seen *store.Store
	tr.Cond(s, cond, func(operand mir.Expr, s *store.Store) {
		if operand == right {
			seen = s
		}
	})
	if got := seen.String(); got != "{x: NonNull}" {
		t.Errorf("right operand must be evaluated with x known non-null, got %s", got)
	}
}

func TestCondUnreachableInput(t *testing.T) {
	tr, _ := testTransfer(t)

	yes, no := tr.Cond(nil, neq(x, mir.Null()), nil)
	if yes != nil || no != nil {
		t.Error("unreachable input must stay unreachable")
	}
	if tr.Exec(nil, assign(x, obj)) != nil {
		t.Error("unreachable input must stay unreachable")
	}
}
