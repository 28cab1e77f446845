package mir

import (
	"go/token"
	"reflect"
	"testing"

	"github.com/sirkon/deepequal"
)

func TestPathOf(t *testing.T) {
	pure := func(c *Call) bool {
		return c.Func.Name == "Get"
	}
	x := &Var{Name: "x"}
	p := &Var{Name: "p", Param: true}

	tests := []struct {
		name string
		expr Expr
		want Path
		ok   bool
	}{
		{
			name: "local",
			expr: x,
			want: Path{Key: "x", Root: "x", RootKind: RootLocal, Deps: []string{"x"}},
			ok:   true,
		},
		{
			name: "this-field-chain",
			expr: &Field{Recv: &Field{Recv: &This{}, Name: "f", Owner: "T", Final: true}, Name: "g", Owner: "U"},
			want: Path{
				Key:      "this.f.g",
				Root:     "this",
				RootKind: RootThis,
				Steps: []Step{
					{Kind: StepField, Name: "f", Owner: "T", Final: true},
					{Kind: StepField, Name: "g", Owner: "U"},
				},
			},
			ok: true,
		},
		{
			name: "pure-call",
			expr: &Call{Recv: p, Func: MethodOf("m", "L", "Get"), Args: []Expr{x, &Literal{Kind: LitNumber, Value: "1"}}},
			want: Path{
				Key:      "p.Get(x, 1)",
				Root:     "p",
				RootKind: RootParam,
				Steps: []Step{
					{Kind: StepCall, Name: "Get", Func: MethodOf("m", "L", "Get"), Args: []string{"x", "1"}},
				},
				Deps: []string{"p", "x"},
			},
			ok: true,
		},
		{
			name: "cast-is-transparent",
			expr: &Cast{X: x, Type: "String"},
			want: Path{Key: "x", Root: "x", RootKind: RootLocal, Deps: []string{"x"}},
			ok:   true,
		},
		{
			name: "impure-call",
			expr: &Call{Recv: p, Func: MethodOf("m", "L", "Put")},
		},
		{
			name: "static-call",
			expr: &Call{Func: Func("m", "Get")},
		},
		{
			name: "index",
			expr: &Field{Recv: &Index{X: x, Index: &Literal{Kind: LitNumber, Value: "0"}}, Name: "f"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PathOf(tt.expr, pure)
			if ok != tt.ok {
				t.Fatalf("unexpected trackability %v", ok)
			}
			if !reflect.DeepEqual(got, tt.want) {
				deepequal.SideBySide(t, "path", tt.want, got)
			}
		})
	}
}

func TestPathRelations(t *testing.T) {
	xf, _ := PathOf(&Field{Recv: &Var{Name: "x"}, Name: "f", Owner: "T"}, nil)
	xfg, _ := PathOf(&Field{Recv: &Field{Recv: &Var{Name: "x"}, Name: "f", Owner: "T"}, Name: "g", Owner: "T", Final: true}, nil)
	shared, _ := PathOf(&Var{Name: "y", Shared: true}, nil)

	if !xfg.Through("T", "f") || xfg.Through("U", "f") {
		t.Error("unexpected field membership")
	}
	if !xf.DependsOn("x") || xf.DependsOn("y") {
		t.Error("unexpected dependencies")
	}
	if !xfg.Mutable() {
		t.Error("x.f.g goes through a non-final field")
	}
	if !xf.Mutable() || !shared.Mutable() {
		t.Error("shared variables and non-final fields are mutable")
	}
	if x, _ := PathOf(&Var{Name: "x"}, nil); x.Mutable() {
		t.Error("bare variables are not mutable")
	}
	if sf, _ := PathOf(&Field{Recv: &Var{Name: "y", Shared: true}, Name: "c", Final: true}, nil); !sf.Shared || !sf.Mutable() {
		t.Error("extensions of shared variables must stay shared")
	}
}

func TestReference(t *testing.T) {
	tests := []struct {
		text string
		want Reference
		err  bool
	}{
		{text: `"os".Exit`, want: Func("os", "Exit")},
		{text: ` "testing".T.Fatal `, want: MethodOf("testing", "T", "Fatal")},
		{text: `os.Exit`, err: true},
		{text: `"os"`, err: true},
		{text: `"".Exit`, err: true},
		{text: `"os".A.B.C`, err: true},
		{text: `"os".1a`, err: true},
		{text: `"os.Exit`, err: true},
		{text: `"exa\"mple.com/q".F`, want: Func(`exa"mple.com/q`, "F")},
		{text: `"caf\u00e9/pkg".T.M`, want: MethodOf("café/pkg", "T", "M")},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			var got Reference
			err := got.UnmarshalText([]byte(tt.text))
			if tt.err {
				if err == nil {
					t.Fatalf("error expected, got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}

			back, err := got.MarshalText()
			if err != nil {
				t.Fatal(err)
			}
			var again Reference
			if err := again.UnmarshalText(back); err != nil || again != got {
				t.Errorf("text form %s does not survive a round trip", back)
			}
		})
	}
}

func TestStripPos(t *testing.T) {
	at := func(a, b int) Loc {
		return Loc{Start: token.Pos(10 + a), End: token.Pos(10 + b)}
	}
	m := &Method{
		Loc:  at(0, 100),
		Name: "f",
		Body: &Block{
			Loc: at(1, 99),
			Stmts: []Stmt{
				&If{
					Loc:  at(2, 20),
					Cond: &Binary{Loc: at(3, 8), Op: OpNeq, X: &Var{Loc: at(3, 4), Name: "x"}, Y: &Literal{Loc: at(6, 8), Kind: LitNull, Value: "null"}},
					Then: &Return{Loc: at(10, 18)},
				},
			},
		},
	}
	StripPos(m)

	want := &Method{
		Name: "f",
		Body: &Block{
			Stmts: []Stmt{
				&If{
					Cond: &Binary{Op: OpNeq, X: &Var{Name: "x"}, Y: Null()},
					Then: &Return{},
				},
			},
		},
	}
	if !reflect.DeepEqual(m, want) {
		deepequal.SideBySide(t, "method", want, m)
	}
}

func TestWalkSkipsChildren(t *testing.T) {
	body := &Block{
		Stmts: []Stmt{
			&While{Cond: Bool(true), Body: &ExprStmt{X: &Var{Name: "hidden"}}},
			&ExprStmt{X: &Var{Name: "seen"}},
		},
	}

	var vars []string
	Walk(body, func(n Node) bool {
		switch v := n.(type) {
		case *While:
			return false
		case *Var:
			vars = append(vars, v.Name)
		}
		return true
	})

	if !reflect.DeepEqual(vars, []string{"seen"}) {
		t.Errorf("unexpected visit order %v", vars)
	}
}
