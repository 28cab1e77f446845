package store

import (
	"testing"

	"github.com/sirkon/qualflow/internal/lattice"
	"github.com/sirkon/qualflow/internal/mir"
)

func testFrame() (*Frame, lattice.Qualifier, lattice.Qualifier) {
	l := lattice.Nullness()
	nonnull, _ := l.Lookup(lattice.NameNonNull)
	nullable, _ := l.Lookup(lattice.NameNullable)
	return &Frame{
		Lattice: l,
		Declared: &Declared{
			Paths:  map[string]lattice.Qualifier{"p": nonnull},
			Fields: map[string]lattice.Qualifier{FieldKey("T", "id"): nonnull},
		},
	}, nonnull, nullable
}

func path(t *testing.T, e mir.Expr) mir.Path {
	t.Helper()
	p, ok := mir.PathOf(e, nil)
	if !ok {
		t.Fatalf("%T is not trackable", e)
	}
	return p
}

func TestSetNormalizes(t *testing.T) {
	frame, nonnull, nullable := testFrame()
	x := path(t, &mir.Var{Name: "x"})
	p := path(t, &mir.Var{Name: "p", Param: true})

	s := New(frame)
	s1 := s.Set(x, nonnull)
	if s1.Len() != 1 {
		t.Fatalf("expected a single refinement, got %s", s1)
	}
	if s.Len() != 0 {
		t.Fatal("original store must stay intact")
	}

	// Declared qualifiers are never stored.
	if s2 := s1.Set(x, nullable); s2.Len() != 0 {
		t.Errorf("declared qualifier must drop the entry, got %s", s2)
	}
	if s3 := s1.Set(p, nonnull); s3 != s1 {
		t.Errorf("setting a declared qualifier of p must be a no-op, got %s", s3)
	}
	if s4 := s1.Set(x, nonnull); s4 != s1 {
		t.Error("setting the same qualifier must return the same store")
	}

	if got := s1.Value(p); got != nonnull {
		t.Errorf("p must resolve to its declaration, got %s", lattice.Format(frame.Lattice, got))
	}
	if got := s1.Value(x); got != nonnull {
		t.Errorf("x must be refined, got %s", lattice.Format(frame.Lattice, got))
	}
}

func TestJoin(t *testing.T) {
	frame, nonnull, nullable := testFrame()
	x := path(t, &mir.Var{Name: "x"})
	y := path(t, &mir.Var{Name: "y"})
	p := path(t, &mir.Var{Name: "p", Param: true})

	a := New(frame).Set(x, nonnull).Set(y, nonnull)
	b := New(frame).Set(x, nonnull).Set(p, nullable)

	j := Join(a, b)
	if got := j.String(); got != "{p: Nullable, x: NonNull}" {
		t.Errorf("unexpected join %s", got)
	}

	if Join(nil, a) != a || Join(a, nil) != a {
		t.Error("unreachable store must be neutral")
	}
	if Join(a, a) != a {
		t.Error("join must be idempotent")
	}
	if !Equal(Join(a, b), Join(b, a)) {
		t.Error("join must be commutative")
	}

	if !LessEq(a, j) || !LessEq(b, j) {
		t.Error("join must be an upper bound")
	}
	if LessEq(j, a) {
		t.Error("join must lose y")
	}
	if !LessEq(nil, a) || LessEq(a, nil) {
		t.Error("unreachable store must be the least")
	}
}

func TestKills(t *testing.T) {
	frame, nonnull, _ := testFrame()
	pure := func(*mir.Call) bool { return true }
	x := &mir.Var{Name: "x"}
	xf := &mir.Field{Recv: x, Name: "f", Owner: "T"}
	xfg := &mir.Field{Recv: xf, Name: "g", Owner: "U", Final: true}
	xid := &mir.Field{Recv: x, Name: "id", Owner: "T", Final: true}
	get, _ := mir.PathOf(&mir.Call{Recv: &mir.This{}, Func: mir.MethodOf("m", "T", "Get"), Args: []mir.Expr{x}}, pure)
	thisFinal := path(t, &mir.Field{Recv: &mir.This{}, Name: "c", Owner: "T", Final: true})

	s := New(frame).
		Set(path(t, x), nonnull).
		Set(path(t, xf), nonnull).
		Set(path(t, xfg), nonnull).
		Set(get, nonnull).
		Set(thisFinal, nonnull)

	// x.id is declared NonNull.
	if s.Set(path(t, xid), nonnull) != s {
		t.Error("x.id is declared NonNull")
	}

	tests := []struct {
		name string
		got  *Store
		want string
	}{
		{
			name: "dependents",
			got:  s.KillDependents("x"),
			want: "{this.c: NonNull, x: NonNull}",
		},
		{
			name: "field",
			got:  s.KillField("T", "f"),
			want: "{this.c: NonNull, x: NonNull}",
		},
		{
			name: "heap",
			got:  s.KillHeap(),
			want: "{this.c: NonNull, x: NonNull}",
		},
		{
			name: "remove",
			got:  s.Remove("x.f"),
			want: "{this.Get(x): NonNull, this.c: NonNull, x: NonNull, x.f.g: NonNull}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.got.String(); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}

	if s.Filter(func(Entry) bool { return true }) != s {
		t.Error("filter keeping everything must return the same store")
	}
}

func TestSharedVariables(t *testing.T) {
	frame, nonnull, nullable := testFrame()
	p := path(t, &mir.Var{Name: "p", Param: true, Shared: true})
	y := path(t, &mir.Var{Name: "y", Shared: true})

	if got := frame.DeclaredOf(p); got != nullable {
		t.Errorf("shared variables must be declared top, got %s", lattice.Format(frame.Lattice, got))
	}

	s := New(frame).Set(p, nonnull).Set(y, nonnull)
	if s.Len() != 2 {
		t.Fatalf("expected both refinements kept, got %s", s)
	}
	if got := s.KillHeap(); got.Len() != 0 {
		t.Errorf("writes through pointers must drop shared variables, got %s", got)
	}
	if got := s.KillDependents("y"); got.Len() != 2 {
		t.Errorf("reassigned variable keeps its own refinement, got %s", got)
	}
}

func TestUnreachable(t *testing.T) {
	frame, nonnull, _ := testFrame()
	var s *Store
	x := path(t, &mir.Var{Name: "x"})

	if s.Set(x, nonnull) != nil || s.Refine(x, nonnull) != nil || s.KillHeap() != nil {
		t.Error("operations on an unreachable store must keep it unreachable")
	}
	if s.Reachable() || New(frame).Reachable() == false {
		t.Error("unexpected reachability")
	}
	if s.String() != "unreachable" {
		t.Errorf("unexpected rendering %q", s.String())
	}
}
