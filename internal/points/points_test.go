package points

import (
	"go/token"
	"testing"

	"github.com/pkg/errors"

	"github.com/sirkon/qualflow/internal/mir"
)

const base = 1000

func varn(name string, start, end int) *mir.Var {
	return &mir.Var{
		Loc: mir.Loc{
			Start: token.Pos(base + start),
			End:   token.Pos(base + end),
		},
		Name: name,
	}
}

func TestIndexDepthPattern(t *testing.T) {
	idx := NewIndex()

	if idx.Lookup(base) != nil {
		t.Fatal("nothing was expected right now")
	}

	add := func(v *mir.Var) {
		if err := idx.Add(v); err != nil {
			t.Fatal(err)
		}
	}

	add(varn("ground", 0, 200))
	if v := idx.Lookup(base + 10).(*mir.Var); v.Name != "ground" {
		t.Fatalf("ground was expected at %d, got %s", base+10, v.Name)
	}

	add(varn("mid1", 10, 90))
	add(varn("mid11", 20, 30))
	add(varn("mid12", 40, 80))
	add(varn("mid13", 85, 88))
	add(varn("mid2", 110, 190))
	add(varn("mid21", 120, 130))

	type test struct {
		name  string
		pos   int
		isnil bool
	}
	check := func(tt test) func(t *testing.T) {
		return func(t *testing.T) {
			node := idx.Lookup(token.Pos(base + tt.pos))
			if node == nil && !tt.isnil {
				t.Fatalf("node %q was not found at position %d", tt.name, tt.pos)
			}
			if node != nil && tt.isnil {
				t.Fatalf("no node was expected at position %d, got %q", tt.pos, node.(*mir.Var).Name)
			}
			if node != nil {
				if x := node.(*mir.Var); x.Name != tt.name {
					t.Fatalf("node %q was expected, got %q at position %d", tt.name, x.Name, tt.pos)
				}
			}
		}
	}

	tests := []test{
		{name: "ground", pos: 0},
		{name: "ground", pos: 5},
		{name: "ground", pos: 200},
		{name: "mid1", pos: 90},
		{name: "mid11", pos: 25},
		{name: "mid12", pos: 41},
		{name: "mid12", pos: 79},
		{name: "mid13", pos: 86},
		{name: "ground", pos: 100},
		{name: "mid2", pos: 115},
		{name: "mid21", pos: 125},
		{name: "on-the-left", pos: -1, isnil: true},
		{name: "on-the-right", pos: 201, isnil: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, check(tt))
	}

	add(varn("underground", -10, 300))
	tests = []test{
		{name: "underground", pos: -5},
		{name: "underground", pos: 250},
		{name: "ground", pos: 2},
		{name: "mid21", pos: 121},
	}
	for _, tt := range tests {
		t.Run(tt.name, check(tt))
	}

	if idx.Len() != 8 {
		t.Errorf("expected 8 nodes, got %d", idx.Len())
	}
}

func TestIndexEqualSpans(t *testing.T) {
	idx := NewIndex()
	for _, name := range []string{"stmt", "expr"} {
		if err := idx.Add(varn(name, 10, 20)); err != nil {
			t.Fatal(err)
		}
	}

	if v := idx.Lookup(base + 15).(*mir.Var); v.Name != "expr" {
		t.Errorf("the last added node must be the innermost one, got %s", v.Name)
	}
}

func TestIndexRejectsPartialOverlap(t *testing.T) {
	idx := NewIndex()
	if err := idx.Add(varn("a", 10, 20)); err != nil {
		t.Fatal(err)
	}

	err := idx.Add(varn("b", 15, 30))
	if !errors.Is(err, ErrPartialOverlap) {
		t.Fatalf("partial overlap error expected, got %v", err)
	}

	if err := idx.Add(&mir.Var{Name: "nowhere"}); err != nil {
		t.Errorf("nodes without positions must be ignored, got %v", err)
	}
	if idx.Len() != 1 {
		t.Errorf("expected a single node, got %d", idx.Len())
	}
}
