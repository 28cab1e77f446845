package store

import (
	"slices"
	"strings"

	"github.com/sirkon/qualflow/internal/lattice"
	"github.com/sirkon/qualflow/internal/mir"
)

// Frame is shared by all stores of one analysis.
type Frame struct {
	Lattice  lattice.Lattice
	Declared *Declared
}

// DeclaredOf returns the declared qualifier of p.
func (f *Frame) DeclaredOf(p mir.Path) lattice.Qualifier {
	return f.Declared.Of(f.Lattice, p)
}

// Entry is a refinement of one path.
type Entry struct {
	Path mir.Path
	Qual lattice.Qualifier
}

// Store is an immutable refinement table. Entries never repeat declared qualifiers:
// an absent entry means the declared qualifier holds.
type Store struct {
	frame   *Frame
	entries []Entry
}

// New creates a reachable store without refinements.
func New(frame *Frame) *Store {
	return &Store{frame: frame}
}

// Frame returns the frame the store belongs to.
func (s *Store) Frame() *Frame {
	if s == nil {
		return nil
	}

	return s.frame
}

// Reachable reports whether the store describes a reachable program point.
func (s *Store) Reachable() bool {
	return s != nil
}

// Len returns the number of refinements.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}

	return len(s.entries)
}

// Entries returns a copy of refinements sorted by path key.
func (s *Store) Entries() []Entry {
	if s == nil {
		return nil
	}

	return slices.Clone(s.entries)
}

// Get returns a refinement of the path with the given key.
func (s *Store) Get(key string) (lattice.Qualifier, bool) {
	if s == nil {
		return lattice.Invalid, false
	}

	i, found := s.search(key)
	if !found {
		return lattice.Invalid, false
	}

	return s.entries[i].Qual, true
}

// Value returns the refined qualifier of p, or its declared one when there is no refinement.
// It must not be called on unreachable stores.
func (s *Store) Value(p mir.Path) lattice.Qualifier {
	if s == nil {
		panic("value requested at an unreachable point")
	}

	if q, ok := s.Get(p.Key); ok {
		return q
	}

	return s.frame.DeclaredOf(p)
}

// Set sets the qualifier of p.
func (s *Store) Set(p mir.Path, q lattice.Qualifier) *Store {
	if s == nil {
		return nil
	}

	i, found := s.search(p.Key)
	if q == s.frame.DeclaredOf(p) {
		if !found {
			return s
		}
		return s.with(slices.Delete(slices.Clone(s.entries), i, i+1))
	}

	if found {
		if s.entries[i].Qual == q {
			return s
		}
		entries := slices.Clone(s.entries)
		entries[i] = Entry{Path: p, Qual: q}
		return s.with(entries)
	}

	return s.with(slices.Insert(slices.Clip(s.entries), i, Entry{Path: p, Qual: q}))
}

// Refine narrows the qualifier of p with q.
func (s *Store) Refine(p mir.Path, q lattice.Qualifier) *Store {
	if s == nil || !q.Valid() {
		return s
	}

	return s.Set(p, s.frame.Lattice.GLB(s.Value(p), q))
}

// Remove drops a refinement of the path with the given key.
func (s *Store) Remove(key string) *Store {
	return s.Filter(func(e Entry) bool {
		return e.Path.Key != key
	})
}

// Filter keeps refinements satisfying keep.
func (s *Store) Filter(keep func(e Entry) bool) *Store {
	if s == nil {
		return nil
	}

	var entries []Entry
	for i, e := range s.entries {
		if keep(e) {
			if entries != nil {
				entries = append(entries, e)
			}
			continue
		}

		if entries == nil {
			entries = make([]Entry, i, len(s.entries)-1)
			copy(entries, s.entries[:i])
		}
	}
	if entries == nil {
		return s
	}

	return s.with(entries)
}

// KillDependents drops refinements whose value depends on variable v,
// except the refinement of v itself.
func (s *Store) KillDependents(v string) *Store {
	return s.Filter(func(e Entry) bool {
		return e.Path.Key == v || !e.Path.DependsOn(v)
	})
}

// KillField drops refinements of paths going through field name of owner and every
// refined call result: a store into the field may change them all.
func (s *Store) KillField(owner, name string) *Store {
	return s.Filter(func(e Entry) bool {
		return !e.Path.Through(owner, name) && !hasCall(e.Path)
	})
}

// KillCalls drops refined call results.
func (s *Store) KillCalls() *Store {
	return s.Filter(func(e Entry) bool {
		return !hasCall(e.Path)
	})
}

// KillHeap drops refinements a side effecting call may invalidate.
func (s *Store) KillHeap() *Store {
	return s.Filter(func(e Entry) bool {
		return !e.Path.Mutable()
	})
}

func (s *Store) String() string {
	if s == nil {
		return "unreachable"
	}

	var buf strings.Builder
	buf.WriteByte('{')
	for i, e := range s.entries {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(e.Path.Key)
		buf.WriteString(": ")
		buf.WriteString(lattice.Format(s.frame.Lattice, e.Qual))
	}
	buf.WriteByte('}')

	return buf.String()
}

func hasCall(p mir.Path) bool {
	for _, step := range p.Steps {
		if step.Kind == mir.StepCall {
			return true
		}
	}

	return false
}

func (s *Store) search(key string) (int, bool) {
	return slices.BinarySearchFunc(s.entries, key, func(e Entry, key string) int {
		return strings.Compare(e.Path.Key, key)
	})
}

func (s *Store) with(entries []Entry) *Store {
	return &Store{
		frame:   s.frame,
		entries: entries,
	}
}
