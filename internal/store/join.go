package store

import (
	"strings"

	"github.com/sirkon/qualflow/internal/lattice"
)

// Join merges stores of paths meeting at a join point. A path refined on one side
// only is joined with its declared qualifier on the other.
func Join(a, b *Store) *Store {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case a == b:
		return a
	}

	l := a.frame.Lattice
	entries := make([]Entry, 0, max(len(a.entries), len(b.entries)))
	add := func(e Entry, q lattice.Qualifier) {
		if q != a.frame.DeclaredOf(e.Path) {
			entries = append(entries, Entry{Path: e.Path, Qual: q})
		}
	}

	i, j := 0, 0
	for i < len(a.entries) || j < len(b.entries) {
		var cmp int
		switch {
		case i == len(a.entries):
			cmp = 1
		case j == len(b.entries):
			cmp = -1
		default:
			cmp = strings.Compare(a.entries[i].Path.Key, b.entries[j].Path.Key)
		}

		switch {
		case cmp < 0:
			e := a.entries[i]
			add(e, l.LUB(e.Qual, a.frame.DeclaredOf(e.Path)))
			i++
		case cmp > 0:
			e := b.entries[j]
			add(e, l.LUB(e.Qual, a.frame.DeclaredOf(e.Path)))
			j++
		default:
			e := a.entries[i]
			add(e, l.LUB(e.Qual, b.entries[j].Qual))
			i++
			j++
		}
	}

	res := a.with(entries)
	switch {
	case Equal(res, a):
		return a
	case Equal(res, b):
		return b
	default:
		return res
	}
}

// Equal reports whether both stores hold the same refinements.
func Equal(a, b *Store) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a == b {
		return true
	}
	if len(a.entries) != len(b.entries) {
		return false
	}

	for i, e := range a.entries {
		if e.Path.Key != b.entries[i].Path.Key || e.Qual != b.entries[i].Qual {
			return false
		}
	}

	return true
}

// LessEq reports whether a is at least as refined as b for every path: whatever b
// proves also holds in a. Unreachable stores are below everything.
func LessEq(a, b *Store) bool {
	if a == nil {
		return true
	}
	if b == nil {
		return false
	}

	l := a.frame.Lattice
	for _, e := range a.entries {
		if !l.IsSubtype(e.Qual, b.Value(e.Path)) {
			return false
		}
	}
	for _, e := range b.entries {
		if !l.IsSubtype(a.Value(e.Path), e.Qual) {
			return false
		}
	}

	return true
}
