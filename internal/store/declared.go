package store

import (
	"github.com/sirkon/qualflow/internal/lattice"
	"github.com/sirkon/qualflow/internal/mir"
)

// Declared resolves unrefined (declared) qualifiers of trackable paths.
// Zero qualifiers mean "not set" and fall through to the next source,
// ending with the top of the lattice.
type Declared struct {
	// Paths holds explicit declarations keyed by path key: parameters, locals, this.
	Paths map[string]lattice.Qualifier

	// Fields holds field declarations keyed by [FieldKey].
	Fields map[string]lattice.Qualifier

	// Returns holds declared result qualifiers of pure calls.
	Returns map[mir.Reference]lattice.Qualifier

	Local    lattice.Qualifier
	Param    lattice.Qualifier
	Receiver lattice.Qualifier
	Field    lattice.Qualifier
	Call     lattice.Qualifier
}

// FieldKey returns a key of field name of type owner in [Declared.Fields].
func FieldKey(owner, name string) string {
	return owner + "." + name
}

// Of returns the declared qualifier of p.
func (d *Declared) Of(l lattice.Lattice, p mir.Path) lattice.Qualifier {
	if d == nil {
		return l.Top()
	}

	// Anything may be stored into a shared variable behind our back.
	if p.Shared && p.IsVar() {
		return l.Top()
	}

	if q := d.Paths[p.Key]; q.Valid() {
		return q
	}

	var q lattice.Qualifier
	if p.IsVar() {
		switch p.RootKind {
		case mir.RootLocal:
			q = d.Local
		case mir.RootParam:
			q = d.Param
		case mir.RootThis:
			q = d.Receiver
		}
	} else {
		last := p.Last()
		switch last.Kind {
		case mir.StepField:
			return d.FieldOf(l, last.Owner, last.Name)
		case mir.StepCall:
			if q = d.Returns[last.Func]; !q.Valid() {
				q = d.Call
			}
		}
	}

	if !q.Valid() {
		return l.Top()
	}

	return q
}

// FieldOf returns the declared qualifier of field name of type owner.
func (d *Declared) FieldOf(l lattice.Lattice, owner, name string) lattice.Qualifier {
	if d == nil {
		return l.Top()
	}

	q := d.Fields[FieldKey(owner, name)]
	if !q.Valid() {
		q = d.Field
	}
	if !q.Valid() {
		return l.Top()
	}

	return q
}
