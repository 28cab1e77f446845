package lattice

import "fmt"

// Qualifier is an element of a qualifier lattice. Its meaning is defined by the lattice
// that produced it. The zero value is [Invalid].
type Qualifier uint16

// Invalid is a qualifier no lattice produces. Rules use it to say "no refinement".
const Invalid Qualifier = 0

// Valid reports whether q is not [Invalid].
func (q Qualifier) Valid() bool {
	return q != Invalid
}

// Lattice is a finite bounded lattice of qualifiers.
type Lattice interface {
	// Top returns the least informative qualifier.
	Top() Qualifier

	// Bottom returns the most refined qualifier.
	Bottom() Qualifier

	// IsSubtype reports whether a is at least as refined as b.
	IsSubtype(a, b Qualifier) bool

	// LUB returns the least upper bound of a and b.
	LUB(a, b Qualifier) Qualifier

	// GLB returns the greatest lower bound of a and b.
	GLB(a, b Qualifier) Qualifier

	// Qualifiers lists every element of the lattice in a stable order.
	Qualifiers() []Qualifier

	// Name returns a human-readable name of the qualifier.
	Name(q Qualifier) string

	// Lookup finds a qualifier by its name.
	Lookup(name string) (Qualifier, bool)
}

// Format renders a qualifier with its lattice name.
func Format(l Lattice, q Qualifier) string {
	if !q.Valid() {
		return "<invalid>"
	}
	if l == nil {
		return fmt.Sprintf("qualifier(%d)", q)
	}

	return l.Name(q)
}

