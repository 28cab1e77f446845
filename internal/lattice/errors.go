package lattice

import (
	"fmt"
	"strings"
)

// Axiom names a lattice law or construction requirement.
type Axiom int

const (
	_ Axiom = iota

	// AxiomDeclaration covers malformed declarations: empty names, duplicates, unknown supertypes.
	AxiomDeclaration

	// AxiomAntisymmetry is violated by subtype cycles.
	AxiomAntisymmetry

	// AxiomReflexivity requires every qualifier to be its own subtype.
	AxiomReflexivity

	// AxiomTransitivity requires a <: b and b <: c to imply a <: c.
	AxiomTransitivity

	// AxiomBounds requires a unique top and a unique bottom.
	AxiomBounds

	// AxiomJoin requires LUB to exist, be unique and be the least upper bound.
	AxiomJoin

	// AxiomMeet requires GLB to exist, be unique and be the greatest lower bound.
	AxiomMeet

	// AxiomAlgebra covers commutativity, associativity, idempotence and absorption.
	AxiomAlgebra

	// AxiomMonotonicity requires a <: b to imply LUB(a, c) <: LUB(b, c).
	AxiomMonotonicity
)

func (a Axiom) String() string {
	switch a {
	case AxiomDeclaration:
		return "declaration"
	case AxiomAntisymmetry:
		return "antisymmetry"
	case AxiomReflexivity:
		return "reflexivity"
	case AxiomTransitivity:
		return "transitivity"
	case AxiomBounds:
		return "bounds"
	case AxiomJoin:
		return "join"
	case AxiomMeet:
		return "meet"
	case AxiomAlgebra:
		return "algebra"
	case AxiomMonotonicity:
		return "monotonicity"
	default:
		return fmt.Sprintf("axiom-unknown(%d)", a)
	}
}

// Error is a configuration error: the lattice cannot be used for analysis.
type Error struct {
	Axiom      Axiom
	Qualifiers []string
	Reason     string
}

func (e *Error) Error() string {
	if len(e.Qualifiers) == 0 {
		return fmt.Sprintf("lattice %s violated: %s", e.Axiom, e.Reason)
	}

	return fmt.Sprintf(
		"lattice %s violated on [%s]: %s",
		e.Axiom,
		strings.Join(e.Qualifiers, ", "),
		e.Reason,
	)
}

func errorf(axiom Axiom, names []string, format string, a ...any) *Error {
	return &Error{
		Axiom:      axiom,
		Qualifiers: names,
		Reason:     fmt.Sprintf(format, a...),
	}
}
