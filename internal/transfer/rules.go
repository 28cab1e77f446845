package transfer

import (
	"encoding"
	"fmt"

	"github.com/sirkon/qualflow/internal/lattice"
	"github.com/sirkon/qualflow/internal/mir"
)

// ConditionKind is a discriminator of condition handlers.
type ConditionKind int

const (
	_ ConditionKind = iota

	// ConditionSentinel handles comparisons of a trackable expression with a literal.
	ConditionSentinel

	// ConditionTypeTest handles instance-of tests of a trackable expression.
	ConditionTypeTest

	// ConditionPredicate handles calls returning a boolean fact about one of their arguments.
	ConditionPredicate

	// ConditionIdentity handles equality of two expressions: both are refined
	// with the value of the other one when the equality holds.
	ConditionIdentity
)

var conditionKindValues = map[ConditionKind]string{
	ConditionSentinel:  "sentinel",
	ConditionTypeTest:  "typeTest",
	ConditionPredicate: "predicate",
	ConditionIdentity:  "identity",
}

func (k ConditionKind) String() string {
	v, ok := conditionKindValues[k]
	if !ok {
		return fmt.Sprintf("condition-kind-invalid(%d)", k)
	}

	return v
}

var _ encoding.TextUnmarshaler = (*ConditionKind)(nil)

func (k *ConditionKind) UnmarshalText(b []byte) error {
	for kind, v := range conditionKindValues {
		if v == string(b) {
			*k = kind
			return nil
		}
	}

	return fmt.Errorf("unknown condition kind %q", b)
}

func (k ConditionKind) MarshalText() ([]byte, error) {
	v, ok := conditionKindValues[k]
	if !ok {
		return nil, fmt.Errorf("cannot marshal invalid ConditionKind(%d)", k)
	}

	return []byte(v), nil
}

// Condition is a condition handler.
type Condition struct {
	Kind ConditionKind

	// Literal and Value select literals for sentinel handlers. An empty Value matches
	// every literal of the kind.
	Literal mir.LitKind
	Value   string

	// Type selects instance-of tests. An empty Type matches every type.
	Type string

	// Func and Arg select predicate calls and the refined argument, -1 is the receiver.
	Func mir.Reference
	Arg  int

	// OnMatch refines the tested expression when the test holds: it is equal to the
	// sentinel, it is an instance of the type, the predicate returned true.
	// OnMismatch refines it otherwise. Zero means no refinement.
	OnMatch    lattice.Qualifier
	OnMismatch lattice.Qualifier
}

// ValueKind categorizes expressions which are not trackable.
type ValueKind int

const (
	_ ValueKind = iota
	ValueNull
	ValueLiteral
	ValueAllocation
	ValueComputed
	ValueCall
	ValueElement
	ValueUnknown
)

var valueKindValues = map[ValueKind]string{
	ValueNull:       "null",
	ValueLiteral:    "literal",
	ValueAllocation: "allocation",
	ValueComputed:   "computed",
	ValueCall:       "call",
	ValueElement:    "element",
	ValueUnknown:    "unknown",
}

func (k ValueKind) String() string {
	v, ok := valueKindValues[k]
	if !ok {
		return fmt.Sprintf("value-kind-invalid(%d)", k)
	}

	return v
}

var _ encoding.TextUnmarshaler = (*ValueKind)(nil)

func (k *ValueKind) UnmarshalText(b []byte) error {
	for kind, v := range valueKindValues {
		if v == string(b) {
			*k = kind
			return nil
		}
	}

	return fmt.Errorf("unknown value kind %q", b)
}

func (k ValueKind) MarshalText() ([]byte, error) {
	v, ok := valueKindValues[k]
	if !ok {
		return nil, fmt.Errorf("cannot marshal invalid ValueKind(%d)", k)
	}

	return []byte(v), nil
}

// Effect is a postcondition of a callee: after a normal return
// argument Arg (-1 for the receiver) is refined to Qual.
type Effect struct {
	Func mir.Reference
	Arg  int
	Qual lattice.Qualifier
}

// PurityOracle tells side effect free calls.
type PurityOracle interface {
	IsSideEffectFree(call *mir.Call) bool
}

// PurityFunc is an adapter to use ordinary functions as purity oracles.
type PurityFunc func(call *mir.Call) bool

// IsSideEffectFree implements [PurityOracle].
func (f PurityFunc) IsSideEffectFree(call *mir.Call) bool {
	return f(call)
}

// PureFuncs is a purity oracle listing side effect free callees.
type PureFuncs map[mir.Reference]struct{}

// IsSideEffectFree implements [PurityOracle].
func (p PureFuncs) IsSideEffectFree(call *mir.Call) bool {
	_, ok := p[call.Func]
	return ok
}

// Rules describes a base type system to the transfer functions.
type Rules struct {
	Lattice    lattice.Lattice
	Conditions []Condition

	// Values holds qualifiers of non-trackable expressions. Missing kinds are top.
	Values map[ValueKind]lattice.Qualifier

	// Returns holds declared qualifiers of call results.
	Returns map[mir.Reference]lattice.Qualifier

	Effects     []Effect
	Terminators map[mir.Reference]struct{}

	// Oracle is nil when nothing is known to be side effect free.
	Oracle PurityOracle
}

// Terminates reports whether the call never returns.
func (r *Rules) Terminates(call *mir.Call) bool {
	_, ok := r.Terminators[call.Func]
	return ok
}

// Value returns the qualifier of values of the given kind.
func (r *Rules) Value(kind ValueKind) lattice.Qualifier {
	if q := r.Values[kind]; q.Valid() {
		return q
	}

	return r.Lattice.Top()
}
