package mir

import "fmt"

// Var refers to a local variable or a formal parameter.
//
//	x // Name: "x"
type Var struct {
	Loc
	Name  string
	Param bool

	// Shared variables may be changed by writes through pointers and by calls.
	Shared bool
}

// This refers to the receiver of the method.
type This struct {
	Loc
}

// Field is a field access. Owner is the declared type of the receiver the field
// belongs to, Final marks fields that cannot be reassigned after construction.
// Deref is set when evaluating the access dereferences the receiver.
//
//	p.next // Recv: <Var>(p), Name: "next", Owner: "List", Deref: true
type Field struct {
	Loc
	Recv  Expr
	Name  string
	Owner string
	Final bool
	Deref bool
}

// Call is a method or function call. Recv is nil for static calls.
//
//	os.Exit(1)  // Func: "os".Exit, Args: [<Literal>(1)]
//	list.Get(i) // Recv: <Var>(list), Func: "pkg".List.Get
type Call struct {
	Loc
	Recv Expr
	Func Reference
	Args []Expr
}

// New is an allocation: a constructor call, a composite literal, an address-of.
// Init is set when the allocation runs user code.
type New struct {
	Loc
	Type string
	Args []Expr
	Init bool
}

// Literal is a constant. Value is its source text.
type Literal struct {
	Loc
	Kind  LitKind
	Value string
}

// Binary is a binary operation.
type Binary struct {
	Loc
	Op Op
	X  Expr
	Y  Expr
}

// Not is a logical negation.
type Not struct {
	Loc
	X Expr
}

// InstanceOf is a runtime type test.
//
//	x instanceof String // X: <Var>(x), Type: "String"
type InstanceOf struct {
	Loc
	X    Expr
	Type string
}

// Cast is a checked conversion. It keeps the qualifier of its operand.
type Cast struct {
	Loc
	X    Expr
	Type string
}

// Index is an array, slice or map element access.
type Index struct {
	Loc
	X     Expr
	Index Expr
}

// Deref is an explicit pointer dereference.
type Deref struct {
	Loc
	X Expr
}

// Result is the i-th result of a call that was evaluated by a preceding statement.
// Evaluating it has no effects.
type Result struct {
	Loc
	Call  *Call
	Index int
}

// Unknown is a value the front end could not express: globals, closures over
// state, anything with no better description.
type Unknown struct {
	Loc
	What string
}

// LitKind is a literal category.
type LitKind int

const (
	_ LitKind = iota
	LitNull
	LitBool
	LitNumber
	LitString
	LitOther
)

func (k LitKind) String() string {
	switch k {
	case LitNull:
		return "null"
	case LitBool:
		return "bool"
	case LitNumber:
		return "number"
	case LitString:
		return "string"
	case LitOther:
		return "other"
	default:
		return fmt.Sprintf("literal-kind-invalid(%d)", k)
	}
}

// Op is a binary operator.
type Op int

const (
	_ Op = iota
	OpEq
	OpNeq
	OpAnd
	OpOr

	// OpOther covers arithmetic, relational and bitwise operators.
	OpOther
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpOther:
		return "<op>"
	default:
		return fmt.Sprintf("op-invalid(%d)", o)
	}
}

// Null is a shortcut for the null literal.
func Null() *Literal {
	return &Literal{Kind: LitNull, Value: "null"}
}

// Bool is a shortcut for a boolean literal.
func Bool(v bool) *Literal {
	return &Literal{Kind: LitBool, Value: fmt.Sprint(v)}
}

func (*Var) isNode()        {}
func (*Var) isExpr()        {}
func (*This) isNode()       {}
func (*This) isExpr()       {}
func (*Field) isNode()      {}
func (*Field) isExpr()      {}
func (*Call) isNode()       {}
func (*Call) isExpr()       {}
func (*New) isNode()        {}
func (*New) isExpr()        {}
func (*Literal) isNode()    {}
func (*Literal) isExpr()    {}
func (*Binary) isNode()     {}
func (*Binary) isExpr()     {}
func (*Not) isNode()        {}
func (*Not) isExpr()        {}
func (*InstanceOf) isNode() {}
func (*InstanceOf) isExpr() {}
func (*Cast) isNode()       {}
func (*Cast) isExpr()       {}
func (*Index) isNode()      {}
func (*Index) isExpr()      {}
func (*Deref) isNode()      {}
func (*Deref) isExpr()      {}
func (*Result) isNode()     {}
func (*Result) isExpr()     {}
func (*Unknown) isNode()    {}
func (*Unknown) isExpr()    {}
