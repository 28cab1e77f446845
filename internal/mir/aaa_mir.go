package mir

import "go/token"

// Node is the base interface implemented by all IR node types.
type Node interface {
	Location() Loc
	isNode()
}

// Stmt marks nodes that represent statements.
type Stmt interface {
	Node
	isStmt()
}

// Expr marks nodes that represent expressions.
type Expr interface {
	Node
	isExpr()
}

// Loc is a source span of a node. Front ends without positions leave it zero.
type Loc struct {
	Start token.Pos
	End   token.Pos
}

// Location returns the span of the node.
func (l Loc) Location() Loc {
	return l
}

// Valid reports whether the span carries a position.
func (l Loc) Valid() bool {
	return l.Start.IsValid() && l.End >= l.Start
}

func (l *Loc) clearLoc() {
	*l = Loc{}
}

// Method is a method body together with its formal parameters.
type Method struct {
	Loc

	// Name is used for logging and diagnostics only.
	Name string

	// Receiver is true for methods having an implicit "this".
	Receiver bool

	Params []Param
	Body   *Block
}

// Param is a formal parameter.
type Param struct {
	Name string
	Type string

	// Shared parameters may be changed through pointers or closures.
	Shared bool
}

func (*Method) isNode() {}
