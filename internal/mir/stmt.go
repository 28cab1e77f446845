package mir

// Block is a braced statement list.
type Block struct {
	Loc
	Stmts []Stmt
}

// Decl declares a local variable, optionally with an initializer.
//
//	String s = x; // Name: "s", Type: "String", Init: <Var>(x)
type Decl struct {
	Loc
	Name string
	Type string
	Init Expr

	// Shared is set for variables also reachable through pointers or closures.
	Shared bool
}

// Assign stores Value into Target: a variable, a field or an element.
type Assign struct {
	Loc
	Target Expr
	Value  Expr
}

// ExprStmt evaluates an expression for its effects.
type ExprStmt struct {
	Loc
	X Expr
}

// If is a conditional. Else is nil when absent. Branches need not be blocks.
type If struct {
	Loc
	Cond Expr
	Then Stmt
	Else Stmt
}

// While is a pre-tested loop.
type While struct {
	Loc
	Cond Expr
	Body Stmt
}

// DoWhile is a post-tested loop.
type DoWhile struct {
	Loc
	Body Stmt
	Cond Expr
}

// For is a three-clause loop. A nil Cond means "true".
type For struct {
	Loc
	Init   []Stmt
	Cond   Expr
	Update []Stmt
	Body   Stmt
}

// Switch dispatches on Tag. Control falls through from one case body into the
// next one unless the body completes abruptly.
type Switch struct {
	Loc
	Tag   Expr
	Cases []*Case
}

// Case is a switch clause. A clause with no values is the default one.
type Case struct {
	Loc
	Values []Expr
	Body   []Stmt
}

// Labeled attaches a label to a statement.
type Labeled struct {
	Loc
	Label string
	Stmt  Stmt
}

// Break leaves the innermost loop or switch, or the labeled statement.
type Break struct {
	Loc
	Label string
}

// Continue starts the next iteration of the innermost or the labeled loop.
type Continue struct {
	Loc
	Label string
}

// Goto is an unstructured jump. The engine cannot model it.
type Goto struct {
	Loc
	Label string
}

// Return leaves the method. Value is nil for void returns.
type Return struct {
	Loc
	Value Expr
}

// Throw raises an exception of the given type.
type Throw struct {
	Loc
	Value Expr
	Type  string
}

// Try is a protected region with handlers. Finally is nil when absent.
type Try struct {
	Loc
	Body    *Block
	Catches []*Catch
	Finally *Block
}

// Catch is an exception handler binding the caught value to Param.
// An empty Types list catches everything.
type Catch struct {
	Loc
	Param string
	Types []string
	Body  *Block
}

// Assert states a fact the analysis may rely on afterwards.
type Assert struct {
	Loc
	Cond    Expr
	Message Expr
}

// Empty is a no-op statement.
type Empty struct {
	Loc
}

func (*Block) isNode()    {}
func (*Block) isStmt()    {}
func (*Decl) isNode()     {}
func (*Decl) isStmt()     {}
func (*Assign) isNode()   {}
func (*Assign) isStmt()   {}
func (*ExprStmt) isNode() {}
func (*ExprStmt) isStmt() {}
func (*If) isNode()       {}
func (*If) isStmt()       {}
func (*While) isNode()    {}
func (*While) isStmt()    {}
func (*DoWhile) isNode()  {}
func (*DoWhile) isStmt()  {}
func (*For) isNode()      {}
func (*For) isStmt()      {}
func (*Switch) isNode()   {}
func (*Switch) isStmt()   {}
func (*Case) isNode()     {}
func (*Labeled) isNode()  {}
func (*Labeled) isStmt()  {}
func (*Break) isNode()    {}
func (*Break) isStmt()    {}
func (*Continue) isNode() {}
func (*Continue) isStmt() {}
func (*Goto) isNode()     {}
func (*Goto) isStmt()     {}
func (*Return) isNode()   {}
func (*Return) isStmt()   {}
func (*Throw) isNode()    {}
func (*Throw) isStmt()    {}
func (*Try) isNode()      {}
func (*Try) isStmt()      {}
func (*Catch) isNode()    {}
func (*Assert) isNode()   {}
func (*Assert) isStmt()   {}
func (*Empty) isNode()    {}
func (*Empty) isStmt()    {}
