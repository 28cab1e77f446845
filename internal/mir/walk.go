package mir

// Walk traverses the tree rooted at n in depth-first order, calling f for each node.
// Children of a node are skipped when f returns false. Nil children are not visited.
func Walk(n Node, f func(Node) bool) {
	if isNil(n) || !f(n) {
		return
	}

	switch v := n.(type) {
	case *Method:
		if v.Body != nil {
			Walk(v.Body, f)
		}

	// Statements.
	case *Block:
		walkStmts(v.Stmts, f)
	case *Decl:
		walkExpr(v.Init, f)
	case *Assign:
		walkExpr(v.Target, f)
		walkExpr(v.Value, f)
	case *ExprStmt:
		walkExpr(v.X, f)
	case *If:
		walkExpr(v.Cond, f)
		walkStmt(v.Then, f)
		walkStmt(v.Else, f)
	case *While:
		walkExpr(v.Cond, f)
		walkStmt(v.Body, f)
	case *DoWhile:
		walkStmt(v.Body, f)
		walkExpr(v.Cond, f)
	case *For:
		walkStmts(v.Init, f)
		walkExpr(v.Cond, f)
		walkStmts(v.Update, f)
		walkStmt(v.Body, f)
	case *Switch:
		walkExpr(v.Tag, f)
		for _, c := range v.Cases {
			Walk(c, f)
		}
	case *Case:
		walkExprs(v.Values, f)
		walkStmts(v.Body, f)
	case *Labeled:
		walkStmt(v.Stmt, f)
	case *Return:
		walkExpr(v.Value, f)
	case *Throw:
		walkExpr(v.Value, f)
	case *Try:
		if v.Body != nil {
			Walk(v.Body, f)
		}
		for _, c := range v.Catches {
			Walk(c, f)
		}
		if v.Finally != nil {
			Walk(v.Finally, f)
		}
	case *Catch:
		if v.Body != nil {
			Walk(v.Body, f)
		}
	case *Assert:
		walkExpr(v.Cond, f)
		walkExpr(v.Message, f)

	// Expressions.
	case *Field:
		walkExpr(v.Recv, f)
	case *Call:
		walkExpr(v.Recv, f)
		walkExprs(v.Args, f)
	case *New:
		walkExprs(v.Args, f)
	case *Binary:
		walkExpr(v.X, f)
		walkExpr(v.Y, f)
	case *Not:
		walkExpr(v.X, f)
	case *InstanceOf:
		walkExpr(v.X, f)
	case *Cast:
		walkExpr(v.X, f)
	case *Index:
		walkExpr(v.X, f)
		walkExpr(v.Index, f)
	case *Deref:
		walkExpr(v.X, f)
	}
}

func walkStmts(list []Stmt, f func(Node) bool) {
	for _, s := range list {
		walkStmt(s, f)
	}
}

func walkExprs(list []Expr, f func(Node) bool) {
	for _, e := range list {
		walkExpr(e, f)
	}
}

func walkStmt(s Stmt, f func(Node) bool) {
	if s != nil {
		Walk(s, f)
	}
}

func walkExpr(e Expr, f func(Node) bool) {
	if e != nil {
		Walk(e, f)
	}
}

func isNil(n Node) bool {
	if n == nil {
		return true
	}

	switch v := n.(type) {
	case *Method:
		return v == nil
	case *Block:
		return v == nil
	case *Case:
		return v == nil
	case *Catch:
		return v == nil
	default:
		return false
	}
}
