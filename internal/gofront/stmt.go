package gofront

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"

	"github.com/sirkon/qualflow/internal/mir"
)

func (f *fn) block(b *ast.BlockStmt) *mir.Block {
	return &mir.Block{
		Loc:   loc(b),
		Stmts: f.stmts(b.List),
	}
}

func (f *fn) stmts(list []ast.Stmt) []mir.Stmt {
	var res []mir.Stmt
	for _, s := range list {
		res = append(res, f.stmt(s)...)
	}

	return res
}

// stmt translates a statement. Go statements with init clauses, ranges, multi value
// assignments and such turn into several IR statements.
func (f *fn) stmt(s ast.Stmt) []mir.Stmt {
	switch v := s.(type) {
	case *ast.BlockStmt:
		return []mir.Stmt{f.block(v)}

	case *ast.EmptyStmt:
		return nil

	case *ast.ExprStmt:
		return []mir.Stmt{f.exprStmt(v)}

	case *ast.AssignStmt:
		return f.assign(v)

	case *ast.IncDecStmt:
		target := f.lvalue(v.X)
		st := &mir.Assign{
			Loc:    loc(v),
			Target: target,
			Value: &mir.Binary{
				Loc: loc(v),
				Op:  mir.OpOther,
				X:   target,
				Y:   &mir.Literal{Kind: mir.LitNumber, Value: "1"},
			},
		}
		f.at(st)
		return []mir.Stmt{st}

	case *ast.DeclStmt:
		return f.declStmt(v)

	case *ast.ReturnStmt:
		return f.returnStmt(v)

	case *ast.IfStmt:
		return f.ifStmt(v)

	case *ast.ForStmt:
		return []mir.Stmt{f.forStmt(v)}

	case *ast.RangeStmt:
		return f.rangeStmt(v)

	case *ast.SwitchStmt:
		return f.switchStmt(v)

	case *ast.TypeSwitchStmt:
		return f.typeSwitch(v)

	case *ast.SelectStmt:
		return []mir.Stmt{f.selectStmt(v)}

	case *ast.BranchStmt:
		return f.branch(v)

	case *ast.LabeledStmt:
		return f.labeled(v)

	case *ast.DeferStmt:
		return f.deferred(v.Call)

	case *ast.GoStmt:
		return f.deferred(v.Call)

	case *ast.SendStmt:
		return f.evaluate(v.Chan, v.Value)

	default:
		st := &mir.ExprStmt{
			Loc: loc(s),
			X: &mir.Unknown{
				Loc:  loc(s),
				What: fmt.Sprintf("%T", s),
			},
		}
		f.at(st)
		return []mir.Stmt{st}
	}
}

// single turns a statement list into one statement.
func single(list []mir.Stmt) mir.Stmt {
	switch len(list) {
	case 0:
		return &mir.Empty{}
	case 1:
		return list[0]
	default:
		return &mir.Block{Stmts: list}
	}
}

// evaluate evaluates expressions for their effects in order.
func (f *fn) evaluate(list ...ast.Expr) []mir.Stmt {
	var res []mir.Stmt
	for _, e := range list {
		st := &mir.ExprStmt{
			Loc: loc(e),
			X:   f.expr(e),
		}
		f.at(st)
		res = append(res, st)
	}

	return res
}

func (f *fn) exprStmt(v *ast.ExprStmt) mir.Stmt {
	if call, ok := ast.Unparen(v.X).(*ast.CallExpr); ok && f.isBuiltin(call.Fun, "panic") {
		st := &mir.Throw{
			Loc:  loc(v),
			Type: "panic",
		}
		if len(call.Args) > 0 {
			st.Value = f.expr(call.Args[0])
		}
		f.at(st)
		return st
	}

	st := &mir.ExprStmt{
		Loc: loc(v),
		X:   f.expr(v.X),
	}
	f.at(st)
	return st
}

func (f *fn) assign(v *ast.AssignStmt) []mir.Stmt {
	switch {
	case v.Tok != token.ASSIGN && v.Tok != token.DEFINE:
		// x op= y
		target := f.lvalue(v.Lhs[0])
		st := &mir.Assign{
			Loc:    loc(v),
			Target: target,
			Value: &mir.Binary{
				Loc: loc(v),
				Op:  mir.OpOther,
				X:   target,
				Y:   f.expr(v.Rhs[0]),
			},
		}
		f.at(st)
		return []mir.Stmt{st}

	case len(v.Lhs) == 1 && len(v.Rhs) == 1:
		return []mir.Stmt{f.bind(loc(v), v.Lhs[0], func() mir.Expr { return f.expr(v.Rhs[0]) })}

	case len(v.Rhs) == 1:
		return f.multiValue(v.Lhs, v.Rhs[0])

	case v.Tok == token.DEFINE && f.allNew(v.Lhs):
		var res []mir.Stmt
		for i, lhs := range v.Lhs {
			res = append(res, f.bind(loc(lhs), lhs, func() mir.Expr { return f.expr(v.Rhs[i]) }))
		}
		return res

	default:
		// Right hand sides are evaluated before any assignment takes place.
		var res []mir.Stmt
		temps := make([]string, len(v.Rhs))
		for i, rhs := range v.Rhs {
			temps[i] = f.temp()
			st := &mir.Decl{
				Loc:  loc(rhs),
				Name: temps[i],
				Type: f.typeString(f.t.info.TypeOf(rhs)),
				Init: f.expr(rhs),
			}
			f.at(st)
			res = append(res, st)
		}
		for i, lhs := range v.Lhs {
			res = append(res, f.bind(loc(lhs), lhs, func() mir.Expr {
				return &mir.Var{Name: temps[i]}
			}))
		}
		return res
	}
}

// multiValue assigns results of a single multi value expression.
func (f *fn) multiValue(lhs []ast.Expr, rhs ast.Expr) []mir.Stmt {
	var res []mir.Stmt

	var value mir.Expr
	if ta, isAssert := ast.Unparen(rhs).(*ast.TypeAssertExpr); isAssert {
		// Comma-ok assertions do not panic.
		f.expr(ta.X)
		value = &mir.Unknown{Loc: loc(rhs)}
	} else {
		value = f.expr(rhs)
	}
	call, ok := value.(*mir.Call)
	if ok {
		st := &mir.ExprStmt{
			Loc: loc(rhs),
			X:   call,
		}
		f.at(st)
		res = append(res, st)
	}

	for i, e := range lhs {
		res = append(res, f.bind(loc(e), e, func() mir.Expr {
			switch {
			case ok:
				return &mir.Result{
					Loc:   loc(e),
					Call:  call,
					Index: i,
				}
			case i == 0:
				// Comma-ok forms: the element of a map or an unknown.
				if _, isIndex := value.(*mir.Index); isIndex {
					return value
				}
				return &mir.Unknown{
					Loc:  loc(rhs),
					What: "comma-ok " + types.ExprString(rhs),
				}
			default:
				return &mir.Unknown{
					Loc:  loc(e),
					What: "ok",
				}
			}
		}))
	}

	return res
}

func (f *fn) allNew(list []ast.Expr) bool {
	for _, e := range list {
		id, ok := e.(*ast.Ident)
		if !ok {
			return false
		}
		if id.Name != "_" && f.t.info.Defs[id] == nil {
			return false
		}
	}

	return true
}

// bind assigns a value to the left hand side. Targets are translated before values.
func (f *fn) bind(l mir.Loc, lhs ast.Expr, value func() mir.Expr) mir.Stmt {
	lhs = ast.Unparen(lhs)

	if id, ok := lhs.(*ast.Ident); ok {
		if id.Name == "_" {
			st := &mir.ExprStmt{
				Loc: l,
				X:   value(),
			}
			f.at(st)
			return st
		}

		if obj := f.t.info.Defs[id]; obj != nil {
			st := &mir.Decl{
				Loc:    l,
				Name:   f.name(obj),
				Type:   f.typeString(obj.Type()),
				Init:   value(),
				Shared: f.isShared(obj),
			}
			f.at(st)
			return st
		}
	}

	target := f.lvalue(lhs)
	st := &mir.Assign{
		Loc:    l,
		Target: target,
		Value:  value(),
	}
	if fld, ok := target.(*mir.Field); ok {
		f.writes = append(f.writes, FieldWrite{
			Owner: fld.Owner,
			Name:  fld.Name,
			Value: st.Value,
			Pos:   lhs.Pos(),
		})
	}
	f.at(st)
	return st
}

// lvalue translates an assignment target.
func (f *fn) lvalue(e ast.Expr) mir.Expr {
	e = ast.Unparen(e)

	if ix, ok := e.(*ast.IndexExpr); ok {
		if _, isMap := underlying(f.t.info.TypeOf(ix.X)).(*types.Map); isMap {
			// Stores into nil maps panic.
			x := f.expr(ix.X)
			f.use(x, ix.X)
			return &mir.Index{
				Loc:   loc(ix),
				X:     x,
				Index: f.expr(ix.Index),
			}
		}
	}

	return f.expr(e)
}

func (f *fn) declStmt(v *ast.DeclStmt) []mir.Stmt {
	gen, ok := v.Decl.(*ast.GenDecl)
	if !ok || gen.Tok != token.VAR {
		return nil
	}

	var res []mir.Stmt
	for _, spec := range gen.Specs {
		vs, ok := spec.(*ast.ValueSpec)
		if !ok {
			continue
		}

		lhs := make([]ast.Expr, len(vs.Names))
		for i, name := range vs.Names {
			lhs[i] = name
		}

		switch {
		case len(vs.Values) == 0:
			for _, name := range vs.Names {
				obj := f.t.info.Defs[name]
				if obj == nil {
					continue
				}
				st := &mir.Decl{
					Loc:    loc(name),
					Name:   f.name(obj),
					Type:   f.typeString(obj.Type()),
					Init:   zero(obj.Type()),
					Shared: f.isShared(obj),
				}
				f.at(st)
				res = append(res, st)
			}

		case len(vs.Values) == 1 && len(vs.Names) > 1:
			res = append(res, f.multiValue(lhs, vs.Values[0])...)

		default:
			for i, name := range lhs {
				if i >= len(vs.Values) {
					break
				}
				res = append(res, f.bind(loc(name), name, func() mir.Expr { return f.expr(vs.Values[i]) }))
			}
		}
	}

	return res
}

// zero is the zero value of a type.
func zero(t types.Type) mir.Expr {
	if isNillable(t) {
		return &mir.Literal{Kind: mir.LitNull, Value: "nil"}
	}

	return &mir.Literal{Kind: mir.LitOther, Value: "zero"}
}

func (f *fn) returnStmt(v *ast.ReturnStmt) []mir.Stmt {
	var res []mir.Stmt
	st := &mir.Return{Loc: loc(v)}
	if n := len(v.Results); n > 0 {
		res = f.evaluate(v.Results[:n-1]...)
		st.Value = f.expr(v.Results[n-1])
	}
	f.at(st)

	return append(res, st)
}

func (f *fn) ifStmt(v *ast.IfStmt) []mir.Stmt {
	var res []mir.Stmt
	if v.Init != nil {
		res = f.stmt(v.Init)
	}

	cond := f.expr(v.Cond)
	f.at(cond)
	st := &mir.If{
		Loc:  loc(v),
		Cond: cond,
		Then: f.block(v.Body),
	}
	if v.Else != nil {
		st.Else = single(f.stmt(v.Else))
	}

	return append(res, st)
}

func (f *fn) forStmt(v *ast.ForStmt) mir.Stmt {
	var init []mir.Stmt
	if v.Init != nil {
		init = f.stmt(v.Init)
	}

	var cond mir.Expr
	if v.Cond != nil {
		cond = f.expr(v.Cond)
		f.at(cond)
	}

	body := f.block(v.Body)

	var update []mir.Stmt
	if v.Post != nil {
		update = f.stmt(v.Post)
	}

	if init == nil && update == nil && cond != nil {
		return &mir.While{
			Loc:  loc(v),
			Cond: cond,
			Body: body,
		}
	}

	return &mir.For{
		Loc:    loc(v),
		Init:   init,
		Cond:   cond,
		Update: update,
		Body:   body,
	}
}

// rangeStmt evaluates the ranged value once and loops an unknown number of times.
func (f *fn) rangeStmt(v *ast.RangeStmt) []mir.Stmt {
	x := f.expr(v.X)
	eval := &mir.ExprStmt{
		Loc: loc(v.X),
		X:   x,
	}
	f.at(eval)

	var bindings []mir.Stmt
	if v.Key != nil {
		bindings = append(bindings, f.rangeBind(v, v.Key, func() mir.Expr {
			return &mir.Unknown{
				Loc:  loc(v.Key),
				What: "range key",
			}
		}))
	}
	if v.Value != nil {
		bindings = append(bindings, f.rangeBind(v, v.Value, func() mir.Expr {
			if _, ok := mir.PathOf(x, nil); !ok {
				return &mir.Unknown{
					Loc:  loc(v.Value),
					What: "range element",
				}
			}
			return &mir.Index{
				Loc:   loc(v.Value),
				X:     x,
				Index: &mir.Unknown{What: "range key"},
			}
		}))
	}

	body := f.block(v.Body)
	body.Stmts = append(bindings, body.Stmts...)

	return []mir.Stmt{
		eval,
		&mir.While{
			Loc:  loc(v),
			Cond: &mir.Unknown{What: "range"},
			Body: body,
		},
	}
}

func (f *fn) rangeBind(v *ast.RangeStmt, lhs ast.Expr, value func() mir.Expr) mir.Stmt {
	if v.Tok == token.DEFINE {
		return f.bind(loc(lhs), lhs, value)
	}

	// Plain assignments in range clauses never declare.
	target := f.lvalue(lhs)
	st := &mir.Assign{
		Loc:    loc(lhs),
		Target: target,
		Value:  value(),
	}
	f.at(st)
	return st
}

func (f *fn) switchStmt(v *ast.SwitchStmt) []mir.Stmt {
	var res []mir.Stmt
	if v.Init != nil {
		res = f.stmt(v.Init)
	}

	st := &mir.Switch{Loc: loc(v)}
	if v.Tag != nil {
		st.Tag = f.expr(v.Tag)
	}
	f.at(st)

	for _, clause := range v.Body.List {
		cc, ok := clause.(*ast.CaseClause)
		if !ok {
			continue
		}

		c := &mir.Case{Loc: loc(cc)}
		for _, e := range cc.List {
			c.Values = append(c.Values, f.expr(e))
		}
		f.at(c)
		c.Body = f.caseBody(cc.Body)
		st.Cases = append(st.Cases, c)
	}

	return append(res, st)
}

// caseBody translates a clause body. Go clauses do not fall through unless asked to.
func (f *fn) caseBody(list []ast.Stmt) []mir.Stmt {
	body := f.stmts(list)
	if n := len(list); n > 0 {
		if br, ok := list[n-1].(*ast.BranchStmt); ok && br.Tok == token.FALLTHROUGH {
			return body
		}
	}

	return append(body, &mir.Break{})
}

func (f *fn) typeSwitch(v *ast.TypeSwitchStmt) []mir.Stmt {
	var res []mir.Stmt
	if v.Init != nil {
		res = f.stmt(v.Init)
	}

	var ta *ast.TypeAssertExpr
	switch a := v.Assign.(type) {
	case *ast.ExprStmt:
		ta, _ = ast.Unparen(a.X).(*ast.TypeAssertExpr)
	case *ast.AssignStmt:
		if len(a.Rhs) == 1 {
			ta, _ = ast.Unparen(a.Rhs[0]).(*ast.TypeAssertExpr)
		}
	}
	if ta == nil {
		return append(res, f.stmt(v.Assign)...)
	}

	subject := f.expr(ta.X)
	if _, ok := mir.PathOf(subject, nil); ok {
		st := &mir.ExprStmt{
			Loc: loc(ta.X),
			X:   subject,
		}
		f.at(st)
		res = append(res, st)
	} else {
		name := f.temp()
		st := &mir.Decl{
			Loc:  loc(ta.X),
			Name: name,
			Type: f.typeString(f.t.info.TypeOf(ta.X)),
			Init: subject,
		}
		f.at(st)
		res = append(res, st)
		subject = &mir.Var{Name: name}
	}

	sw := &mir.Switch{Loc: loc(v)}
	f.at(sw)
	for _, clause := range v.Body.List {
		cc, ok := clause.(*ast.CaseClause)
		if !ok {
			continue
		}

		c := &mir.Case{Loc: loc(cc)}
		for _, te := range cc.List {
			if tv, ok := f.t.info.Types[te]; ok && tv.IsNil() {
				c.Values = append(c.Values, &mir.Binary{
					Loc: loc(te),
					Op:  mir.OpEq,
					X:   subject,
					Y:   &mir.Literal{Kind: mir.LitNull, Value: "nil"},
				})
				continue
			}
			c.Values = append(c.Values, &mir.InstanceOf{
				Loc:  loc(te),
				X:    subject,
				Type: f.typeString(f.t.info.TypeOf(te)),
			})
		}
		f.at(c)

		var body []mir.Stmt
		if obj := f.t.info.Implicits[cc]; obj != nil {
			// The bound variable only exists in a clause.
			decl := &mir.Decl{
				Name:   f.name(obj),
				Type:   f.typeString(obj.Type()),
				Shared: f.isShared(obj),
				Init:   &mir.Cast{
					X:    subject,
					Type: f.typeString(obj.Type()),
				},
			}
			f.at(decl)
			body = append(body, decl)
		}
		c.Body = append(body, f.caseBody(cc.Body)...)
		sw.Cases = append(sw.Cases, c)
	}

	return append(res, sw)
}

// selectStmt turns select into a switch with cases chosen at random.
func (f *fn) selectStmt(v *ast.SelectStmt) mir.Stmt {
	sw := &mir.Switch{Loc: loc(v)}
	f.at(sw)

	for _, clause := range v.Body.List {
		cc, ok := clause.(*ast.CommClause)
		if !ok {
			continue
		}

		c := &mir.Case{Loc: loc(cc)}
		if cc.Comm != nil {
			c.Values = []mir.Expr{
				&mir.Unknown{
					Loc:  loc(cc.Comm),
					What: "select case",
				},
			}
		}
		f.at(c)
		if cc.Comm != nil {
			c.Body = f.stmt(cc.Comm)
		}
		c.Body = append(c.Body, f.caseBody(cc.Body)...)
		sw.Cases = append(sw.Cases, c)
	}

	return sw
}

func (f *fn) branch(v *ast.BranchStmt) []mir.Stmt {
	var label string
	if v.Label != nil {
		label = v.Label.Name
	}

	switch v.Tok {
	case token.BREAK:
		return []mir.Stmt{&mir.Break{Loc: loc(v), Label: label}}
	case token.CONTINUE:
		return []mir.Stmt{&mir.Continue{Loc: loc(v), Label: label}}
	case token.GOTO:
		return []mir.Stmt{&mir.Goto{Loc: loc(v), Label: label}}
	default:
		// fallthrough is handled by switches.
		return nil
	}
}

// labeled attaches a label. Statements a loop or a switch was prefixed with are
// moved before the label.
func (f *fn) labeled(v *ast.LabeledStmt) []mir.Stmt {
	inner := f.stmt(v.Stmt)
	if n := len(inner); n > 0 {
		switch inner[n-1].(type) {
		case *mir.While, *mir.For, *mir.DoWhile, *mir.Switch:
			return append(inner[:n-1:n-1], &mir.Labeled{
				Loc:   loc(v),
				Label: v.Label.Name,
				Stmt:  inner[n-1],
			})
		}
	}

	return []mir.Stmt{
		&mir.Labeled{
			Loc:   loc(v),
			Label: v.Label.Name,
			Stmt:  single(inner),
		},
	}
}

// deferred evaluates arguments of a deferred or a go call. The call itself runs elsewhere.
func (f *fn) deferred(call *ast.CallExpr) []mir.Stmt {
	return f.evaluate(call.Args...)
}

func underlying(t types.Type) types.Type {
	if t == nil {
		return nil
	}

	return t.Underlying()
}
