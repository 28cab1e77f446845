package gofront

import (
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/types/typeutil"

	"github.com/sirkon/qualflow/internal/mir"
)

// expr translates an expression and records dereferences its evaluation does.
func (f *fn) expr(e ast.Expr) mir.Expr {
	if e == nil {
		return nil
	}

	info := f.t.info
	if tv, ok := info.Types[e]; ok {
		switch {
		case tv.IsNil():
			return &mir.Literal{
				Loc:   loc(e),
				Kind:  mir.LitNull,
				Value: "nil",
			}
		case tv.Value != nil:
			return constLiteral(loc(e), tv.Value)
		case tv.IsType():
			return &mir.Unknown{
				Loc:  loc(e),
				What: "type " + types.ExprString(e),
			}
		}
	}

	switch v := e.(type) {
	case *ast.ParenExpr:
		return f.expr(v.X)

	case *ast.Ident:
		return f.ident(v)

	case *ast.SelectorExpr:
		return f.selector(v)

	case *ast.CallExpr:
		return f.call(v)

	case *ast.StarExpr:
		x := f.expr(v.X)
		f.use(x, v.X)
		return &mir.Deref{
			Loc: loc(v),
			X:   x,
		}

	case *ast.UnaryExpr:
		return f.unary(v)

	case *ast.BinaryExpr:
		return &mir.Binary{
			Loc: loc(v),
			Op:  binaryOp(v.Op),
			X:   f.expr(v.X),
			Y:   f.expr(v.Y),
		}

	case *ast.CompositeLit:
		return f.composite(v)

	case *ast.FuncLit:
		// Closure bodies are not analyzed.
		return &mir.New{
			Loc:  loc(v),
			Type: f.typeString(info.TypeOf(v)),
		}

	case *ast.IndexExpr:
		if _, ok := underlying(info.TypeOf(v.X)).(*types.Signature); ok {
			// Instantiation of a generic function.
			return &mir.Literal{
				Loc:   loc(v),
				Kind:  mir.LitOther,
				Value: types.ExprString(v),
			}
		}

		x := f.expr(v.X)
		if isPointer(info.TypeOf(v.X)) {
			f.use(x, v.X)
		}
		return &mir.Index{
			Loc:   loc(v),
			X:     x,
			Index: f.expr(v.Index),
		}

	case *ast.SliceExpr:
		x := f.expr(v.X)
		if isPointer(info.TypeOf(v.X)) {
			f.use(x, v.X)
		}
		// Slicing keeps nil slices nil.
		return &mir.Cast{
			Loc:  loc(v),
			X:    x,
			Type: f.typeString(info.TypeOf(v)),
		}

	case *ast.TypeAssertExpr:
		// Single value assertions panic on nil interfaces.
		x := f.expr(v.X)
		f.use(x, v.X)
		return &mir.Cast{
			Loc:  loc(v),
			X:    x,
			Type: f.typeString(info.TypeOf(v)),
		}

	case *ast.KeyValueExpr:
		return f.expr(v.Value)

	default:
		return &mir.Unknown{
			Loc:  loc(e),
			What: types.ExprString(e),
		}
	}
}

func (f *fn) exprs(list []ast.Expr) []mir.Expr {
	if len(list) == 0 {
		return nil
	}

	res := make([]mir.Expr, len(list))
	for i, e := range list {
		res[i] = f.expr(e)
	}

	return res
}

func (f *fn) ident(v *ast.Ident) mir.Expr {
	obj := f.t.info.ObjectOf(v)

	switch o := obj.(type) {
	case *types.Var:
		if o.Pkg() != nil && o.Parent() == o.Pkg().Scope() {
			return &mir.Unknown{
				Loc:  loc(v),
				What: "global " + v.Name,
			}
		}

		_, param := f.params[o]
		return &mir.Var{
			Loc:    loc(v),
			Name:   f.name(o),
			Param:  param,
			Shared: f.isShared(o),
		}

	case *types.Func:
		return &mir.Literal{
			Loc:   loc(v),
			Kind:  mir.LitOther,
			Value: v.Name,
		}

	default:
		return &mir.Unknown{
			Loc:  loc(v),
			What: v.Name,
		}
	}
}

func (f *fn) selector(v *ast.SelectorExpr) mir.Expr {
	info := f.t.info

	sel := info.Selections[v]
	if sel == nil {
		// Qualified identifier.
		return f.ident(v.Sel)
	}

	path := sel.Index()
	switch sel.Kind() {
	case types.FieldVal:
		x, typ, text, ok := f.embedded(v.X, path[:len(path)-1])
		if !ok {
			return x
		}
		return f.field(v, x, typ, sel.Obj().Name(), text)

	case types.MethodVal:
		recv, _, _, _ := f.embedded(v.X, path[:len(path)-1])
		return &mir.New{
			Loc:  loc(v),
			Type: f.typeString(info.TypeOf(v)),
			Args: []mir.Expr{recv},
		}

	default:
		return &mir.Literal{
			Loc:   loc(v),
			Kind:  mir.LitOther,
			Value: types.ExprString(v),
		}
	}
}

// embedded translates x followed by implicit selections of embedded fields. It returns
// the type and the source text of the last selected value.
func (f *fn) embedded(x ast.Expr, path []int) (res mir.Expr, typ types.Type, text string, ok bool) {
	res = f.expr(x)
	typ = f.t.info.TypeOf(x)
	text = types.ExprString(x)

	for _, idx := range path {
		st := structOf(typ)
		if st == nil || idx >= st.NumFields() {
			return &mir.Unknown{
				Loc:  loc(x),
				What: text,
			}, nil, text, false
		}

		fld := st.Field(idx)
		res = f.field(x, res, typ, fld.Name(), text)
		typ = fld.Type()
		text += "." + fld.Name()
	}

	return res, typ, text, true
}

// field selects a field of recv of type typ. Selections through pointers dereference.
func (f *fn) field(at ast.Node, recv mir.Expr, typ types.Type, name, text string) mir.Expr {
	deref := isPointer(typ)
	if deref {
		f.pending = append(f.pending, Use{
			Expr: recv,
			Pos:  at.Pos(),
			Text: text,
		})
	}

	return &mir.Field{
		Loc:   loc(at),
		Recv:  recv,
		Name:  name,
		Owner: ownerName(typ),
		Deref: deref,
	}
}

func structOf(t types.Type) *types.Struct {
	if t == nil {
		return nil
	}
	if p, ok := t.Underlying().(*types.Pointer); ok {
		t = p.Elem()
	}

	st, _ := t.Underlying().(*types.Struct)
	return st
}

func (f *fn) unary(v *ast.UnaryExpr) mir.Expr {
	switch v.Op {
	case token.AND:
		return &mir.New{
			Loc:  loc(v),
			Type: f.typeString(f.t.info.TypeOf(v)),
			Args: []mir.Expr{f.expr(v.X)},
		}

	case token.NOT:
		return &mir.Not{
			Loc: loc(v),
			X:   f.expr(v.X),
		}

	case token.ARROW:
		return &mir.Call{
			Loc:  loc(v),
			Func: mir.Func("builtin", "recv"),
			Args: []mir.Expr{f.expr(v.X)},
		}

	default:
		return &mir.Binary{
			Loc: loc(v),
			Op:  mir.OpOther,
			X:   &mir.Literal{Kind: mir.LitNumber, Value: "0"},
			Y:   f.expr(v.X),
		}
	}
}

func (f *fn) composite(v *ast.CompositeLit) mir.Expr {
	res := &mir.New{
		Loc:  loc(v),
		Type: f.typeString(f.t.info.TypeOf(v)),
	}

	_, isStruct := underlying(f.t.info.TypeOf(v)).(*types.Struct)
	for _, elt := range v.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			res.Args = append(res.Args, f.expr(elt))
			continue
		}
		if !isStruct {
			res.Args = append(res.Args, f.expr(kv.Key))
		}
		res.Args = append(res.Args, f.expr(kv.Value))
	}

	return res
}

func (f *fn) call(v *ast.CallExpr) mir.Expr {
	info := f.t.info

	if tv, ok := info.Types[v.Fun]; ok && tv.IsType() {
		res := &mir.Cast{
			Loc:  loc(v),
			Type: f.typeString(info.TypeOf(v)),
		}
		if len(v.Args) > 0 {
			res.X = f.expr(v.Args[0])
		}
		return res
	}

	switch callee := typeutil.Callee(info, v).(type) {
	case *types.Builtin:
		return f.builtin(v, callee)

	case *types.Func:
		ref, _ := FuncRef(callee)
		res := &mir.Call{
			Loc:  loc(v),
			Func: ref,
		}

		sig, _ := callee.Type().(*types.Signature)
		fun, isSel := ast.Unparen(v.Fun).(*ast.SelectorExpr)
		if sig != nil && sig.Recv() != nil && isSel {
			if sel := info.Selections[fun]; sel != nil && sel.Kind() == types.MethodVal {
				res.Recv = f.receiver(fun, sel, sig)
			}
		}
		res.Args = f.exprs(v.Args)
		return res

	default:
		// Calls of function values panic on nil.
		fun := f.expr(v.Fun)
		f.use(fun, v.Fun)
		return &mir.Call{
			Loc:  loc(v),
			Recv: fun,
			Args: f.exprs(v.Args),
		}
	}
}

// receiver translates a method receiver. Calls through nil interfaces and value
// methods called on nil pointers panic.
func (f *fn) receiver(fun *ast.SelectorExpr, sel *types.Selection, sig *types.Signature) mir.Expr {
	path := sel.Index()
	recv, typ, text, ok := f.embedded(fun.X, path[:len(path)-1])
	if !ok {
		return recv
	}

	declared := sig.Recv().Type()
	switch {
	case types.IsInterface(declared):
		f.pending = append(f.pending, Use{
			Expr: recv,
			Pos:  fun.X.Pos(),
			Text: text,
		})
	case isPointer(typ) && !isPointer(declared):
		f.pending = append(f.pending, Use{
			Expr: recv,
			Pos:  fun.X.Pos(),
			Text: text,
		})
	}

	return recv
}

func (f *fn) builtin(v *ast.CallExpr, b *types.Builtin) mir.Expr {
	switch b.Name() {
	case "new":
		return &mir.New{
			Loc:  loc(v),
			Type: f.typeString(f.t.info.TypeOf(v)),
		}

	case "make":
		var args []mir.Expr
		if len(v.Args) > 1 {
			args = f.exprs(v.Args[1:])
		}
		return &mir.New{
			Loc:  loc(v),
			Type: f.typeString(f.t.info.TypeOf(v)),
			Args: args,
		}

	default:
		ref, _ := FuncRef(b)
		return &mir.Call{
			Loc:  loc(v),
			Func: ref,
			Args: f.exprs(v.Args),
		}
	}
}

func (f *fn) isBuiltin(fun ast.Expr, name string) bool {
	id, ok := ast.Unparen(fun).(*ast.Ident)
	if !ok {
		return false
	}

	b, ok := f.t.info.Uses[id].(*types.Builtin)
	return ok && b.Name() == name
}

func binaryOp(op token.Token) mir.Op {
	switch op {
	case token.EQL:
		return mir.OpEq
	case token.NEQ:
		return mir.OpNeq
	case token.LAND:
		return mir.OpAnd
	case token.LOR:
		return mir.OpOr
	default:
		return mir.OpOther
	}
}

func constLiteral(l mir.Loc, v constant.Value) *mir.Literal {
	res := &mir.Literal{
		Loc:   l,
		Value: v.ExactString(),
	}

	switch v.Kind() {
	case constant.Bool:
		res.Kind = mir.LitBool
	case constant.String:
		res.Kind = mir.LitString
	case constant.Int, constant.Float, constant.Complex:
		res.Kind = mir.LitNumber
	default:
		res.Kind = mir.LitOther
	}

	return res
}
