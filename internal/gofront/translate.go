package gofront

import (
	"go/ast"
	"go/token"
	"go/types"
	"strconv"

	"github.com/sirkon/qualflow/internal/mir"
)

// Translator translates functions of one type checked package.
type Translator struct {
	pkg  *types.Package
	info *types.Info
}

// NewTranslator creates a translator for the package.
func NewTranslator(pkg *types.Package, info *types.Info) *Translator {
	return &Translator{
		pkg:  pkg,
		info: info,
	}
}

// Function is a translated function declaration.
type Function struct {
	Decl   *ast.FuncDecl
	Method *mir.Method

	// Receiver is the IR name of the receiver, empty for functions and unnamed receivers.
	Receiver string

	// Nullable lists IR names of parameters annotated as nullable.
	Nullable []string

	// NullableResult is set when results of the function are annotated as nullable.
	NullableResult bool

	Uses   []Use
	Writes []FieldWrite

	ref    mir.Reference
	hasRef bool
}

// Use is a place where a value is dereferenced: evaluation panics when it is nil.
type Use struct {
	// Point is a program point the dereference is evaluated at.
	Point mir.Node

	// Expr is the dereferenced value.
	Expr mir.Expr

	Pos  token.Pos
	Text string
}

// FieldWrite is a store of Value into field Name of Owner.
type FieldWrite struct {
	Point mir.Node
	Owner string
	Name  string
	Value mir.Expr
	Pos   token.Pos
}

// Ref returns a callee reference of the function.
func (f *Function) Ref() (mir.Reference, bool) {
	return f.ref, f.hasRef
}

// Func translates a function declaration. Declarations without bodies yield nil.
func (t *Translator) Func(decl *ast.FuncDecl) *Function {
	if decl.Body == nil {
		return nil
	}

	f := &fn{
		t:      t,
		res:    &Function{Decl: decl},
		names:  map[types.Object]string{},
		taken:  map[string]int{},
		source: map[string]string{},
		params: map[types.Object]struct{}{},
		shared: sharedVars(t.info, decl.Body),
	}

	if obj, ok := t.info.Defs[decl.Name].(*types.Func); ok {
		f.res.ref, f.res.hasRef = FuncRef(obj)
	}

	m := &mir.Method{
		Loc:  loc(decl),
		Name: decl.Name.Name,
	}
	if decl.Recv != nil && len(decl.Recv.List) > 0 {
		m.Name = ownerName(t.info.TypeOf(decl.Recv.List[0].Type)) + "." + decl.Name.Name
		for _, name := range decl.Recv.List[0].Names {
			if p, ok := f.param(name); ok {
				m.Params = append(m.Params, p)
				f.res.Receiver = p.Name
			}
		}
	}
	for _, field := range decl.Type.Params.List {
		for _, name := range field.Names {
			if p, ok := f.param(name); ok {
				m.Params = append(m.Params, p)
			}
		}
	}

	nullable, _ := directiveArgs(directiveNullable, decl.Doc)
	for _, name := range nullable {
		if name == ResultName {
			f.res.NullableResult = true
			continue
		}
		for _, p := range m.Params {
			if f.source[p.Name] == name {
				f.res.Nullable = append(f.res.Nullable, p.Name)
			}
		}
	}

	var stmts []mir.Stmt
	if decl.Type.Results != nil {
		// Named results start zeroed.
		for _, field := range decl.Type.Results.List {
			for _, name := range field.Names {
				if name.Name == "_" {
					continue
				}
				obj := t.info.Defs[name]
				stmts = append(stmts, &mir.Decl{
					Loc:    loc(name),
					Name:   f.name(obj),
					Type:   f.typeString(obj.Type()),
					Shared: f.isShared(obj),
				})
			}
		}
	}
	body := f.block(decl.Body)
	body.Stmts = append(stmts, body.Stmts...)
	m.Body = body

	f.res.Method = m
	return f.res
}

// fn is a translation state of one function.
type fn struct {
	t   *Translator
	res *Function

	// names maps objects to IR names, taken counts objects sharing a source name.
	names  map[types.Object]string
	taken  map[string]int
	source map[string]string
	params map[types.Object]struct{}
	shared map[types.Object]struct{}

	temps int

	// pending uses wait for the program point their expression belongs to.
	pending []Use
	writes  []FieldWrite
}

func (f *fn) param(id *ast.Ident) (mir.Param, bool) {
	if id == nil || id.Name == "_" {
		return mir.Param{}, false
	}
	obj := f.t.info.Defs[id]
	if obj == nil {
		return mir.Param{}, false
	}

	f.params[obj] = struct{}{}
	return mir.Param{
		Name:   f.name(obj),
		Type:   f.typeString(obj.Type()),
		Shared: f.isShared(obj),
	}, true
}

// name returns a unique IR name of a local object. Shadowing objects get numbered names.
func (f *fn) name(obj types.Object) string {
	if name, ok := f.names[obj]; ok {
		return name
	}

	name := obj.Name()
	if n := f.taken[name]; n > 0 {
		name += "#" + strconv.Itoa(n+1)
	}
	f.taken[obj.Name()]++
	f.names[obj] = name
	f.source[name] = obj.Name()

	return name
}

func (f *fn) isShared(obj types.Object) bool {
	_, ok := f.shared[obj]
	return ok
}

// temp returns a fresh name for an intermediate value.
func (f *fn) temp() string {
	f.temps++
	return "$" + strconv.Itoa(f.temps)
}

func (f *fn) typeString(t types.Type) string {
	if t == nil {
		return ""
	}

	return types.TypeString(t, types.RelativeTo(f.t.pkg))
}

// use records a dereference of x, which is a translation of e.
func (f *fn) use(x mir.Expr, e ast.Expr) {
	f.pending = append(f.pending, Use{
		Expr: x,
		Pos:  e.Pos(),
		Text: types.ExprString(e),
	})
}

// at binds pending uses and writes to the program point.
func (f *fn) at(point mir.Node) {
	for _, u := range f.pending {
		u.Point = point
		f.res.Uses = append(f.res.Uses, u)
	}
	f.pending = f.pending[:0]

	for _, w := range f.writes {
		w.Point = point
		f.res.Writes = append(f.res.Writes, w)
	}
	f.writes = f.writes[:0]
}

func loc(n ast.Node) mir.Loc {
	return mir.Loc{Start: n.Pos(), End: n.End()}
}
