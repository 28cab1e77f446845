package gofront

import (
	"go/types"

	"github.com/sirkon/qualflow/internal/mir"
)

// ownerName names the type a field belongs to: package path and name for named types.
func ownerName(t types.Type) string {
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}

	switch v := t.(type) {
	case *types.Named:
		obj := v.Obj()
		if obj.Pkg() == nil {
			return obj.Name()
		}
		return obj.Pkg().Path() + "." + obj.Name()
	case *types.Alias:
		return ownerName(types.Unalias(v))
	default:
		return types.TypeString(t, nil)
	}
}

// FuncRef resolves a reference of a function or a method. Methods are referred by
// the name of their receiver type, pointers are stripped.
func FuncRef(obj types.Object) (mir.Reference, bool) {
	switch fn := obj.(type) {
	case *types.Builtin:
		return mir.Func("builtin", fn.Name()), true

	case *types.Func:
		pkg := fn.Pkg()
		if pkg == nil {
			// Methods of the universe error interface.
			return mir.MethodOf("builtin", "error", fn.Name()), true
		}

		ref := mir.Func(pkg.Path(), fn.Name())
		sig, ok := fn.Type().(*types.Signature)
		if !ok || sig.Recv() == nil {
			return ref, true
		}

		recv := types.Unalias(sig.Recv().Type())
		if p, ok := recv.(*types.Pointer); ok {
			recv = types.Unalias(p.Elem())
		}
		if named, ok := recv.(*types.Named); ok {
			ref.Type = named.Obj().Name()
		}
		return ref, true

	default:
		return mir.Reference{}, false
	}
}

// isPointer reports whether values of t are dereferenced by field selections.
func isPointer(t types.Type) bool {
	if t == nil {
		return false
	}
	_, ok := t.Underlying().(*types.Pointer)
	return ok
}

// isNillable reports whether the zero value of t is nil.
func isNillable(t types.Type) bool {
	if t == nil {
		return false
	}

	switch t.Underlying().(type) {
	case *types.Pointer, *types.Map, *types.Slice, *types.Chan, *types.Signature, *types.Interface:
		return true
	default:
		return false
	}
}
