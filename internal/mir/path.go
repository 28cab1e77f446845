package mir

import (
	"slices"
	"strings"
)

// RootKind tells what a trackable path starts from.
type RootKind int

const (
	_ RootKind = iota
	RootLocal
	RootParam
	RootThis
)

// StepKind is a kind of path step.
type StepKind int

const (
	_ StepKind = iota
	StepField
	StepCall
)

// Step is one selector of a path after its root.
type Step struct {
	Kind StepKind
	Name string

	// Owner and Final describe field steps.
	Owner string
	Final bool

	// Func and Args describe pure call steps. Args are keys of argument paths or literal values.
	Func Reference
	Args []string
}

// Path is the normal form of a trackable expression.
//
//	this.next.value // Root: "this", Steps: [next, value]
//	list.Get(i)     // Root: "list", Steps: [Get(i)], Deps: [list i]
type Path struct {
	Key      string
	Root     string
	RootKind RootKind
	Steps    []Step

	// Deps lists variables the path value depends on, sorted.
	Deps []string

	// Shared is set when the root variable is reachable through pointers or closures.
	Shared bool
}

// IsVar reports whether the path is a bare variable or "this".
func (p Path) IsVar() bool {
	return len(p.Steps) == 0
}

// Last returns the last step of the path. It must not be called on bare variables.
func (p Path) Last() Step {
	return p.Steps[len(p.Steps)-1]
}

// Mutable reports whether the path goes through state a side-effecting call may change:
// a shared root, a non-final field or a call result.
func (p Path) Mutable() bool {
	if p.Shared {
		return true
	}
	for _, s := range p.Steps {
		if s.Kind == StepCall || !s.Final {
			return true
		}
	}

	return false
}

// Through reports whether the path selects field name of owner anywhere.
func (p Path) Through(owner, name string) bool {
	for _, s := range p.Steps {
		if s.Kind == StepField && s.Name == name && s.Owner == owner {
			return true
		}
	}

	return false
}

// DependsOn reports whether the path value changes when variable v is reassigned.
func (p Path) DependsOn(v string) bool {
	_, found := slices.BinarySearch(p.Deps, v)
	return found
}

// PathOf computes the trackable normal form of e. Calls are only trackable if pure
// reports them side effect free. pure may be nil.
func PathOf(e Expr, pure func(*Call) bool) (Path, bool) {
	switch v := e.(type) {
	case *Var:
		kind := RootLocal
		if v.Param {
			kind = RootParam
		}
		return Path{
			Key:      v.Name,
			Root:     v.Name,
			RootKind: kind,
			Deps:     []string{v.Name},
			Shared:   v.Shared,
		}, true

	case *This:
		return Path{
			Key:      "this",
			Root:     "this",
			RootKind: RootThis,
		}, true

	case *Cast:
		return PathOf(v.X, pure)

	case *Field:
		base, ok := PathOf(v.Recv, pure)
		if !ok {
			return Path{}, false
		}
		return base.extend(
			v.Name,
			Step{
				Kind:  StepField,
				Name:  v.Name,
				Owner: v.Owner,
				Final: v.Final,
			},
			nil,
		), true

	case *Call:
		if v.Recv == nil || pure == nil || !pure(v) {
			return Path{}, false
		}
		base, ok := PathOf(v.Recv, pure)
		if !ok {
			return Path{}, false
		}

		var deps []string
		args := make([]string, 0, len(v.Args))
		for _, arg := range v.Args {
			if lit, ok := arg.(*Literal); ok {
				args = append(args, lit.Value)
				continue
			}
			ap, ok := PathOf(arg, pure)
			if !ok {
				return Path{}, false
			}
			args = append(args, ap.Key)
			deps = append(deps, ap.Deps...)
		}

		return base.extend(
			v.Func.Name+"("+strings.Join(args, ", ")+")",
			Step{
				Kind: StepCall,
				Name: v.Func.Name,
				Func: v.Func,
				Args: args,
			},
			deps,
		), true

	default:
		return Path{}, false
	}
}

func (p Path) extend(selector string, step Step, deps []string) Path {
	res := Path{
		Key:      p.Key + "." + selector,
		Root:     p.Root,
		RootKind: p.RootKind,
		Steps:    append(slices.Clip(p.Steps), step),
		Deps:     p.Deps,
		Shared:   p.Shared,
	}
	if len(deps) > 0 {
		res.Deps = append(slices.Clone(p.Deps), deps...)
		slices.Sort(res.Deps)
		res.Deps = slices.Compact(res.Deps)
	}

	return res
}
