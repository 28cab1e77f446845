package transfer

import (
	"github.com/sirkon/qualflow/internal/mir"
	"github.com/sirkon/qualflow/internal/store"
)

// Observer receives right operands of short-circuit operators together with
// the store they are evaluated in.
type Observer func(operand mir.Expr, s *store.Store)

// Cond applies a condition. It returns stores valid when the condition holds and when
// it does not. Either may be nil when the respective outcome is impossible.
// observe may be nil.
func (t *Transfer) Cond(s *store.Store, e mir.Expr, observe Observer) (yes, no *store.Store) {
	if s == nil {
		return nil, nil
	}

	switch v := e.(type) {
	case *mir.Literal:
		if v.Kind == mir.LitBool {
			switch v.Value {
			case "true":
				return s, nil
			case "false":
				return nil, s
			}
		}
		return s, s

	case *mir.Not:
		yes, no = t.Cond(s, v.X, observe)
		return no, yes

	case *mir.Cast:
		return t.Cond(s, v.X, observe)

	case *mir.Binary:
		switch v.Op {
		case mir.OpAnd:
			yesX, noX := t.Cond(s, v.X, observe)
			if observe != nil {
				observe(v.Y, yesX)
			}
			yesY, noY := t.Cond(yesX, v.Y, observe)
			return yesY, store.Join(noX, noY)

		case mir.OpOr:
			yesX, noX := t.Cond(s, v.X, observe)
			if observe != nil {
				observe(v.Y, noX)
			}
			yesY, noY := t.Cond(noX, v.Y, observe)
			return store.Join(yesX, yesY), noY

		case mir.OpEq:
			return t.equality(s, v.X, v.Y, observe)

		case mir.OpNeq:
			yes, no = t.equality(s, v.X, v.Y, observe)
			return no, yes
		}

	case *mir.InstanceOf:
		s = t.eval(s, v.X, observe)
		yes, no = s, s
		p, ok := t.Path(v.X)
		if !ok {
			return yes, no
		}
		for _, c := range t.rules.Conditions {
			if c.Kind == ConditionTypeTest && (c.Type == "" || c.Type == v.Type) {
				yes = yes.Refine(p, c.OnMatch)
				no = no.Refine(p, c.OnMismatch)
			}
		}
		return yes, no

	case *mir.Call:
		s = t.eval(s, v, observe)
		yes, no = s, s
		for _, c := range t.rules.Conditions {
			if c.Kind != ConditionPredicate || c.Func != v.Func {
				continue
			}
			p, ok := t.argPath(v, c.Arg)
			if !ok {
				continue
			}
			yes = yes.Refine(p, c.OnMatch)
			no = no.Refine(p, c.OnMismatch)
		}
		return yes, no
	}

	s = t.eval(s, e, observe)
	return s, s
}

func (t *Transfer) equality(s *store.Store, x, y mir.Expr, observe Observer) (yes, no *store.Store) {
	s = t.eval(t.eval(s, x, observe), y, observe)
	if s == nil {
		return nil, nil
	}
	yes, no = s, s

	lit, other := literalSide(x, y)
	if lit != nil {
		p, ok := t.Path(other)
		if !ok {
			return yes, no
		}
		for _, c := range t.rules.Conditions {
			if c.Kind != ConditionSentinel || c.Literal != lit.Kind || (c.Value != "" && c.Value != lit.Value) {
				continue
			}
			yes = yes.Refine(p, c.OnMatch)
			no = no.Refine(p, c.OnMismatch)
		}
		return yes, no
	}

	if !t.hasIdentity() {
		return yes, no
	}

	// Equal values share their qualifiers.
	qx, qy := t.Value(s, x), t.Value(s, y)
	meet := t.rules.Lattice.GLB(qx, qy)
	for _, e := range []mir.Expr{x, y} {
		if p, ok := t.Path(e); ok {
			yes = yes.Refine(p, meet)
		}
	}

	return yes, no
}

func (t *Transfer) hasIdentity() bool {
	for _, c := range t.rules.Conditions {
		if c.Kind == ConditionIdentity {
			return true
		}
	}

	return false
}

func (t *Transfer) argPath(call *mir.Call, arg int) (mir.Path, bool) {
	switch {
	case arg < 0 && call.Recv != nil:
		return t.Path(call.Recv)
	case arg >= 0 && arg < len(call.Args):
		return t.Path(call.Args[arg])
	default:
		return mir.Path{}, false
	}
}

func literalSide(x, y mir.Expr) (*mir.Literal, mir.Expr) {
	if lit, ok := y.(*mir.Literal); ok {
		return lit, x
	}
	if lit, ok := x.(*mir.Literal); ok {
		return lit, y
	}

	return nil, nil
}
