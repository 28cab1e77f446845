package transfer

import (
	"github.com/sirkon/qualflow/internal/lattice"
	"github.com/sirkon/qualflow/internal/mir"
	"github.com/sirkon/qualflow/internal/store"
)

// Transfer applies transfer functions defined by rules.
type Transfer struct {
	rules   *Rules
	effects map[mir.Reference][]Effect
}

// New creates transfer functions for the given rules.
func New(rules *Rules) *Transfer {
	effects := map[mir.Reference][]Effect{}
	for _, e := range rules.Effects {
		effects[e.Func] = append(effects[e.Func], e)
	}

	return &Transfer{
		rules:   rules,
		effects: effects,
	}
}

// Rules returns rules transfer functions are defined by.
func (t *Transfer) Rules() *Rules {
	return t.rules
}

// Pure reports whether the call is side effect free.
func (t *Transfer) Pure(call *mir.Call) bool {
	return t.rules.Oracle != nil && t.rules.Oracle.IsSideEffectFree(call)
}

// Path computes the trackable normal form of e.
func (t *Transfer) Path(e mir.Expr) (mir.Path, bool) {
	return mir.PathOf(e, t.Pure)
}

// Exec applies a statement. Only statements that stay in a single basic block
// are meaningful here: declarations, assignments, expression statements, and
// returns and throws for the evaluation of their operand. Anything else is a no-op.
func (t *Transfer) Exec(s *store.Store, stmt mir.Stmt) *store.Store {
	return t.ExecObserved(s, stmt, nil)
}

// ExecObserved is Exec reporting right operands of short-circuit operators to observe.
func (t *Transfer) ExecObserved(s *store.Store, stmt mir.Stmt, observe Observer) *store.Store {
	if s == nil {
		return nil
	}

	switch v := stmt.(type) {
	case *mir.Decl:
		if v.Init == nil {
			return s.Remove(v.Name).KillDependents(v.Name)
		}
		return t.assign(s, &mir.Var{Loc: v.Loc, Name: v.Name, Shared: v.Shared}, v.Init, observe)
	case *mir.Assign:
		return t.assign(s, v.Target, v.Value, observe)
	case *mir.ExprStmt:
		return t.eval(s, v.X, observe)
	case *mir.Return:
		return t.eval(s, v.Value, observe)
	case *mir.Throw:
		return t.eval(s, v.Value, observe)
	default:
		return s
	}
}

func (t *Transfer) assign(s *store.Store, target, value mir.Expr, observe Observer) *store.Store {
	// Operands of the target are evaluated first.
	switch v := target.(type) {
	case *mir.Field:
		s = t.eval(s, v.Recv, observe)
	case *mir.Index:
		s = t.eval(t.eval(s, v.X, observe), v.Index, observe)
	case *mir.Deref:
		s = t.eval(s, v.X, observe)
	}
	s = t.eval(s, value, observe)
	if s == nil {
		return nil
	}
	q := t.Value(s, value)

	switch v := target.(type) {
	case *mir.Var:
		p, _ := t.Path(v)
		return s.KillDependents(v.Name).Set(p, q)

	case *mir.Field:
		s = s.KillField(v.Owner, v.Name)
		if p, ok := t.Path(v); ok {
			s = s.Set(p, q)
		}
		return s

	case *mir.Index:
		return s.KillCalls()

	default:
		// Writes through pointers may alias anything.
		return s.KillHeap()
	}
}

// Eval applies effects of evaluating e.
func (t *Transfer) Eval(s *store.Store, e mir.Expr) *store.Store {
	return t.eval(s, e, nil)
}

// EvalObserved is Eval reporting right operands of short-circuit operators to observe.
func (t *Transfer) EvalObserved(s *store.Store, e mir.Expr, observe Observer) *store.Store {
	return t.eval(s, e, observe)
}

func (t *Transfer) eval(s *store.Store, e mir.Expr, observe Observer) *store.Store {
	if s == nil || e == nil {
		return s
	}

	switch v := e.(type) {
	case *mir.Call:
		s = t.eval(s, v.Recv, observe)
		s = t.evalList(s, v.Args, observe)
		if !t.Pure(v) {
			s = s.KillHeap()
		}
		for _, eff := range t.effects[v.Func] {
			s = t.applyEffect(s, v, eff.Arg, eff.Qual)
		}
		return s

	case *mir.New:
		s = t.evalList(s, v.Args, observe)
		if v.Init {
			s = s.KillHeap()
		}
		return s

	case *mir.Binary:
		switch v.Op {
		case mir.OpAnd:
			// The right operand is evaluated only when the left one holds.
			yes, no := t.Cond(s, v.X, observe)
			if observe != nil {
				observe(v.Y, yes)
			}
			return store.Join(no, t.eval(yes, v.Y, observe))
		case mir.OpOr:
			yes, no := t.Cond(s, v.X, observe)
			if observe != nil {
				observe(v.Y, no)
			}
			return store.Join(yes, t.eval(no, v.Y, observe))
		}
		return t.eval(t.eval(s, v.X, observe), v.Y, observe)

	case *mir.Field:
		return t.eval(s, v.Recv, observe)
	case *mir.Not:
		return t.eval(s, v.X, observe)
	case *mir.InstanceOf:
		return t.eval(s, v.X, observe)
	case *mir.Cast:
		return t.eval(s, v.X, observe)
	case *mir.Index:
		return t.eval(t.eval(s, v.X, observe), v.Index, observe)
	case *mir.Deref:
		return t.eval(s, v.X, observe)
	default:
		return s
	}
}

func (t *Transfer) evalList(s *store.Store, list []mir.Expr, observe Observer) *store.Store {
	for _, e := range list {
		s = t.eval(s, e, observe)
	}

	return s
}

func (t *Transfer) applyEffect(s *store.Store, call *mir.Call, arg int, q lattice.Qualifier) *store.Store {
	var e mir.Expr
	switch {
	case arg < 0:
		e = call.Recv
	case arg < len(call.Args):
		e = call.Args[arg]
	}
	if e == nil {
		return s
	}

	p, ok := t.Path(e)
	if !ok {
		return s
	}

	return s.Refine(p, q)
}

// Value returns the qualifier of e in s. s must be reachable.
func (t *Transfer) Value(s *store.Store, e mir.Expr) lattice.Qualifier {
	if p, ok := t.Path(e); ok {
		return s.Value(p)
	}

	switch v := e.(type) {
	case *mir.Literal:
		if v.Kind == mir.LitNull {
			return t.rules.Value(ValueNull)
		}
		return t.rules.Value(ValueLiteral)
	case *mir.New:
		return t.rules.Value(ValueAllocation)
	case *mir.Cast:
		return t.Value(s, v.X)
	case *mir.Call:
		return t.returns(v)
	case *mir.Result:
		if v.Index == 0 && v.Call != nil {
			return t.returns(v.Call)
		}
		return t.rules.Value(ValueCall)
	case *mir.Field:
		frame := s.Frame()
		return frame.Declared.FieldOf(frame.Lattice, v.Owner, v.Name)
	case *mir.Index:
		return t.rules.Value(ValueElement)
	case *mir.Binary, *mir.Not, *mir.InstanceOf:
		return t.rules.Value(ValueComputed)
	default:
		return t.rules.Value(ValueUnknown)
	}
}

func (t *Transfer) returns(call *mir.Call) lattice.Qualifier {
	if q := t.rules.Returns[call.Func]; q.Valid() {
		return q
	}

	return t.rules.Value(ValueCall)
}
