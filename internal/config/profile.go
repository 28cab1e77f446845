package config

import (
	"github.com/pkg/errors"

	"github.com/sirkon/qualflow/internal/lattice"
	"github.com/sirkon/qualflow/internal/mir"
	"github.com/sirkon/qualflow/internal/store"
	"github.com/sirkon/qualflow/internal/transfer"
)

// Profile is a resolved configuration.
type Profile struct {
	Lattice *lattice.Finite
	Rules   *transfer.Rules

	// Declared holds defaults of declared qualifiers.
	Declared store.Declared

	Nullable lattice.Qualifier
	NonNull  lattice.Qualifier
}

var literalKinds = map[string]mir.LitKind{
	"null":   mir.LitNull,
	"bool":   mir.LitBool,
	"number": mir.LitNumber,
	"string": mir.LitString,
	"other":  mir.LitOther,
}

// Resolve builds the lattice and resolves qualifier names. Predefined known functions are
// merged with ones of the config, config entries win.
func (c *Config) Resolve() (*Profile, error) {
	decls := make([]lattice.Decl, len(c.Qualifiers))
	for i, q := range c.Qualifiers {
		decls[i] = lattice.Decl{Name: q.Name, SubtypeOf: q.SubtypeOf}
	}
	l, err := lattice.Build(decls)
	if err != nil {
		return nil, errors.Wrap(err, "build qualifier lattice")
	}

	r := resolver{l: l}
	p := &Profile{
		Lattice: l,
		Declared: store.Declared{
			Local:    r.qualifier("defaults.local", c.Defaults.Local),
			Param:    r.qualifier("defaults.param", c.Defaults.Param),
			Receiver: r.qualifier("defaults.receiver", c.Defaults.Receiver),
			Field:    r.qualifier("defaults.field", c.Defaults.Field),
			Call:     r.qualifier("defaults.call", c.Defaults.Call),
		},
		Nullable: r.qualifierOr("nullable", c.Nullable, l.Top()),
		NonNull:  r.qualifierOr("nonnull", c.NonNull, l.Bottom()),
	}

	rules := &transfer.Rules{
		Lattice: l,
		Values: map[transfer.ValueKind]lattice.Qualifier{
			transfer.ValueNull:       r.qualifier("values.null", c.Values.Null),
			transfer.ValueLiteral:    r.qualifier("values.literal", c.Values.Literal),
			transfer.ValueAllocation: r.qualifier("values.allocation", c.Values.Allocation),
			transfer.ValueComputed:   r.qualifier("values.computed", c.Values.Computed),
			transfer.ValueCall:       r.qualifier("values.call", c.Values.Call),
			transfer.ValueElement:    r.qualifier("values.element", c.Values.Element),
			transfer.ValueUnknown:    r.qualifier("values.unknown", c.Values.Unknown),
		},
		Returns: map[mir.Reference]lattice.Qualifier{},
	}

	for i, cond := range c.Conditions {
		rules.Conditions = append(rules.Conditions, r.condition(i, cond))
	}

	custom := map[mir.Reference]FuncKind{}
	for _, ref := range c.Terminators {
		custom[ref] = FuncKindTerminator
	}
	for _, ref := range c.Pure {
		custom[ref] = FuncKindPure
	}
	known := newKnownFuncs(custom)
	rules.Terminators = known.of(FuncKindTerminator)
	rules.Oracle = transfer.PureFuncs(known.of(FuncKindPure))
	for ref := range known.of(FuncKindNonNil) {
		rules.Returns[ref] = p.NonNull
	}

	for i, ret := range c.Returns {
		if ret.Func.IsZero() {
			r.fail(errors.Errorf("returns[%d]: no function", i))
			continue
		}
		rules.Returns[ret.Func] = r.qualifier(ret.Func.String(), ret.Qualifier)
	}
	for i, eff := range c.Effects {
		if eff.Func.IsZero() || eff.Arg < -1 {
			r.fail(errors.Errorf("effects[%d]: function and argument index >= -1 are required", i))
			continue
		}
		rules.Effects = append(rules.Effects, transfer.Effect{
			Func: eff.Func,
			Arg:  eff.Arg,
			Qual: r.qualifier(eff.Func.String(), eff.Qualifier),
		})
	}

	if r.err != nil {
		return nil, r.err
	}

	p.Rules = rules
	return p, nil
}

// resolver keeps the first error to report.
type resolver struct {
	l   *lattice.Finite
	err error
}

func (r *resolver) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// qualifier resolves a name, an empty one means "not set".
func (r *resolver) qualifier(what, name string) lattice.Qualifier {
	if name == "" {
		return lattice.Invalid
	}

	q, ok := r.l.Lookup(name)
	if !ok {
		r.fail(errors.Errorf("%s: unknown qualifier %q", what, name))
		return lattice.Invalid
	}

	return q
}

func (r *resolver) qualifierOr(what, name string, fallback lattice.Qualifier) lattice.Qualifier {
	if q := r.qualifier(what, name); q.Valid() {
		return q
	}

	return fallback
}

func (r *resolver) condition(i int, c Condition) transfer.Condition {
	res := transfer.Condition{
		Kind:       c.Kind,
		Value:      c.Value,
		Type:       c.Type,
		Func:       c.Func,
		Arg:        c.Arg,
		OnMatch:    r.qualifier(c.Kind.String(), c.OnMatch),
		OnMismatch: r.qualifier(c.Kind.String(), c.OnMismatch),
	}

	switch c.Kind {
	case transfer.ConditionSentinel:
		kind, ok := literalKinds[c.Literal]
		if !ok {
			r.fail(errors.Errorf("conditions[%d]: unknown literal kind %q", i, c.Literal))
		}
		res.Literal = kind
	case transfer.ConditionPredicate:
		if c.Func.IsZero() {
			r.fail(errors.Errorf("conditions[%d]: predicate needs a function", i))
		}
	case transfer.ConditionTypeTest, transfer.ConditionIdentity:
	default:
		r.fail(errors.Errorf("conditions[%d]: no kind", i))
	}

	return res
}
