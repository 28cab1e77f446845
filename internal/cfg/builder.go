package cfg

import (
	"github.com/sirkon/qualflow/internal/mir"
)

// Terminators tells calls that never return.
type Terminators interface {
	Terminates(call *mir.Call) bool
}

// Build lowers a method body into a graph. term may be nil.
func Build(m *mir.Method, term Terminators) (*CFG, error) {
	b := &builder{
		g:    &CFG{Method: m},
		term: term,
	}
	b.g.Entry = b.newBlock()
	b.g.Exit = b.newBlock()
	b.g.Raise = b.newBlock()

	b.cur = b.newBlock()
	b.link(b.g.Entry, b.cur, EdgeNormal)
	if m.Body != nil {
		if err := b.stmt(m.Body); err != nil {
			return nil, err
		}
	}
	b.fallTo(b.g.Exit, EdgeNormal)

	return b.g, nil
}

type builder struct {
	g    *CFG
	term Terminators

	// cur is nil when the current program point is unreachable.
	cur    *Block
	frames []*frame
}

func (b *builder) stmt(s mir.Stmt) error {
	switch v := s.(type) {
	case nil:
		return nil

	case *mir.Block:
		for _, st := range v.Stmts {
			if err := b.stmt(st); err != nil {
				return err
			}
		}

	case *mir.Empty:

	case *mir.Decl, *mir.Assign:
		b.emit(&Node{Kind: NodeStmt, Stmt: s, Source: s})

	case *mir.ExprStmt:
		b.emit(&Node{Kind: NodeStmt, Stmt: s, Source: s})
		if call, ok := v.X.(*mir.Call); ok && b.term != nil && b.term.Terminates(call) {
			b.cur = nil
		}

	case *mir.If:
		return b.ifStmt(v)
	case *mir.While:
		return b.while(v, "")
	case *mir.DoWhile:
		return b.doWhile(v, "")
	case *mir.For:
		return b.forStmt(v, "")
	case *mir.Switch:
		return b.switchStmt(v, "")
	case *mir.Labeled:
		return b.labeled(v)
	case *mir.Break:
		return b.breakStmt(v)
	case *mir.Continue:
		return b.continueStmt(v)
	case *mir.Try:
		return b.try(v)

	case *mir.Return:
		b.emit(&Node{Kind: NodeReturn, Stmt: s, Source: s})
		return b.jump(b.g.Exit, -1, EdgeNormal)

	case *mir.Throw:
		b.emit(&Node{Kind: NodeThrow, Stmt: s, Source: s})
		b.cur = nil

	case *mir.Assert:
		// Assertions are assumed to hold: the failing branch leads nowhere.
		yes, _ := b.branch(v.Cond, v.Cond)
		b.cur = yes

	case *mir.Goto:
		return unsupported(v, "goto %s", v.Label)

	default:
		return unsupported(s, "statement %T", s)
	}

	return nil
}

func (b *builder) ifStmt(v *mir.If) error {
	yes, no := b.branch(v.Cond, v.Cond)
	after := b.newBlock()

	b.cur = yes
	if err := b.stmt(v.Then); err != nil {
		return err
	}
	b.fallTo(after, EdgeNormal)

	b.cur = no
	if err := b.stmt(v.Else); err != nil {
		return err
	}
	b.fallTo(after, EdgeNormal)

	b.cur = after
	return nil
}

func (b *builder) while(v *mir.While, label string) error {
	header := b.newBlock()
	b.fallTo(header, EdgeNormal)
	b.cur = header

	body, exit := b.branch(v.Cond, v.Cond)
	b.cur = body
	if err := b.loopBody(v.Body, label, header, exit); err != nil {
		return err
	}
	b.fallTo(header, EdgeBack)

	b.cur = exit
	return nil
}

func (b *builder) doWhile(v *mir.DoWhile, label string) error {
	body := b.newBlock()
	cond := b.newBlock()
	exit := b.newBlock()

	b.fallTo(body, EdgeNormal)
	b.cur = body
	if err := b.loopBody(v.Body, label, cond, exit); err != nil {
		return err
	}
	b.fallTo(cond, EdgeNormal)

	b.cur = cond
	b.branchTo(v.Cond, v.Cond, body, exit)

	b.cur = exit
	return nil
}

func (b *builder) forStmt(v *mir.For, label string) error {
	for _, s := range v.Init {
		if err := b.stmt(s); err != nil {
			return err
		}
	}

	header := b.newBlock()
	b.fallTo(header, EdgeNormal)
	b.cur = header

	var body, exit *Block
	if v.Cond != nil {
		body, exit = b.branch(v.Cond, v.Cond)
	} else {
		// Only breaks leave the loop.
		body, exit = b.newBlock(), b.newBlock()
		b.fallTo(body, EdgeNormal)
	}

	update := b.newBlock()
	b.cur = body
	if err := b.loopBody(v.Body, label, update, exit); err != nil {
		return err
	}
	b.fallTo(update, EdgeNormal)

	b.cur = update
	for _, s := range v.Update {
		if err := b.stmt(s); err != nil {
			return err
		}
	}
	b.fallTo(header, EdgeBack)

	b.cur = exit
	return nil
}

func (b *builder) loopBody(body mir.Stmt, label string, cont, brk *Block) error {
	b.push(&frame{
		kind:  frameLoop,
		label: label,
		cont:  cont,
		brk:   brk,
	})
	defer b.pop()

	return b.stmt(body)
}

func (b *builder) switchStmt(v *mir.Switch, label string) error {
	var tag mir.Expr
	if v.Tag != nil {
		b.emit(&Node{Kind: NodeEval, Expr: v.Tag, Source: v})

		// Case tests compare against the evaluated tag, refer to it when it is not a
		// stable expression.
		tag = v.Tag
		if _, ok := mir.PathOf(v.Tag, nil); !ok {
			tag = &mir.Unknown{Loc: v.Tag.Location(), What: "switch tag"}
		}
	}

	exit := b.newBlock()
	bodies := make([]*Block, len(v.Cases))
	var dflt *Block
	for i, c := range v.Cases {
		bodies[i] = b.newBlock()
		if len(c.Values) == 0 {
			if dflt != nil {
				return malformed(c, "multiple defaults in switch")
			}
			dflt = bodies[i]
			continue
		}

		next := b.newBlock()
		b.branchTo(caseCond(tag, c), c, bodies[i], next)
		b.cur = next
	}
	if dflt != nil {
		b.fallTo(dflt, EdgeNormal)
	} else {
		b.fallTo(exit, EdgeNormal)
	}

	b.push(&frame{
		kind:  frameSwitch,
		label: label,
		brk:   exit,
	})
	defer b.pop()

	for i, c := range v.Cases {
		// Previous body falls through.
		b.fallTo(bodies[i], EdgeNormal)
		b.cur = bodies[i]
		for _, s := range c.Body {
			if err := b.stmt(s); err != nil {
				return err
			}
		}
	}
	b.fallTo(exit, EdgeNormal)

	b.cur = exit
	return nil
}

func caseCond(tag mir.Expr, c *mir.Case) mir.Expr {
	var cond mir.Expr
	for _, val := range c.Values {
		test := val
		if tag != nil {
			test = &mir.Binary{
				Loc: val.Location(),
				Op:  mir.OpEq,
				X:   tag,
				Y:   val,
			}
		}

		if cond == nil {
			cond = test
			continue
		}
		cond = &mir.Binary{
			Loc: c.Loc,
			Op:  mir.OpOr,
			X:   cond,
			Y:   test,
		}
	}

	return cond
}

func (b *builder) labeled(v *mir.Labeled) error {
	for _, f := range b.frames {
		if f.label == v.Label {
			return malformed(v, "duplicate label %s", v.Label)
		}
	}

	switch s := v.Stmt.(type) {
	case *mir.While:
		return b.while(s, v.Label)
	case *mir.DoWhile:
		return b.doWhile(s, v.Label)
	case *mir.For:
		return b.forStmt(s, v.Label)
	case *mir.Switch:
		return b.switchStmt(s, v.Label)
	}

	after := b.newBlock()
	b.push(&frame{
		kind:  frameLabel,
		label: v.Label,
		brk:   after,
	})
	err := b.stmt(v.Stmt)
	b.pop()
	if err != nil {
		return err
	}

	b.fallTo(after, EdgeNormal)
	b.cur = after
	return nil
}

func (b *builder) try(v *mir.Try) error {
	f := &frame{
		kind: frameTry,
		try:  v,
	}
	for _, c := range v.Catches {
		f.catches = append(f.catches, catchEntry{
			entry: b.newBlock(),
			types: c.Types,
		})
	}

	after := b.newBlock()
	normal := after
	if v.Finally != nil {
		f.abrupt = b.newBlock()
		normal = b.newBlock()

		// The finally block may be entered before anything in the protected region ran.
		b.ensure()
		b.linkAt(b.cur, f.abrupt, len(b.cur.Nodes), "")
	}

	b.push(f)
	if err := b.stmt(v.Body); err != nil {
		return err
	}
	b.fallTo(normal, EdgeNormal)

	// Exceptions raised by handlers reach the finally block only.
	catches := f.catches
	f.catches = nil
	for i, c := range v.Catches {
		b.cur = catches[i].entry
		if c.Param != "" {
			b.emit(&Node{Kind: NodeStmt, Stmt: catchBinding(c), Source: c})
		}
		if err := b.stmt(c.Body); err != nil {
			return err
		}
		b.fallTo(normal, EdgeNormal)
	}
	b.pop()

	if v.Finally == nil {
		b.cur = after
		return nil
	}

	b.cur = f.abrupt
	if err := b.stmt(v.Finally); err != nil {
		return err
	}
	if b.cur != nil {
		// Rethrow.
		b.raise(len(b.cur.Nodes), "", true)
		b.cur = nil
	}

	b.cur = normal
	if err := b.stmt(v.Finally); err != nil {
		return err
	}
	b.fallTo(after, EdgeNormal)

	b.cur = after
	return nil
}

func catchBinding(c *mir.Catch) *mir.Decl {
	var typ string
	if len(c.Types) > 0 {
		typ = c.Types[0]
	}

	return &mir.Decl{
		Loc:  c.Loc,
		Name: c.Param,
		Type: typ,
		Init: &mir.New{Loc: c.Loc, Type: typ},
	}
}
