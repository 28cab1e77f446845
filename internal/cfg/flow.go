package cfg

import (
	"slices"

	"github.com/sirkon/qualflow/internal/mir"
)

type frameKind int

const (
	_ frameKind = iota
	frameLoop
	frameSwitch
	frameLabel
	frameTry
)

// frame is an enclosing statement jumps and exceptions may target.
type frame struct {
	kind  frameKind
	label string

	// brk and cont are targets of break and continue.
	brk  *Block
	cont *Block

	// --- Try frames ---------------------------------------------------------

	try *mir.Try

	// catches is empty once the protected region is built.
	catches []catchEntry

	// abrupt is an entry of the finally copy for exceptions, nil without finally.
	abrupt *Block
}

type catchEntry struct {
	entry *Block
	types []string
}

func (b *builder) push(f *frame) {
	b.frames = append(b.frames, f)
}

func (b *builder) pop() {
	b.frames = b.frames[:len(b.frames)-1]
}

func (b *builder) newBlock() *Block {
	blk := &Block{ID: len(b.g.Blocks)}
	b.g.Blocks = append(b.g.Blocks, blk)
	return blk
}

// ensure starts a fresh unreachable block when the current point is unreachable.
func (b *builder) ensure() {
	if b.cur == nil {
		b.cur = b.newBlock()
	}
}

func (b *builder) emit(n *Node) {
	b.ensure()
	n.ID = len(b.g.Nodes)
	b.g.Nodes = append(b.g.Nodes, n)
	b.cur.Nodes = append(b.cur.Nodes, n)

	var typ string
	if n.Kind == NodeThrow {
		typ = n.Stmt.(*mir.Throw).Type
	}
	b.raise(len(b.cur.Nodes)-1, typ, mayThrow(n))
}

// branch emits a condition ending the current block and returns blocks for its outcomes.
func (b *builder) branch(cond mir.Expr, source mir.Node) (yes, no *Block) {
	yes, no = b.newBlock(), b.newBlock()
	b.branchTo(cond, source, yes, no)
	return yes, no
}

func (b *builder) branchTo(cond mir.Expr, source mir.Node, yes, no *Block) {
	b.emit(&Node{Kind: NodeCond, Expr: cond, Source: source})
	b.link(b.cur, yes, EdgeTrue)
	b.link(b.cur, no, EdgeFalse)
	b.cur = nil
}

// fallTo links the current block with to if it is reachable and leaves the current point unreachable.
func (b *builder) fallTo(to *Block, kind EdgeKind) {
	if b.cur != nil {
		b.link(b.cur, to, kind)
	}
	b.cur = nil
}

func (b *builder) link(from, to *Block, kind EdgeKind) {
	e := &Edge{
		Kind: kind,
		From: from,
		To:   to,
	}
	from.Succs = append(from.Succs, e)
	to.Preds = append(to.Preds, e)
}

func (b *builder) linkAt(from, to *Block, at int, typ string) {
	e := &Edge{
		Kind: EdgeException,
		From: from,
		To:   to,
		At:   at,
		Type: typ,
	}
	from.Succs = append(from.Succs, e)
	to.Preds = append(to.Preds, e)
}

// raise routes an exception raised at node at of the current block to the handlers.
// Every node of a protected region reaches the finally block, only nodes that
// may throw reach catch blocks and the exceptional exit.
func (b *builder) raise(at int, typ string, canThrow bool) {
	for i := len(b.frames) - 1; i >= 0; i-- {
		f := b.frames[i]
		if f.kind != frameTry {
			continue
		}

		if canThrow {
			for _, c := range f.catches {
				b.linkAt(b.cur, c.entry, at, typ)
				if len(c.types) == 0 || (typ != "" && slices.Contains(c.types, typ)) {
					return
				}
			}
		}

		if f.abrupt != nil {
			b.linkAt(b.cur, f.abrupt, at, typ)
			return
		}
	}

	if canThrow {
		b.linkAt(b.cur, b.g.Raise, at, typ)
	}
}

// jump transfers control to target leaving all frames above depth. Finally blocks
// of the try frames being left are copied on the way.
func (b *builder) jump(target *Block, depth int, kind EdgeKind) error {
	for i := len(b.frames) - 1; i > depth; i-- {
		f := b.frames[i]
		if f.kind != frameTry || f.try.Finally == nil {
			continue
		}

		saved := b.frames
		b.frames = slices.Clip(b.frames[:i])
		err := b.stmt(f.try.Finally)
		b.frames = saved
		if err != nil {
			return err
		}

		if b.cur == nil {
			// The finally block completed abruptly itself.
			return nil
		}
	}

	b.fallTo(target, kind)
	return nil
}

func (b *builder) breakStmt(v *mir.Break) error {
	for i := len(b.frames) - 1; i >= 0; i-- {
		f := b.frames[i]
		if f.kind == frameTry {
			continue
		}

		if v.Label == "" {
			if f.kind == frameLoop || f.kind == frameSwitch {
				return b.jump(f.brk, i, EdgeNormal)
			}
			continue
		}

		if f.label == v.Label {
			return b.jump(f.brk, i, EdgeNormal)
		}
	}

	if v.Label != "" {
		return malformed(v, "break to unknown label %s", v.Label)
	}
	return malformed(v, "break outside of a loop or switch")
}

func (b *builder) continueStmt(v *mir.Continue) error {
	for i := len(b.frames) - 1; i >= 0; i-- {
		f := b.frames[i]
		if f.kind == frameTry {
			continue
		}

		if v.Label == "" {
			if f.kind == frameLoop {
				return b.jump(f.cont, i, EdgeBack)
			}
			continue
		}

		if f.label == v.Label {
			if f.kind != frameLoop {
				return malformed(v, "continue to label %s of a statement that is not a loop", v.Label)
			}
			return b.jump(f.cont, i, EdgeBack)
		}
	}

	if v.Label != "" {
		return malformed(v, "continue to unknown label %s", v.Label)
	}
	return malformed(v, "continue outside of a loop")
}

func mayThrow(n *Node) bool {
	if n.Kind == NodeThrow {
		return true
	}

	var root mir.Node
	switch {
	case n.Expr != nil:
		root = n.Expr
	case n.Stmt != nil:
		root = n.Stmt
	default:
		return false
	}

	var throws bool
	mir.Walk(root, func(x mir.Node) bool {
		switch v := x.(type) {
		case *mir.Call, *mir.Index, *mir.Deref, *mir.Cast:
			throws = true
		case *mir.New:
			throws = throws || v.Init
		case *mir.Field:
			throws = throws || v.Deref
		}
		return !throws
	})

	return throws
}
