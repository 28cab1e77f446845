package cfg

import (
	"fmt"
	"strings"

	"github.com/sirkon/qualflow/internal/mir"
)

// NodeKind is a kind of graph node.
type NodeKind int

const (
	_ NodeKind = iota

	// NodeStmt is a declaration, an assignment or an expression statement.
	NodeStmt

	// NodeCond is a branch condition. It is always the last node of its block.
	NodeCond

	// NodeReturn evaluates a returned value.
	NodeReturn

	// NodeThrow evaluates a thrown value.
	NodeThrow

	// NodeEval evaluates an expression for its effects.
	NodeEval
)

func (k NodeKind) String() string {
	switch k {
	case NodeStmt:
		return "stmt"
	case NodeCond:
		return "cond"
	case NodeReturn:
		return "return"
	case NodeThrow:
		return "throw"
	case NodeEval:
		return "eval"
	default:
		return fmt.Sprintf("node-kind-invalid(%d)", k)
	}
}

// EdgeKind is a kind of graph edge.
type EdgeKind int

const (
	_ EdgeKind = iota
	EdgeNormal
	EdgeTrue
	EdgeFalse
	EdgeException
	EdgeBack
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeNormal:
		return "normal"
	case EdgeTrue:
		return "true"
	case EdgeFalse:
		return "false"
	case EdgeException:
		return "exception"
	case EdgeBack:
		return "back"
	default:
		return fmt.Sprintf("edge-kind-invalid(%d)", k)
	}
}

// Node is a program point of a graph.
type Node struct {
	ID   int
	Kind NodeKind

	// Stmt is set for NodeStmt, NodeReturn and NodeThrow.
	Stmt mir.Stmt

	// Expr is set for NodeCond and NodeEval.
	Expr mir.Expr

	// Source is the IR node the program point stands for. Copies of finally
	// blocks share their sources. Nil for synthetic nodes.
	Source mir.Node
}

// Block is a basic block.
type Block struct {
	ID    int
	Nodes []*Node
	Succs []*Edge
	Preds []*Edge
}

// Cond returns the condition node ending the block, if any.
func (b *Block) Cond() *Node {
	if len(b.Nodes) == 0 {
		return nil
	}
	if n := b.Nodes[len(b.Nodes)-1]; n.Kind == NodeCond {
		return n
	}

	return nil
}

// Edge is a typed transfer of control.
type Edge struct {
	Kind EdgeKind
	From *Block
	To   *Block

	// At is set for exceptional edges: the index of the raising node in From.
	// The edge carries the state right before that node. An index equal to the
	// number of nodes means the end of the block.
	At int

	// Type is the exception type when known.
	Type string
}

// CFG is a control flow graph of one method.
type CFG struct {
	Method *mir.Method
	Blocks []*Block
	Nodes  []*Node

	// Entry is empty and has no predecessors.
	Entry *Block

	// Exit joins normal completions: returns and falling off the end.
	Exit *Block

	// Raise joins uncaught exceptions.
	Raise *Block
}

func (g *CFG) String() string {
	var buf strings.Builder
	for _, b := range g.Blocks {
		fmt.Fprintf(&buf, "b%d", b.ID)
		switch b {
		case g.Entry:
			buf.WriteString(" entry")
		case g.Exit:
			buf.WriteString(" exit")
		case g.Raise:
			buf.WriteString(" raise")
		}
		buf.WriteString(":\n")
		for _, n := range b.Nodes {
			fmt.Fprintf(&buf, "\t%s #%d\n", n.Kind, n.ID)
		}
		for _, e := range b.Succs {
			fmt.Fprintf(&buf, "\t-> b%d %s", e.To.ID, e.Kind)
			if e.Kind == EdgeException {
				fmt.Fprintf(&buf, " at %d", e.At)
				if e.Type != "" {
					fmt.Fprintf(&buf, " %s", e.Type)
				}
			}
			buf.WriteByte('\n')
		}
	}

	return buf.String()
}
