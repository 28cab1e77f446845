package points

import (
	"fmt"
	"go/token"

	"github.com/pkg/errors"
	"github.com/sirkon/rbtree"

	"github.com/sirkon/qualflow/internal/mir"
)

// When tells whether a point precedes or follows its node.
type When int

const (
	_ When = iota
	Before
	After
)

func (w When) String() string {
	switch w {
	case Before:
		return "before"
	case After:
		return "after"
	default:
		return fmt.Sprintf("when-invalid(%d)", w)
	}
}

// Point is a program point: right before or right after a node.
type Point struct {
	Node mir.Node
	When When
}

// ErrPartialOverlap is returned for spans overlapping without containment.
var ErrPartialOverlap = errors.New("spans overlap partially")

// Index looks up innermost nodes covering source positions.
type Index struct {
	tree *rbtree.Tree[*nodeSpan]
	size int
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		tree: rbtree.New[*nodeSpan](),
	}
}

// Len returns the number of indexed nodes.
func (x *Index) Len() int {
	return x.size
}

// Add registers a node by its span. Nodes without valid spans are ignored.
// Spans are expected to come outermost first, a span covering several already
// added disjoint spans is not supported. Among nodes with equal spans the one
// added last is the innermost.
func (x *Index) Add(node mir.Node) error {
	loc := node.Location()
	if !loc.Valid() {
		return nil
	}

	span := &nodeSpan{
		start: loc.Start,
		end:   loc.End,
		node:  node,
	}
	if err := attachInto(x.tree, span); err != nil {
		return errors.Wrapf(err, "add %T at [%d, %d]", node, loc.Start, loc.End)
	}
	x.size++

	return nil
}

// Lookup returns the innermost node covering pos, nil if there is none.
func (x *Index) Lookup(pos token.Pos) mir.Node {
	res := x.tree.Search(&nodeSpan{start: pos, end: pos})
	if res == nil {
		return nil
	}

	return descendSearch(res, pos)
}
