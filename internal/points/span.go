package points

import (
	"go/token"

	"github.com/pkg/errors"
	"github.com/sirkon/rbtree"

	"github.com/sirkon/qualflow/internal/mir"
)

// nodeSpan stores a [start,end] span of a node and a nested tree for
// spans fully contained in it.
type nodeSpan struct {
	start token.Pos
	end   token.Pos

	node     mir.Node
	children *rbtree.Tree[*nodeSpan]
}

// Cmp orders disjoint spans and reports 0 for overlapping ones, containment included.
func (n *nodeSpan) Cmp(other *nodeSpan) int {
	if n.end < other.start {
		return -1
	}
	if n.start > other.end {
		return 1
	}
	return 0
}

func contains(a, b *nodeSpan) bool {
	return a.start <= b.start && a.end >= b.end
}

// attachInto inserts s into t:
//   - s is disjoint with everything in t: it becomes a new entry of t.
//   - an overlapping entry r contains s: s goes into the children of r.
//   - s contains r: r is turned into s in place and the old r is reattached below it.
//     There's no removal in the tree, so s must not contain other entries of t.
func attachInto(t *rbtree.Tree[*nodeSpan], s *nodeSpan) error {
	r := t.InsertReturn(s)
	if r == s {
		return nil
	}

	switch {
	case contains(r, s):
		if r.children == nil {
			r.children = rbtree.New[*nodeSpan]()
		}
		return attachInto(r.children, s)

	case contains(s, r):
		old := *r
		*r = *s
		if r.children == nil {
			r.children = rbtree.New[*nodeSpan]()
		}
		return attachInto(r.children, &old)

	default:
		return errors.Wrapf(ErrPartialOverlap, "[%d, %d] and [%d, %d]", s.start, s.end, r.start, r.end)
	}
}

func descendSearch(n *nodeSpan, pos token.Pos) mir.Node {
	if n.children == nil {
		return n.node
	}

	child := n.children.Search(&nodeSpan{start: pos, end: pos})
	if child == nil {
		return n.node
	}

	return descendSearch(child, pos)
}
