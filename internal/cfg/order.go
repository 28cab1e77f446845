package cfg

import "slices"

// ReversePostOrder returns blocks reachable from the entry in reverse post-order.
// Every block precedes its successors except along back edges.
func (g *CFG) ReversePostOrder() []*Block {
	visited := make([]bool, len(g.Blocks))
	post := make([]*Block, 0, len(g.Blocks))

	type item struct {
		blk  *Block
		next int
	}
	stack := []item{{blk: g.Entry}}
	visited[g.Entry.ID] = true
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.blk.Succs) {
			to := top.blk.Succs[top.next].To
			top.next++
			if !visited[to.ID] {
				visited[to.ID] = true
				stack = append(stack, item{blk: to})
			}
			continue
		}

		post = append(post, top.blk)
		stack = stack[:len(stack)-1]
	}

	slices.Reverse(post)

	return post
}
