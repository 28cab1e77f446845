package solver

import (
	"container/heap"

	"github.com/sirkon/qualflow/internal/cfg"
)

// worklist pops blocks in reverse post-order. A block is queued at most once.
type worklist struct {
	prio   []int
	queued []bool
	items  []*cfg.Block
}

func newWorklist(g *cfg.CFG, order []*cfg.Block) *worklist {
	w := &worklist{
		prio:   make([]int, len(g.Blocks)),
		queued: make([]bool, len(g.Blocks)),
	}
	for i := range w.prio {
		w.prio[i] = len(order)
	}
	for i, b := range order {
		w.prio[b.ID] = i
	}

	return w
}

func (w *worklist) add(b *cfg.Block) {
	if w.queued[b.ID] {
		return
	}
	w.queued[b.ID] = true
	heap.Push(w, b)
}

func (w *worklist) next() *cfg.Block {
	b := heap.Pop(w).(*cfg.Block)
	w.queued[b.ID] = false
	return b
}

func (w *worklist) Len() int {
	return len(w.items)
}

func (w *worklist) Less(i, j int) bool {
	return w.prio[w.items[i].ID] < w.prio[w.items[j].ID]
}

func (w *worklist) Swap(i, j int) {
	w.items[i], w.items[j] = w.items[j], w.items[i]
}

func (w *worklist) Push(x any) {
	w.items = append(w.items, x.(*cfg.Block))
}

func (w *worklist) Pop() any {
	n := len(w.items) - 1
	b := w.items[n]
	w.items = w.items[:n]
	return b
}
