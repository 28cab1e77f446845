package nullflow

import "log"

type Node struct {
	Val  int
	Next *Node //qualflow:nullable
}

type List struct {
	//qualflow:nonnull
	Head *Node
}

// Find returns a node holding v.
//
//qualflow:nullable result
func Find(n *Node, v int) *Node { // want Find:"nullableResult"
	for n != nil {
		if n.Val == v {
			return n
		}
		n = n.Next
	}
	return nil
}

func deref(n *Node) int {
	m := Find(n, 1)
	return m.Val // want "QF010: possible nil dereference of m"
}

func guarded(n *Node) int {
	m := Find(n, 1)
	if m == nil {
		return 0
	}
	return m.Val
}

func next(n *Node) int {
	return n.Next.Val // want "QF010: possible nil dereference of n.Next"
}

func loop(n *Node) int {
	sum := 0
	for p := n; p != nil; p = p.Next {
		sum += p.Val
	}
	return sum
}

func zero() int {
	var n *Node
	return n.Val // want "QF010: possible nil dereference of n"
}

func panics(n *Node) int {
	m := Find(n, 2)
	if m == nil {
		panic("not found")
	}
	return m.Val
}

func fatal(n *Node) int {
	m := Find(n, 3)
	if m == nil {
		log.Fatal("not found")
	}
	return m.Val
}

func shortCircuit(n *Node) bool {
	m := Find(n, 4)
	return m != nil && m.Val > 0
}

func either(n *Node, flag bool) int {
	m := Find(n, 5)
	if flag {
		m = n
	}
	return m.Val // want "QF010: possible nil dereference of m"
}

//qualflow:nullable n
func param(n *Node) int {
	return n.Val // want "QF010: possible nil dereference of n"
}

func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	return 1 + n.Next.Len()
}

func (n Node) Value() int {
	return n.Val
}

func value(n *Node) int {
	return n.Next.Value() // want "QF010: possible nil dereference of n.Next"
}

func (l *List) Reset(n *Node) {
	l.Head = Find(n, 0) // want "QF020: possible nil stored into non-nil field Head"
}

func (l *List) Set(n *Node) {
	if m := Find(n, 0); m != nil {
		l.Head = m
	}
}

func jump(n int) int {
	if n > 0 {
		goto done // want "QF001: cannot analyze jump: unsupported control flow"
	}
	n = 1
done:
	return n
}

func captured(n *Node) int {
	m := n
	reset := func() { m = nil }
	reset()
	return m.Val // want "QF010: possible nil dereference of m"
}

func pointer(n *Node) int {
	m := n
	p := &m
	*p = nil
	return m.Val // want "QF010: possible nil dereference of m"
}

func drop(pp **Node) {
	*pp = nil
}

func address(n *Node) int {
	m := n
	drop(&m)
	return m.Val // want "QF010: possible nil dereference of m"
}

func rechecked(n *Node) int {
	m := n
	drop(&m)
	if m == nil {
		return 0
	}
	return m.Val
}

type Index map[int]*Node

func (ix *Index) Drop() {
	*ix = nil
}

func implicit(n *Node) {
	ix := Index{}
	ix.Drop()
	ix[1] = n // want "QF010: possible nil dereference of ix"
}
