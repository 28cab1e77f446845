package strict

type Node struct {
	Val int
}

func get(n *Node) int {
	return n.Val // want "QF010: possible nil dereference of n"
}

func checked(n *Node) int {
	if n != nil {
		return n.Val
	}
	return 0
}
