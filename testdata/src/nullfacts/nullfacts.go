package nullfacts

import "nullflow"

func first(n *nullflow.Node) int {
	return nullflow.Find(n, 1).Val // want `QF010: possible nil dereference of nullflow\.Find\(n, 1\)`
}

func checked(n *nullflow.Node) int {
	if m := nullflow.Find(n, 1); m != nil {
		return m.Val
	}
	return 0
}
