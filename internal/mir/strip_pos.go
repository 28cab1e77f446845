package mir

// StripPos zeroes source spans of every node reachable from n in place.
// This is useful for equality testing (ignoring source positions).
func StripPos(n Node) {
	Walk(n, func(n Node) bool {
		if c, ok := n.(interface{ clearLoc() }); ok {
			c.clearLoc()
		}
		if r, ok := n.(*Result); ok && r.Call != nil {
			StripPos(r.Call)
		}
		return true
	})
}
