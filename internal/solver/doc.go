// Package solver computes refinement stores of control flow graph program points.
//
// Solving runs a worklist iteration over blocks prioritized by reverse post-order
// until stores on every edge stabilize. Edge stores only grow: a new store is joined
// with the recorded one, so iteration terminates for finite lattices. A final replay
// over the stabilized block inputs records stores at every node.
package solver
