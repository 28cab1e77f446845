// Package cfg lowers method bodies into control flow graphs.
//
// A graph consists of basic blocks holding nodes: statements, branch conditions,
// returns, throws and evaluations. Conditions end their blocks with a pair of
// true/false edges. Nodes that may raise an exception get exceptional edges
// towards matching handlers, these edges leave a block in the middle: they carry the
// program state as it was right before the node.
//
// Finally blocks are duplicated: one copy for normal completion of the protected
// region, one for its abrupt completion by an exception, and one more for every
// return, break or continue leaving the region.
package cfg
