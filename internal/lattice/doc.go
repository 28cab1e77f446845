// Package lattice defines qualifier lattices the refinement engine operates over.
//
// A base type system supplies a finite, bounded lattice of qualifiers. Everything
// else in the engine is generic over the [Lattice] contract:
//
//   - IsSubtype(a, b) reports that a is at least as refined as b.
//   - LUB and GLB are the join and the meet.
//   - Top means "no information", Bottom means "unreachable".
//
// Lattices are explicit values passed around by the caller, never package state,
// so independent analyses can share one lattice from many goroutines as long as
// the implementation is pure. [Finite] is such an implementation built from a
// list of qualifier declarations, and [Validate] checks the lattice laws of any
// implementation before it is used.
package lattice
