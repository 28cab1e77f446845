// Package store implements refinement stores: persistent per-program-point tables
// mapping trackable paths to their currently known qualifiers.
//
// A store never changes after it was built. Every operation producing a different
// store returns a new one sharing the unchanged parts, and returns the receiver itself
// when nothing changes. A nil *Store stands for an unreachable program point.
package store
