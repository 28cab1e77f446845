// Package transfer implements transfer functions of the refinement analysis.
//
// Statements map an input store to an output store, conditions map it to a pair
// of stores: one valid when the condition holds and one when it does not. What a
// condition implies is described by [Rules] supplied by a base type system as a
// list of tagged [Condition] handlers.
//
// Transfer functions are total: anything they do not recognize just accounts for
// invalidation and refines nothing.
package transfer
