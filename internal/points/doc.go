// Package points indexes program points by source position.
//
// Spans of IR nodes form a strict containment hierarchy: two spans are either
// disjoint or one contains the other. Disjoint spans are kept in red-black trees,
// contained spans go into a nested tree of their container.
package points
