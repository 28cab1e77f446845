// Package refine is the flow-sensitive qualifier refinement engine.
//
// An [Engine] is built once per base type system and analyzes method bodies
// independently of each other:
//
//	engine, err := refine.New(rules)
//	...
//	res, err := engine.Analyze(method, declared)
//	...
//	q := res.QualifierAt(points.Point{Node: stmt, When: points.Before}, expr)
//
// Results are immutable and engines hold no per-method state, so methods can be
// analyzed in parallel, see [Engine.AnalyzeAll].
package refine
